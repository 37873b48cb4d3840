package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Clients only ever send control frames.
	maxInboundSize = 512
	sendBuffer     = 256
)

// socket is the part of *websocket.Conn a client uses.
type socket interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one open notification socket of a user.
type Client struct {
	userID uuid.UUID
	conn   socket

	// Outbound frames. Only the hub closes it.
	send chan []byte
}

func newClient(userID uuid.UUID, conn socket, buffer int) *Client {
	return &Client{userID: userID, conn: conn, send: make(chan []byte, buffer)}
}

// Attach registers an upgraded connection for userID and blocks until it
// closes.
func (h *Hub) Attach(conn *websocket.Conn, userID uuid.UUID) {
	h.serve(newClient(userID, conn, sendBuffer))
}

func (h *Hub) serve(c *Client) {
	h.register <- c
	go c.writeLoop()
	c.readLoop(h)
}

// readLoop keeps the read deadline moving on pongs and returns once the
// peer goes away.
func (c *Client) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			h.logger.Warn("Client", "Unexpected websocket close", map[string]interface{}{
				"user_id": c.userID.String(),
				"error":   err.Error(),
			})
		}
		return
	}
}

// writeLoop writes one JSON notification per text frame and pings between
// them.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind    int
			payload []byte
		)
		select {
		case frame, open := <-c.send:
			if !open {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, payload = websocket.TextMessage, frame
		case <-ping.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, payload); err != nil {
			return
		}
	}
}
