package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"highlighter-be/internal/model"
	"highlighter-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	clusterChannel = "cluster_events"
	broadcastTarget = "*"
)

type clusterMessage struct {
	TargetUserID string          `json:"target_user_id"`
	Origin       string          `json:"origin"`
	Message      json.RawMessage `json:"message"`
}

// Hub fans notifications out to every websocket a user has open, on this
// instance directly and on the others through Redis pub/sub.
type Hub struct {
	// UserID -> clients, one per open tab or device.
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// rdb is nil on a single instance.
	rdb *redis.Client
	// id tells this instance's own cluster messages apart.
	id string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		id:         uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = append(h.clients[client.userID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.userID.String()})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// remove detaches the client and closes its send channel exactly once.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.userID] = append(clients[:i], clients[i+1:]...)
			close(client.send)
			break
		}
	}
	if len(h.clients[client.userID]) == 0 {
		delete(h.clients, client.userID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.userID.String()})
	}
}

// ClientCount reports the connections open for a user on this instance.
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends a notification to every connected client.
func (h *Hub) Broadcast(notification model.Notification) {
	data := encode(notification)
	h.deliverAll(data)
	h.publish(broadcastTarget, data)
}

// Send delivers a notification to all of one user's clients.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data := encode(notification)
	h.deliver(userID, data)
	h.publish(userID.String(), data)
}

func encode(notification model.Notification) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	return data
}

func (h *Hub) deliver(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.push(client, data)
	}
}

func (h *Hub) deliverAll(data []byte) {
	h.mu.RLock()
	var clients []*Client
	for _, cs := range h.clients {
		clients = append(clients, cs...)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.push(client, data)
	}
}

// push never blocks; a client whose buffer is full is dropped.
func (h *Hub) push(client *Client, data []byte) {
	defer func() {
		// The client may have been closed between snapshot and send.
		_ = recover()
	}()
	select {
	case client.send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"user_id": client.userID.String()})
		go func() { h.unregister <- client }()
	}
}

func (h *Hub) publish(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterMessage{
		TargetUserID: target,
		Origin:       h.id,
		Message:      data,
	})
	if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to publish cluster event", map[string]interface{}{"error": err.Error()})
	}
}

// subscribeToRedis delivers notifications published by other instances to
// the clients connected here.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.id {
			continue
		}

		if payload.TargetUserID == broadcastTarget {
			h.deliverAll(payload.Message)
			continue
		}
		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliver(uid, payload.Message)
	}
}
