package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"highlighter-be/internal/model"
	"highlighter-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSendAndDrop(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run()

	userID := uuid.New()
	other := uuid.New()
	c := newClient(userID, nil, 1)
	o := newClient(other, nil, 1)
	h.register <- c
	h.register <- o
	require.Eventually(t, func() bool { return h.ClientCount(userID) == 1 }, time.Second, 10*time.Millisecond)

	h.Send(userID, model.Notification{TypeCode: "RESTORATION_COMPLETED", Title: "Highlights restored"})

	var got struct {
		Type string             `json:"type"`
		Data model.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-c.send, &got))
	assert.Equal(t, "notification", got.Type)
	assert.Equal(t, "Highlights restored", got.Data.Title)
	assert.Len(t, o.send, 0)

	// Fill the buffer, then overflow it.
	h.Send(userID, model.Notification{Title: "one"})
	h.Send(userID, model.Notification{Title: "two"})
	require.Eventually(t, func() bool { return h.ClientCount(userID) == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, h.ClientCount(other))
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run()

	a := newClient(uuid.New(), nil, 4)
	b := newClient(uuid.New(), nil, 4)
	h.register <- a
	h.register <- b
	require.Eventually(t, func() bool { return h.ClientCount(b.userID) == 1 }, time.Second, 10*time.Millisecond)

	h.Broadcast(model.Notification{Title: "all"})
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
}
