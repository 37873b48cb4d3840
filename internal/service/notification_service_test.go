package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"highlighter-be/internal/model"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/pkg/events"
	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDelivery struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]model.Notification
}

func (d *fakeDelivery) Send(userID uuid.UUID, n model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sent == nil {
		d.sent = make(map[uuid.UUID][]model.Notification)
	}
	d.sent[userID] = append(d.sent[userID], n)
}

func (d *fakeDelivery) Broadcast(n model.Notification) {}

type fakeEventPublisher struct {
	events []events.Event
	err    error
}

func (p *fakeEventPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func TestNotificationServiceDeliversLocally(t *testing.T) {
	delivery := &fakeDelivery{}
	svc := NewNotificationService(nil, nil, delivery, logger.NewNopLogger())
	userID := uuid.New()

	svc.RestorationCompleted(context.Background(), userID, "s-1", "Fox", highlight.Result{
		Restored: []string{"hl-1", "hl-2"},
		Failed:   []string{"hl-3"},
	})
	svc.HighlightCreated(context.Background(), userID, "Fox", highlight.Anchor{ID: "hl-4", Text: "brown"})
	svc.HighlightDeleted(context.Background(), userID, "Fox", "hl-4")
	svc.PaletteChanged(context.Background(), userID, 3, 0)

	sent := delivery.sent[userID]
	require.Len(t, sent, 4)
	assert.Equal(t, EventRestorationCompleted, sent[0].TypeCode)
	assert.Equal(t, "Highlights restored", sent[0].Title)
	assert.Equal(t, "2 restored, 1 could not be placed on Fox", sent[0].Message)
	assert.Equal(t, `Saved "brown" on Fox`, sent[1].Message)
	assert.Equal(t, "Removed a highlight from Fox", sent[2].Message)
	assert.Equal(t, "3 open documents restyled", sent[3].Message)
	assert.Contains(t, string(sent[1].Metadata), `"highlight_id":"hl-4"`)
}

func TestNotificationServiceHandlesBusSubjects(t *testing.T) {
	delivery := &fakeDelivery{}
	svc := NewNotificationService(nil, nil, delivery, logger.NewNopLogger())
	userID := uuid.New()

	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type:       "events." + EventHighlightDeleted,
		Data:       map[string]interface{}{"user_id": userID.String(), "title": "Doc"},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, delivery.sent[userID], 1)

	// Unknown codes and missing users are ignored; malformed users are errors.
	assert.NoError(t, svc.handleEvent(context.Background(), events.BaseEvent{Type: "events.OTHER", Data: map[string]interface{}{}}))
	assert.NoError(t, svc.handleEvent(context.Background(), events.BaseEvent{Type: EventPaletteChanged, Data: map[string]interface{}{}}))
	assert.Error(t, svc.handleEvent(context.Background(), events.BaseEvent{Type: EventPaletteChanged, Data: map[string]interface{}{"user_id": "x"}}))
}

func TestNotificationServiceSkipsBusUntilListening(t *testing.T) {
	delivery := &fakeDelivery{}
	pub := &fakeEventPublisher{}
	svc := NewNotificationService(pub, nil, delivery, logger.NewNopLogger())
	userID := uuid.New()

	svc.PaletteChanged(context.Background(), userID, 1, 0)
	assert.Empty(t, pub.events)
	assert.Len(t, delivery.sent[userID], 1)

	svc.listening.Store(true)
	svc.PaletteChanged(context.Background(), userID, 1, 0)
	require.Len(t, pub.events, 1)
	assert.Equal(t, EventPaletteChanged, pub.events[0].EventType())
	assert.Len(t, delivery.sent[userID], 1)

	pub.err = errors.New("nats down")
	svc.PaletteChanged(context.Background(), userID, 1, 0)
	assert.Len(t, delivery.sent[userID], 2)
}
