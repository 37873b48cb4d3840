package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"highlighter-be/internal/model"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/pkg/events"
	"highlighter-be/pkg/highlight"
	pktNats "highlighter-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Event codes published on the bus.
const (
	EventRestorationCompleted = "RESTORATION_COMPLETED"
	EventPaletteChanged       = "PALETTE_CHANGED"
	EventHighlightCreated     = "HIGHLIGHT_CREATED"
	EventHighlightDeleted     = "HIGHLIGHT_DELETED"
)

type notificationType struct {
	Title    string
	Template string
}

var notificationTypes = map[string]notificationType{
	EventRestorationCompleted: {Title: "Highlights restored", Template: "{restored} restored, {failed} could not be placed on {title}"},
	EventPaletteChanged:       {Title: "Palette updated", Template: "{sessions} open documents restyled"},
	EventHighlightCreated:     {Title: "Highlight saved", Template: "Saved \"{text}\" on {title}"},
	EventHighlightDeleted:     {Title: "Highlight removed", Template: "Removed a highlight from {title}"},
}

// NotificationDelivery pushes real-time updates, typically through the
// websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// EventPublisher is the bus the notification events travel on.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type INotificationService interface {
	RestorationCompleted(ctx context.Context, userID uuid.UUID, sessionID, title string, res highlight.Result)
	PaletteChanged(ctx context.Context, userID uuid.UUID, sessions, fallback int)
	HighlightCreated(ctx context.Context, userID uuid.UUID, title string, a highlight.Anchor)
	HighlightDeleted(ctx context.Context, userID uuid.UUID, title, id string)
}

// NotificationService turns domain events into websocket notifications.
// With a bus configured, events go through NATS and come back through the
// durable subscriber so every instance sees them; without one they are
// delivered in process.
type NotificationService struct {
	publisher  EventPublisher
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger

	// listening is set once the durable subscriber is consuming.
	listening atomic.Bool
}

func NewNotificationService(pub EventPublisher, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		publisher:  pub,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		return
	}
	err := s.subscriber.Subscribe(events.AllSubjects, "highlight-notifier", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.listening.Store(true)
	s.logger.Info("NotificationService", "Notification service started, listening to "+events.AllSubjects, nil)
}

func (s *NotificationService) RestorationCompleted(ctx context.Context, userID uuid.UUID, sessionID, title string, res highlight.Result) {
	s.emit(ctx, events.ForUser(EventRestorationCompleted, userID, map[string]interface{}{
		"session_id": sessionID,
		"title":      title,
		"pass_id":    res.PassID,
		"restored":   len(res.Restored),
		"failed":     len(res.Failed),
		"skipped":    len(res.Skipped),
	}))
}

func (s *NotificationService) PaletteChanged(ctx context.Context, userID uuid.UUID, sessions, fallback int) {
	s.emit(ctx, events.ForUser(EventPaletteChanged, userID, map[string]interface{}{
		"sessions": sessions,
		"fallback": fallback,
	}))
}

func (s *NotificationService) HighlightCreated(ctx context.Context, userID uuid.UUID, title string, a highlight.Anchor) {
	s.emit(ctx, events.ForUser(EventHighlightCreated, userID, map[string]interface{}{
		"title":        title,
		"highlight_id": a.ID,
		"text":         a.Text,
		"color_index":  a.ColorIndex,
	}))
}

func (s *NotificationService) HighlightDeleted(ctx context.Context, userID uuid.UUID, title, id string) {
	s.emit(ctx, events.ForUser(EventHighlightDeleted, userID, map[string]interface{}{
		"title":        title,
		"highlight_id": id,
	}))
}

func (s *NotificationService) emit(ctx context.Context, evt events.BaseEvent) {
	if s.publisher != nil && s.listening.Load() {
		// Notifications are auxiliary; a bus failure falls back to local delivery.
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err := s.publisher.Publish(pubCtx, evt)
		if err == nil {
			return
		}
		s.logger.Warn("NotificationService", fmt.Sprintf("Failed to publish %s event", evt.Type), map[string]interface{}{"error": err.Error()})
	}

	if err := s.handleEvent(ctx, evt); err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("Failed to deliver %s notification", evt.Type), map[string]interface{}{"error": err.Error()})
	}
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := events.Code(event)

	config, ok := notificationTypes[typeCode]
	if !ok {
		s.logger.Debug("NotificationService", fmt.Sprintf("No notification for code: '%s'", typeCode), nil)
		return nil
	}

	userID, err := events.UserID(event)
	if errors.Is(err, events.ErrNoUser) {
		s.logger.Warn("NotificationService", fmt.Sprintf("No user_id found in payload for event %s", typeCode), nil)
		return nil
	}
	if err != nil {
		return err
	}

	if s.delivery != nil {
		s.delivery.Send(userID, buildNotification(userID, typeCode, config, event))
	}
	return nil
}

func buildNotification(userID uuid.UUID, code string, config notificationType, event events.Event) model.Notification {
	msg := config.Template
	payload := event.Payload()
	for k, v := range payload {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%s}", k), fmt.Sprintf("%v", v))
	}

	metaJSON, _ := json.Marshal(payload)

	return model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TypeCode:  code,
		Title:     config.Title,
		Message:   msg,
		Metadata:  datatypes.JSON(metaJSON),
		CreatedAt: time.Now(),
	}
}
