package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubjectPrefix namespaces highlight events on the bus.
const SubjectPrefix = "events."

// AllSubjects matches every highlight event subject.
const AllSubjects = SubjectPrefix + ">"

const userKey = "user_id"

var ErrNoUser = errors.New("event has no user_id")

// Event is anything published on the domain event bus.
type Event interface {
	// EventType is the code, e.g. "RESTORATION_COMPLETED", or the full
	// subject when the event came off the bus.
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

// ForUser stamps an event owned by userID with the current time. data is
// copied.
func ForUser(code string, userID uuid.UUID, data map[string]interface{}) BaseEvent {
	payload := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload[userKey] = userID.String()

	return BaseEvent{Type: code, Data: payload, OccurredAt: time.Now()}
}

// Subject is the bus subject an event is published on.
func Subject(e Event) string {
	t := e.EventType()
	if strings.HasPrefix(t, SubjectPrefix) {
		return t
	}
	return SubjectPrefix + t
}

// Code strips the subject prefix, if any.
func Code(e Event) string {
	return strings.TrimPrefix(e.EventType(), SubjectPrefix)
}

// UserID reads the owning user from the payload. ErrNoUser means the event
// is not addressed to anyone.
func UserID(e Event) (uuid.UUID, error) {
	raw, ok := e.Payload()[userKey].(string)
	if !ok {
		return uuid.Nil, ErrNoUser
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id in %s event: %w", Code(e), err)
	}
	return id, nil
}
