package highlight

import "context"

// Anchor fields that can be edited after creation.
const (
	FieldNote       = "note"
	FieldColorIndex = "colorIndex"
)

// DocumentAnchors is everything persisted for one document.
type DocumentAnchors struct {
	Title   string   `json:"title"`
	Anchors []Anchor `json:"anchors"`
}

// Store persists anchors per owner and document key. Implementations
// return anchors in insertion order, and PutAnchor is a no-op for an id
// that already exists.
type Store interface {
	GetAnchors(ctx context.Context, owner, documentKey string) (*DocumentAnchors, error)
	PutAnchor(ctx context.Context, owner, documentKey, title string, a Anchor) error
	UpdateAnchorField(ctx context.Context, owner, documentKey, id, field string, value interface{}) error
	DeleteAnchor(ctx context.Context, owner, documentKey, id string) error
}
