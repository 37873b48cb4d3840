package entity

import (
	"time"

	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
)

// HighlightDocument is the record a user's anchors hang off, one per
// document key.
type HighlightDocument struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	DocumentKey string
	Title       string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type HighlightAnchor struct {
	Id          uuid.UUID
	DocumentId  uuid.UUID
	UserId      uuid.UUID
	AnchorId    string
	Text        string
	PreContext  string
	PostContext string
	ColorIndex  int
	Note        string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func (a *HighlightAnchor) ToAnchor() highlight.Anchor {
	return highlight.Anchor{
		ID:          a.AnchorId,
		Text:        a.Text,
		PreContext:  a.PreContext,
		PostContext: a.PostContext,
		ColorIndex:  a.ColorIndex,
		Note:        a.Note,
	}
}

type HighlightPalette struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Colors    highlight.Palette
	CreatedAt time.Time
	UpdatedAt *time.Time
}
