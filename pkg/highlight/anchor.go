// Package highlight anchors highlighted spans to document text and restores
// them on a freshly rendered document.
//
// An Anchor records the exact highlighted text plus a short window of
// context on either side. Restoration flattens the document into a text
// model, finds the occurrence whose context still matches, and wraps it in a
// container element carrying the highlight's id, colour and note.
package highlight

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultContextLength is the number of characters captured on each side.
const DefaultContextLength = 25

// Anchor is the persisted reference to a highlight.
type Anchor struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	PreContext  string `json:"preContext"`
	PostContext string `json:"postContext"`
	ColorIndex  int    `json:"colorIndex"`
	Note        string `json:"note"`
}

// Metadata is what a container carries besides the wrapped text.
type Metadata struct {
	ID         string
	ColorIndex int
	Note       string
}

// Metadata returns the container metadata of the anchor.
func (a Anchor) Metadata() Metadata {
	return Metadata{ID: a.ID, ColorIndex: a.ColorIndex, Note: a.Note}
}

// Validate checks the anchor invariants for a context window of n characters.
func (a Anchor) Validate(n int) error {
	if a.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidAnchor)
	}
	if a.Text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidAnchor)
	}
	if graphemeCount(a.PreContext) > n || graphemeCount(a.PostContext) > n {
		return fmt.Errorf("%w: context longer than %d characters", ErrInvalidAnchor, n)
	}
	return nil
}

// NewID returns a fresh, never reused anchor id.
func NewID() string {
	return "hl-" + uuid.NewString()
}

// TrimNote normalises a note before it is stored or shown.
func TrimNote(note string) string {
	return strings.TrimSpace(note)
}
