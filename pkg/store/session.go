package store

import (
	"time"

	"highlighter-be/pkg/doctree/htmltree"
	"highlighter-be/pkg/highlight"
)

// Content types a session document can be opened from.
const (
	ContentHTML    = "html"
	ContentLexical = "lexical"
)

// Session is a live document a user is highlighting, held in memory
// between requests.
type Session struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	URL         string `json:"url"`
	DocumentKey string `json:"document_key"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`

	// Tree is owned by Document; read it only inside Document.View.
	Tree     *htmltree.Document  `json:"-"`
	Document *highlight.Document `json:"-"`

	OpenedAt time.Time `json:"opened_at"`
}
