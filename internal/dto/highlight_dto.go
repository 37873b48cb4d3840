package dto

import (
	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
)

type AnchorRequest struct {
	Id          string `json:"id" validate:"required"`
	Text        string `json:"text" validate:"required"`
	PreContext  string `json:"preContext"`
	PostContext string `json:"postContext"`
	ColorIndex  int    `json:"colorIndex" validate:"gte=0"`
	Note        string `json:"note"`
}

func (r AnchorRequest) ToAnchor() highlight.Anchor {
	return highlight.Anchor{
		ID:          r.Id,
		Text:        r.Text,
		PreContext:  r.PreContext,
		PostContext: r.PostContext,
		ColorIndex:  r.ColorIndex,
		Note:        r.Note,
	}
}

type PutAnchorRequest struct {
	Url    string        `json:"url" validate:"required,url"`
	Title  string        `json:"title"`
	Anchor AnchorRequest `json:"anchor" validate:"required"`
}

type PutAnchorResponse struct {
	Id          string `json:"id"`
	DocumentKey string `json:"document_key"`
}

// UpdateHighlightRequest edits a highlight. Nil fields are left alone.
type UpdateHighlightRequest struct {
	Note       *string `json:"note"`
	ColorIndex *int    `json:"color_index" validate:"omitempty,gte=0"`
}

type HighlightResponse struct {
	Id         string `json:"id"`
	Text       string `json:"text"`
	ColorIndex int    `json:"color_index"`
	Note       string `json:"note"`
}

type OpenSessionRequest struct {
	Url         string `json:"url" validate:"required,url"`
	Title       string `json:"title"`
	Content     string `json:"content" validate:"required"`
	ContentType string `json:"content_type" validate:"omitempty,oneof=html lexical"`
}

type SessionResponse struct {
	SessionId   string            `json:"session_id"`
	Url         string            `json:"url"`
	DocumentKey string            `json:"document_key"`
	Title       string            `json:"title"`
	Result      *highlight.Result `json:"result,omitempty"`
	Html        string            `json:"html"`
	Css         string            `json:"css"`
}

type RenderResponse struct {
	SessionId  string              `json:"session_id"`
	Title      string              `json:"title"`
	Html       string              `json:"html"`
	Css        string              `json:"css"`
	Highlights []HighlightResponse `json:"highlights"`
}

type CreateHighlightRequest struct {
	Start      int `json:"start" validate:"gte=0"`
	End        int `json:"end" validate:"gtfield=Start"`
	ColorIndex int `json:"color_index" validate:"gte=0"`
}

// RestoreRequest restores highlights onto a document without keeping a
// session. Anchors are loaded from the store when none are given.
type RestoreRequest struct {
	Url         string             `json:"url" validate:"required,url"`
	Title       string             `json:"title"`
	Content     string             `json:"content" validate:"required"`
	ContentType string             `json:"content_type" validate:"omitempty,oneof=html lexical"`
	Anchors     []highlight.Anchor `json:"anchors"`
}

type RestoreResponse struct {
	Result *highlight.Result `json:"result"`
	Html   string            `json:"html"`
	Css    string            `json:"css"`
}

type PaletteResponse struct {
	Colors highlight.Palette `json:"colors"`
	Css    string            `json:"css"`
}

type UpdatePaletteRequest struct {
	Colors []highlight.Color `json:"colors" validate:"required,min=1,max=9,dive"`
}

// PublishPaletteChangedMessage is queued after a user's palette changes.
type PublishPaletteChangedMessage struct {
	UserId uuid.UUID `json:"user_id"`
}
