package model

import (
	"time"

	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HighlightDocument struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_highlight_documents_user_key,priority:1"`
	DocumentKey string    `gorm:"type:text;not null;uniqueIndex:idx_highlight_documents_user_key,priority:2"`
	Title       string    `gorm:"type:varchar(500)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (HighlightDocument) TableName() string {
	return "highlight_documents"
}

type HighlightAnchor struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId  uuid.UUID `gorm:"type:uuid;not null;index:idx_highlight_anchors_document_position,priority:1"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_highlight_anchors_user_anchor,priority:1"`
	AnchorId    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_highlight_anchors_user_anchor,priority:2"`
	Text        string    `gorm:"type:text;not null"`
	PreContext  string    `gorm:"type:text"`
	PostContext string    `gorm:"type:text"`
	ColorIndex  int       `gorm:"not null;default:0"`
	Note        string    `gorm:"type:text"`
	Position    int       `gorm:"not null;index:idx_highlight_anchors_document_position,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Document HighlightDocument `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE;"`
}

func (HighlightAnchor) TableName() string {
	return "highlight_anchors"
}

type HighlightPalette struct {
	Id        uuid.UUID                            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID                            `gorm:"type:uuid;not null;uniqueIndex"`
	Colors    datatypes.JSONSlice[highlight.Color] `gorm:"type:jsonb;not null"`
	CreatedAt time.Time                            `gorm:"autoCreateTime"`
	UpdatedAt time.Time                            `gorm:"autoUpdateTime"`
}

func (HighlightPalette) TableName() string {
	return "highlight_palettes"
}
