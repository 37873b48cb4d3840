package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentKey struct {
	DocumentKey string
}

func (s ByDocumentKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_key = ?", s.DocumentKey)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// ByAnchorID matches the client-facing "hl-" id, not the row id.
type ByAnchorID struct {
	AnchorID string
}

func (s ByAnchorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("anchor_id = ?", s.AnchorID)
}
