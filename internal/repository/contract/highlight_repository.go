package contract

import (
	"context"

	"highlighter-be/internal/entity"
	"highlighter-be/internal/repository/specification"

	"github.com/google/uuid"
)

type HighlightDocumentRepository interface {
	Create(ctx context.Context, doc *entity.HighlightDocument) error
	Update(ctx context.Context, doc *entity.HighlightDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightDocument, error)
}

type HighlightAnchorRepository interface {
	// Create inserts the anchor unless the owner already has one with the
	// same anchor id. It reports whether a row was written.
	Create(ctx context.Context, anchor *entity.HighlightAnchor) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightAnchor, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HighlightAnchor, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type HighlightPaletteRepository interface {
	Save(ctx context.Context, palette *entity.HighlightPalette) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightPalette, error)
}
