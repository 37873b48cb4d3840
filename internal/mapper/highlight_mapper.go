package mapper

import (
	"time"

	"highlighter-be/internal/entity"
	"highlighter-be/internal/model"
	"highlighter-be/pkg/highlight"

	"gorm.io/datatypes"
)

func updatedAtPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func updatedAtValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

type HighlightDocumentMapper struct{}

func NewHighlightDocumentMapper() *HighlightDocumentMapper {
	return &HighlightDocumentMapper{}
}

func (m *HighlightDocumentMapper) ToEntity(d *model.HighlightDocument) *entity.HighlightDocument {
	if d == nil {
		return nil
	}
	return &entity.HighlightDocument{
		Id:          d.Id,
		UserId:      d.UserId,
		DocumentKey: d.DocumentKey,
		Title:       d.Title,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAtPtr(d.UpdatedAt),
	}
}

func (m *HighlightDocumentMapper) ToModel(d *entity.HighlightDocument) *model.HighlightDocument {
	if d == nil {
		return nil
	}
	return &model.HighlightDocument{
		Id:          d.Id,
		UserId:      d.UserId,
		DocumentKey: d.DocumentKey,
		Title:       d.Title,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAtValue(d.UpdatedAt),
	}
}

type HighlightAnchorMapper struct{}

func NewHighlightAnchorMapper() *HighlightAnchorMapper {
	return &HighlightAnchorMapper{}
}

func (m *HighlightAnchorMapper) ToEntity(a *model.HighlightAnchor) *entity.HighlightAnchor {
	if a == nil {
		return nil
	}
	return &entity.HighlightAnchor{
		Id:          a.Id,
		DocumentId:  a.DocumentId,
		UserId:      a.UserId,
		AnchorId:    a.AnchorId,
		Text:        a.Text,
		PreContext:  a.PreContext,
		PostContext: a.PostContext,
		ColorIndex:  a.ColorIndex,
		Note:        a.Note,
		Position:    a.Position,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   updatedAtPtr(a.UpdatedAt),
	}
}

func (m *HighlightAnchorMapper) ToModel(a *entity.HighlightAnchor) *model.HighlightAnchor {
	if a == nil {
		return nil
	}
	return &model.HighlightAnchor{
		Id:          a.Id,
		DocumentId:  a.DocumentId,
		UserId:      a.UserId,
		AnchorId:    a.AnchorId,
		Text:        a.Text,
		PreContext:  a.PreContext,
		PostContext: a.PostContext,
		ColorIndex:  a.ColorIndex,
		Note:        a.Note,
		Position:    a.Position,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   updatedAtValue(a.UpdatedAt),
	}
}

func (m *HighlightAnchorMapper) ToEntities(anchors []*model.HighlightAnchor) []*entity.HighlightAnchor {
	entities := make([]*entity.HighlightAnchor, len(anchors))
	for i, a := range anchors {
		entities[i] = m.ToEntity(a)
	}
	return entities
}

type HighlightPaletteMapper struct{}

func NewHighlightPaletteMapper() *HighlightPaletteMapper {
	return &HighlightPaletteMapper{}
}

func (m *HighlightPaletteMapper) ToEntity(p *model.HighlightPalette) *entity.HighlightPalette {
	if p == nil {
		return nil
	}
	return &entity.HighlightPalette{
		Id:        p.Id,
		UserId:    p.UserId,
		Colors:    highlight.Palette(p.Colors),
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAtPtr(p.UpdatedAt),
	}
}

func (m *HighlightPaletteMapper) ToModel(p *entity.HighlightPalette) *model.HighlightPalette {
	if p == nil {
		return nil
	}
	return &model.HighlightPalette{
		Id:        p.Id,
		UserId:    p.UserId,
		Colors:    datatypes.JSONSlice[highlight.Color](p.Colors),
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAtValue(p.UpdatedAt),
	}
}
