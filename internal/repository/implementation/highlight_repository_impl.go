package implementation

import (
	"context"
	"errors"

	"highlighter-be/internal/entity"
	"highlighter-be/internal/mapper"
	"highlighter-be/internal/model"
	"highlighter-be/internal/repository/contract"
	"highlighter-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HighlightDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HighlightDocumentMapper
}

func NewHighlightDocumentRepository(db *gorm.DB) contract.HighlightDocumentRepository {
	return &HighlightDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewHighlightDocumentMapper(),
	}
}

func (r *HighlightDocumentRepositoryImpl) Create(ctx context.Context, doc *entity.HighlightDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *HighlightDocumentRepositoryImpl) Update(ctx context.Context, doc *entity.HighlightDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *HighlightDocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.HighlightDocument{}, id).Error
}

func (r *HighlightDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightDocument, error) {
	var m model.HighlightDocument
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

type HighlightAnchorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HighlightAnchorMapper
}

func NewHighlightAnchorRepository(db *gorm.DB) contract.HighlightAnchorRepository {
	return &HighlightAnchorRepositoryImpl{
		db:     db,
		mapper: mapper.NewHighlightAnchorMapper(),
	}
}

func (r *HighlightAnchorRepositoryImpl) Create(ctx context.Context, anchor *entity.HighlightAnchor) (bool, error) {
	m := r.mapper.ToModel(anchor)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "anchor_id"}},
			DoNothing: true,
		}).
		Omit("Document").
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*anchor = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *HighlightAnchorRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.HighlightAnchor{}), specification.ByID{ID: id})
	return query.Updates(fields).Error
}

func (r *HighlightAnchorRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.HighlightAnchor{}, id).Error
}

func (r *HighlightAnchorRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightAnchor, error) {
	var m model.HighlightAnchor
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *HighlightAnchorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HighlightAnchor, error) {
	var models []*model.HighlightAnchor
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *HighlightAnchorRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.HighlightAnchor{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type HighlightPaletteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HighlightPaletteMapper
}

func NewHighlightPaletteRepository(db *gorm.DB) contract.HighlightPaletteRepository {
	return &HighlightPaletteRepositoryImpl{
		db:     db,
		mapper: mapper.NewHighlightPaletteMapper(),
	}
}

// Save upserts the palette row of the owning user.
func (r *HighlightPaletteRepositoryImpl) Save(ctx context.Context, palette *entity.HighlightPalette) error {
	m := r.mapper.ToModel(palette)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"colors", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*palette = *r.mapper.ToEntity(m)
	return nil
}

func (r *HighlightPaletteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightPalette, error) {
	var m model.HighlightPalette
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
