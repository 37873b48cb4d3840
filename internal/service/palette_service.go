package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"highlighter-be/internal/dto"
	"highlighter-be/internal/entity"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/internal/pkg/serverutils"
	"highlighter-be/internal/repository/specification"
	"highlighter-be/internal/repository/unitofwork"
	"highlighter-be/pkg/highlight"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type IPaletteService interface {
	Get(ctx context.Context, userId uuid.UUID) (highlight.Palette, error)
	Show(ctx context.Context, userId uuid.UUID) (*dto.PaletteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePaletteRequest) (*dto.PaletteResponse, error)
	CSS(ctx context.Context, userId uuid.UUID) (string, error)
}

type paletteService struct {
	uowFactory       unitofwork.RepositoryFactory
	defaults         highlight.Palette
	publisherService IPublisherService
	logger           logger.ILogger

	// palettes holds user palettes when no database is configured.
	palettes *cache.Cache
}

// NewPaletteService serves per-user palettes, falling back to defaults for
// users who never saved one. uowFactory may be nil to keep palettes in
// memory.
func NewPaletteService(
	uowFactory unitofwork.RepositoryFactory,
	defaults highlight.Palette,
	publisherService IPublisherService,
	log logger.ILogger,
) IPaletteService {
	if len(defaults) == 0 {
		defaults = highlight.DefaultPalette()
	}
	return &paletteService{
		uowFactory:       uowFactory,
		defaults:         defaults,
		publisherService: publisherService,
		logger:           log,
		palettes:         cache.New(cache.NoExpiration, 0),
	}
}

func (s *paletteService) Get(ctx context.Context, userId uuid.UUID) (highlight.Palette, error) {
	if s.uowFactory == nil {
		if x, found := s.palettes.Get(userId.String()); found {
			return x.(highlight.Palette), nil
		}
		return s.defaultPalette(), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	p, err := uow.HighlightPaletteRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.Colors) == 0 {
		return s.defaultPalette(), nil
	}
	return p.Colors, nil
}

func (s *paletteService) Show(ctx context.Context, userId uuid.UUID) (*dto.PaletteResponse, error) {
	p, err := s.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.PaletteResponse{Colors: p, Css: p.CSS()}, nil
}

func (s *paletteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePaletteRequest) (*dto.PaletteResponse, error) {
	p := make(highlight.Palette, len(req.Colors))
	copy(p, req.Colors)
	if err := p.Validate(); err != nil {
		return nil, serverutils.Unprocessable(err.Error(), nil)
	}

	if s.uowFactory == nil {
		s.palettes.Set(userId.String(), p, cache.NoExpiration)
	} else {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.HighlightPaletteRepository().Save(ctx, &entity.HighlightPalette{
			Id:        uuid.New(),
			UserId:    userId,
			Colors:    p,
			CreatedAt: time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	msgJson, err := json.Marshal(dto.PublishPaletteChangedMessage{UserId: userId})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		// Live documents pick the palette up on their next render.
		s.logger.Warn("PaletteService", "Failed to queue palette change", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}

	return &dto.PaletteResponse{Colors: p, Css: p.CSS()}, nil
}

func (s *paletteService) CSS(ctx context.Context, userId uuid.UUID) (string, error) {
	p, err := s.Get(ctx, userId)
	if err != nil {
		return "", err
	}
	return p.CSS(), nil
}

func (s *paletteService) defaultPalette() highlight.Palette {
	p := make(highlight.Palette, len(s.defaults))
	copy(p, s.defaults)
	return p
}

type paletteFile struct {
	Colors []paletteFileColor `toml:"colors"`
}

// paletteFileColor tells an absent opacity apart from an explicit 0.
type paletteFileColor struct {
	Hex     string   `toml:"color"`
	Opacity *float64 `toml:"opacity"`
}

// LoadPaletteFile reads a default palette from a TOML file of the form
//
//	[[colors]]
//	color = "#FCF485"
//	opacity = 0.4
//
// Entries without an opacity get highlight.DefaultOpacity.
func LoadPaletteFile(path string) (highlight.Palette, error) {
	var f paletteFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("read palette file %s: %w", path, err)
	}
	p := make(highlight.Palette, 0, len(f.Colors))
	for _, c := range f.Colors {
		opacity := highlight.DefaultOpacity
		if c.Opacity != nil {
			opacity = *c.Opacity
		}
		p = append(p, highlight.Color{Hex: c.Hex, Opacity: opacity})
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("palette file %s: %w", path, err)
	}
	return p, nil
}
