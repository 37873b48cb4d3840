package service

import (
	"context"

	"highlighter-be/internal/dto"
	"highlighter-be/internal/pkg/serverutils"
	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
)

// IHighlightService exposes the anchor store to clients that run the
// engine themselves and only need persistence.
type IHighlightService interface {
	Index(ctx context.Context, userId uuid.UUID, url string) (*highlight.DocumentAnchors, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.PutAnchorRequest) (*dto.PutAnchorResponse, error)
	Update(ctx context.Context, userId uuid.UUID, url, id string, req *dto.UpdateHighlightRequest) error
	Delete(ctx context.Context, userId uuid.UUID, url, id string) error
}

type highlightService struct {
	anchors        highlight.Store
	paletteService IPaletteService
	contextLength  int
}

func NewHighlightService(anchors highlight.Store, paletteService IPaletteService, contextLength int) IHighlightService {
	if contextLength <= 0 {
		contextLength = highlight.DefaultContextLength
	}
	return &highlightService{
		anchors:        anchors,
		paletteService: paletteService,
		contextLength:  contextLength,
	}
}

func documentKey(url string) (string, error) {
	key, err := highlight.DocumentKey(url)
	if err != nil {
		return "", serverutils.BadRequest("Invalid document url", err)
	}
	return key, nil
}

func (s *highlightService) Index(ctx context.Context, userId uuid.UUID, url string) (*highlight.DocumentAnchors, error) {
	key, err := documentKey(url)
	if err != nil {
		return nil, err
	}
	return s.anchors.GetAnchors(ctx, userId.String(), key)
}

func (s *highlightService) Create(ctx context.Context, userId uuid.UUID, req *dto.PutAnchorRequest) (*dto.PutAnchorResponse, error) {
	key, err := documentKey(req.Url)
	if err != nil {
		return nil, err
	}

	a := req.Anchor.ToAnchor()
	if err := a.Validate(s.contextLength); err != nil {
		return nil, serverutils.Unprocessable(err.Error(), nil)
	}
	palette, err := s.paletteService.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	if !palette.Has(a.ColorIndex) {
		return nil, engineError(highlight.ErrInvalidColorIndex)
	}

	if err := s.anchors.PutAnchor(ctx, userId.String(), key, req.Title, a); err != nil {
		return nil, storeError(err)
	}
	return &dto.PutAnchorResponse{Id: a.ID, DocumentKey: key}, nil
}

func (s *highlightService) Update(ctx context.Context, userId uuid.UUID, url, id string, req *dto.UpdateHighlightRequest) error {
	key, err := documentKey(url)
	if err != nil {
		return err
	}

	if req.ColorIndex != nil {
		palette, err := s.paletteService.Get(ctx, userId)
		if err != nil {
			return err
		}
		if !palette.Has(*req.ColorIndex) {
			return engineError(highlight.ErrInvalidColorIndex)
		}
		if err := s.anchors.UpdateAnchorField(ctx, userId.String(), key, id, highlight.FieldColorIndex, *req.ColorIndex); err != nil {
			return storeError(err)
		}
	}
	if req.Note != nil {
		note := highlight.TrimNote(*req.Note)
		if err := s.anchors.UpdateAnchorField(ctx, userId.String(), key, id, highlight.FieldNote, note); err != nil {
			return storeError(err)
		}
	}
	return nil
}

func (s *highlightService) Delete(ctx context.Context, userId uuid.UUID, url, id string) error {
	key, err := documentKey(url)
	if err != nil {
		return err
	}
	if err := s.anchors.DeleteAnchor(ctx, userId.String(), key, id); err != nil {
		return storeError(err)
	}
	return nil
}
