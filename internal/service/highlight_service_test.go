package service

import (
	"context"
	"testing"

	"highlighter-be/internal/dto"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlightServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	palettes := NewPaletteService(nil, nil, &fakePublisher{}, logger.NewNopLogger())
	svc := NewHighlightService(memory.NewAnchorStore(), palettes, 5)
	userId := uuid.New()

	res, err := svc.Create(ctx, userId, &dto.PutAnchorRequest{
		Url:    "https://example.com/page?utm_source=feed#top",
		Title:  "Page",
		Anchor: dto.AnchorRequest{Id: "hl-1", Text: "brown", PreContext: "uick ", PostContext: " fox ", ColorIndex: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "hl-1", res.Id)
	assert.Equal(t, "https://example.com/page", res.DocumentKey)

	note := " read later "
	color := 0
	require.NoError(t, svc.Update(ctx, userId, "https://example.com/page", "hl-1", &dto.UpdateHighlightRequest{Note: &note, ColorIndex: &color}))

	doc, err := svc.Index(ctx, userId, "https://example.com/page#other")
	require.NoError(t, err)
	require.Len(t, doc.Anchors, 1)
	assert.Equal(t, "read later", doc.Anchors[0].Note)
	assert.Equal(t, 0, doc.Anchors[0].ColorIndex)

	require.NoError(t, svc.Delete(ctx, userId, "https://example.com/page", "hl-1"))
	assert.Equal(t, 404, appCode(t, svc.Delete(ctx, userId, "https://example.com/page", "hl-1")))
}

func TestHighlightServiceValidation(t *testing.T) {
	ctx := context.Background()
	palettes := NewPaletteService(nil, nil, &fakePublisher{}, logger.NewNopLogger())
	svc := NewHighlightService(memory.NewAnchorStore(), palettes, 5)
	userId := uuid.New()

	_, err := svc.Create(ctx, userId, &dto.PutAnchorRequest{Url: "relative/path", Anchor: dto.AnchorRequest{Id: "hl-1", Text: "x"}})
	assert.Equal(t, 400, appCode(t, err))

	_, err = svc.Create(ctx, userId, &dto.PutAnchorRequest{Url: "https://example.com", Anchor: dto.AnchorRequest{Id: "hl-1", Text: "x", PreContext: "far too long"}})
	assert.Equal(t, 422, appCode(t, err))

	_, err = svc.Create(ctx, userId, &dto.PutAnchorRequest{Url: "https://example.com", Anchor: dto.AnchorRequest{Id: "hl-1", Text: "x", ColorIndex: 4}})
	assert.Equal(t, 422, appCode(t, err))

	color := 9
	err = svc.Update(ctx, userId, "https://example.com", "hl-1", &dto.UpdateHighlightRequest{ColorIndex: &color})
	assert.Equal(t, 422, appCode(t, err))
}
