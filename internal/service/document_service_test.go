package service

import (
	"context"
	"errors"
	"testing"

	"highlighter-be/internal/dto"
	"highlighter-be/internal/pkg/serverutils"
	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFox(t *testing.T, f *documentFixture, userId uuid.UUID) *dto.SessionResponse {
	t.Helper()
	res, err := f.service.Open(context.Background(), userId, &dto.OpenSessionRequest{
		Url:     "https://Example.com/fox",
		Content: foxPage,
	})
	require.NoError(t, err)
	return res
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *serverutils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestDocumentServiceCreateAndReopen(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(nil)
	userId := uuid.New()

	opened := openFox(t, f, userId)
	assert.Equal(t, "Fox", opened.Title)
	assert.Equal(t, "https://example.com/fox", opened.DocumentKey)
	assert.Empty(t, opened.Result.Restored)
	assert.Contains(t, opened.Css, "--highlight-color-0")

	h, err := f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 10, End: 15, ColorIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "brown", h.Text)
	assert.Equal(t, 1, h.ColorIndex)
	assert.Equal(t, []string{h.Id}, f.notifications.created)

	stored, err := f.anchors.GetAnchors(ctx, userId.String(), "https://example.com/fox")
	require.NoError(t, err)
	assert.Equal(t, "Fox", stored.Title)
	require.Len(t, stored.Anchors, 1)
	assert.Equal(t, "uick ", stored.Anchors[0].PreContext)
	assert.Equal(t, " fox ", stored.Anchors[0].PostContext)

	reopened := openFox(t, f, userId)
	assert.Equal(t, []string{h.Id}, reopened.Result.Restored)
	assert.Contains(t, reopened.Html, `data-highlight-id="`+h.Id+`"`)

	render, err := f.service.Render(ctx, userId, reopened.SessionId)
	require.NoError(t, err)
	require.Len(t, render.Highlights, 1)
	assert.Equal(t, "brown", render.Highlights[0].Text)

	// Both opens completed a pass.
	assert.Len(t, f.notifications.restored, 2)
}

func TestDocumentServiceCreateRollsBackOnStoreError(t *testing.T) {
	ctx := context.Background()
	mem := newDocumentFixture(nil).anchors
	f := newDocumentFixture(failingStore{Store: mem, err: errors.New("db down")})
	userId := uuid.New()
	opened := openFox(t, f, userId)

	_, err := f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 10, End: 15})
	require.Error(t, err)
	assert.Equal(t, 500, appCode(t, err))

	render, err := f.service.Render(ctx, userId, opened.SessionId)
	require.NoError(t, err)
	assert.Empty(t, render.Highlights)
	assert.NotContains(t, render.Html, "data-highlight-id")
}

func TestDocumentServiceCreateRejects(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(nil)
	userId := uuid.New()
	opened := openFox(t, f, userId)

	_, err := f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 10, End: 15, ColorIndex: 7})
	assert.Equal(t, 422, appCode(t, err))

	_, err = f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 10, End: 15})
	require.NoError(t, err)
	_, err = f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 4, End: 15})
	assert.Equal(t, 409, appCode(t, err))

	_, err = f.service.CreateHighlight(ctx, uuid.New(), opened.SessionId, &dto.CreateHighlightRequest{Start: 4, End: 9})
	assert.Equal(t, 404, appCode(t, err))
}

func TestDocumentServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(nil)
	userId := uuid.New()
	opened := openFox(t, f, userId)

	h, err := f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 10, End: 15})
	require.NoError(t, err)

	note := "  remember this  "
	color := 3
	updated, err := f.service.UpdateHighlight(ctx, userId, opened.SessionId, h.Id, &dto.UpdateHighlightRequest{Note: &note, ColorIndex: &color})
	require.NoError(t, err)
	assert.Equal(t, "remember this", updated.Note)
	assert.Equal(t, 3, updated.ColorIndex)

	stored, err := f.anchors.GetAnchors(ctx, userId.String(), opened.DocumentKey)
	require.NoError(t, err)
	assert.Equal(t, "remember this", stored.Anchors[0].Note)
	assert.Equal(t, 3, stored.Anchors[0].ColorIndex)

	_, err = f.service.UpdateHighlight(ctx, userId, opened.SessionId, "hl-missing", &dto.UpdateHighlightRequest{Note: &note})
	assert.Equal(t, 404, appCode(t, err))

	require.NoError(t, f.service.DeleteHighlight(ctx, userId, opened.SessionId, h.Id))
	assert.Equal(t, []string{h.Id}, f.notifications.deleted)
	stored, err = f.anchors.GetAnchors(ctx, userId.String(), opened.DocumentKey)
	require.NoError(t, err)
	assert.Empty(t, stored.Anchors)

	render, err := f.service.Render(ctx, userId, opened.SessionId)
	require.NoError(t, err)
	assert.Contains(t, render.Html, "<p>The quick brown fox jumps.</p>")
}

func TestDocumentServiceEditsKeepPageOnStoreError(t *testing.T) {
	ctx := context.Background()
	mem := newDocumentFixture(nil).anchors
	store := &flakyStore{Store: mem}
	f := newDocumentFixture(store)
	userId := uuid.New()
	opened := openFox(t, f, userId)

	h, err := f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 10, End: 15, ColorIndex: 1})
	require.NoError(t, err)
	store.err = errors.New("db down")

	note := "unsaved"
	color := 2
	_, err = f.service.UpdateHighlight(ctx, userId, opened.SessionId, h.Id, &dto.UpdateHighlightRequest{ColorIndex: &color})
	assert.Equal(t, 500, appCode(t, err))
	_, err = f.service.UpdateHighlight(ctx, userId, opened.SessionId, h.Id, &dto.UpdateHighlightRequest{Note: &note})
	assert.Equal(t, 500, appCode(t, err))
	err = f.service.DeleteHighlight(ctx, userId, opened.SessionId, h.Id)
	assert.Equal(t, 500, appCode(t, err))
	assert.Empty(t, f.notifications.deleted)

	render, err := f.service.Render(ctx, userId, opened.SessionId)
	require.NoError(t, err)
	require.Len(t, render.Highlights, 1)
	assert.Equal(t, 1, render.Highlights[0].ColorIndex)
	assert.Empty(t, render.Highlights[0].Note)

	stored, err := mem.GetAnchors(ctx, userId.String(), opened.DocumentKey)
	require.NoError(t, err)
	require.Len(t, stored.Anchors, 1)
	assert.Equal(t, 1, stored.Anchors[0].ColorIndex)
	assert.Empty(t, stored.Anchors[0].Note)

	// Invalid colours are refused before anything is written.
	store.err = nil
	bad := 9
	_, err = f.service.UpdateHighlight(ctx, userId, opened.SessionId, h.Id, &dto.UpdateHighlightRequest{ColorIndex: &bad})
	assert.Equal(t, 422, appCode(t, err))
}

func TestDocumentServiceRestoreDegradesPerAnchor(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(nil)
	userId := uuid.New()
	key := "https://example.com/fox"
	require.NoError(t, f.anchors.PutAnchor(ctx, userId.String(), key, "Fox", highlight.Anchor{ID: "hl-a", Text: "quick", ColorIndex: 0}))
	require.NoError(t, f.anchors.PutAnchor(ctx, userId.String(), key, "Fox", highlight.Anchor{ID: "hl-b", Text: "zebra", ColorIndex: 0}))

	opened := openFox(t, f, userId)
	assert.Equal(t, []string{"hl-a"}, opened.Result.Restored)
	assert.Equal(t, []string{"hl-b"}, opened.Result.Failed)

	again, err := f.service.Restore(ctx, userId, opened.SessionId)
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-a"}, again.Result.Skipped)
	assert.Empty(t, again.Result.Restored)
}

func TestDocumentServiceLexicalAndRestoreOnce(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(nil)
	userId := uuid.New()

	lexicalDoc := `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","text":"The quick brown fox jumps."}]}]}}`
	res, err := f.service.RestoreOnce(ctx, userId, &dto.RestoreRequest{
		Url:     "https://example.com/note",
		Title:   "Note",
		Content: lexicalDoc,
		Anchors: []highlight.Anchor{{ID: "hl-x", Text: "fox", PreContext: "rown ", PostContext: " jump", ColorIndex: 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-x"}, res.Result.Restored)
	assert.Contains(t, res.Html, `data-highlight-id="hl-x"`)
	assert.Equal(t, 0, f.sessions.Count())

	_, err = f.service.RestoreOnce(ctx, userId, &dto.RestoreRequest{
		Url:         "https://example.com/note",
		Content:     "not json",
		ContentType: "lexical",
	})
	assert.Equal(t, 400, appCode(t, err))
}

func TestDocumentServiceRestyleSessions(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(nil)
	userId := uuid.New()
	opened := openFox(t, f, userId)

	_, err := f.service.CreateHighlight(ctx, userId, opened.SessionId, &dto.CreateHighlightRequest{Start: 10, End: 15, ColorIndex: 3})
	require.NoError(t, err)

	_, err = f.palettes.Update(ctx, userId, &dto.UpdatePaletteRequest{Colors: []highlight.Color{{Hex: "#FF0000", Opacity: 0.5}}})
	require.NoError(t, err)

	sessions, fallback, err := f.service.RestyleSessions(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, fallback)

	render, err := f.service.Render(ctx, userId, opened.SessionId)
	require.NoError(t, err)
	assert.Contains(t, render.Html, highlight.FallbackStyle)
}

func TestDocumentServiceClose(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(nil)
	userId := uuid.New()
	opened := openFox(t, f, userId)

	assert.Equal(t, 404, appCode(t, f.service.Close(ctx, uuid.New(), opened.SessionId)))
	require.NoError(t, f.service.Close(ctx, userId, opened.SessionId))
	_, err := f.service.Render(ctx, userId, opened.SessionId)
	assert.Equal(t, 404, appCode(t, err))
}
