package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"highlighter-be/internal/dto"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/internal/pkg/serverutils"
	"highlighter-be/internal/repository/memory"
	"highlighter-be/pkg/doctree"
	"highlighter-be/pkg/doctree/htmltree"
	"highlighter-be/pkg/highlight"
	"highlighter-be/pkg/lexical"
	"highlighter-be/pkg/store"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Open(ctx context.Context, userId uuid.UUID, req *dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Restore(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionResponse, error)
	Render(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.RenderResponse, error)
	CreateHighlight(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.CreateHighlightRequest) (*dto.HighlightResponse, error)
	UpdateHighlight(ctx context.Context, userId uuid.UUID, sessionId, id string, req *dto.UpdateHighlightRequest) (*dto.HighlightResponse, error)
	DeleteHighlight(ctx context.Context, userId uuid.UUID, sessionId, id string) error
	Close(ctx context.Context, userId uuid.UUID, sessionId string) error
	RestoreOnce(ctx context.Context, userId uuid.UUID, req *dto.RestoreRequest) (*dto.RestoreResponse, error)
	RestyleSessions(ctx context.Context, userId uuid.UUID) (int, int, error)
}

type documentService struct {
	anchors        highlight.Store
	paletteService IPaletteService
	sessions       *memory.SessionRepository
	notifications  INotificationService
	renderer       *lexical.Renderer
	contextLength  int
	logger         logger.ILogger
}

// NewDocumentService keeps live documents in sessions and runs the
// highlight engine on them. notifications may be nil.
func NewDocumentService(
	anchors highlight.Store,
	paletteService IPaletteService,
	sessions *memory.SessionRepository,
	notifications INotificationService,
	contextLength int,
	log logger.ILogger,
) IDocumentService {
	if contextLength <= 0 {
		contextLength = highlight.DefaultContextLength
	}
	return &documentService{
		anchors:        anchors,
		paletteService: paletteService,
		sessions:       sessions,
		notifications:  notifications,
		renderer:       lexical.NewRenderer(),
		contextLength:  contextLength,
		logger:         log,
	}
}

func (s *documentService) Open(ctx context.Context, userId uuid.UUID, req *dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	key, err := highlight.DocumentKey(req.Url)
	if err != nil {
		return nil, serverutils.BadRequest("Invalid document url", err)
	}
	tree, contentType, err := s.parse(req.Content, req.ContentType, req.Title)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = tree.Title()
	}

	session := &store.Session{
		ID:          uuid.NewString(),
		UserID:      userId.String(),
		URL:         req.Url,
		DocumentKey: key,
		Title:       title,
		ContentType: contentType,
		Tree:        tree,
		OpenedAt:    time.Now(),
	}
	session.Document = highlight.NewDocument(tree, highlight.Options{
		ContextLength: s.contextLength,
		Logger:        s.logger,
		Notifier:      s.passNotifier(userId, session),
	})
	s.sessions.Save(session)

	s.logger.Info("DocumentService", "Session opened", map[string]interface{}{
		"session_id":   session.ID,
		"user_id":      session.UserID,
		"document_key": key,
		"content_type": contentType,
	})

	return s.restore(ctx, userId, session)
}

func (s *documentService) Restore(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionResponse, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	return s.restore(ctx, userId, session)
}

func (s *documentService) restore(ctx context.Context, userId uuid.UUID, session *store.Session) (*dto.SessionResponse, error) {
	doc, err := s.anchors.GetAnchors(ctx, session.UserID, session.DocumentKey)
	if err != nil {
		return nil, serverutils.Internal("Could not load highlights", err)
	}
	palette, err := s.paletteService.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	res, err := session.Document.Restore(ctx, doc.Anchors, palette)
	if err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		SessionId:   session.ID,
		Url:         session.URL,
		DocumentKey: session.DocumentKey,
		Title:       session.Title,
		Result:      res,
		Html:        s.renderBody(session),
		Css:         palette.CSS(),
	}, nil
}

func (s *documentService) Render(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.RenderResponse, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	palette, err := s.paletteService.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.RenderResponse{
		SessionId:  session.ID,
		Title:      session.Title,
		Css:        palette.CSS(),
		Highlights: []dto.HighlightResponse{},
	}
	session.Document.View(func(tree doctree.Tree) {
		res.Html = session.Tree.InnerHTML(session.Tree.Body())
		for _, c := range highlight.Containers(tree) {
			res.Highlights = append(res.Highlights, highlightResponse(c))
		}
	})
	return res, nil
}

func (s *documentService) CreateHighlight(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.CreateHighlightRequest) (*dto.HighlightResponse, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	palette, err := s.paletteService.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	anchor, container, err := session.Document.Create(highlight.Selection{Start: req.Start, End: req.End}, req.ColorIndex, palette)
	if err != nil {
		return nil, engineError(err)
	}

	if err := s.anchors.PutAnchor(ctx, session.UserID, session.DocumentKey, session.Title, anchor); err != nil {
		// Never leave an unpersisted highlight on the page.
		if rbErr := session.Document.Remove(anchor.ID); rbErr != nil {
			s.logger.Error("DocumentService", "Failed to roll back highlight", map[string]interface{}{
				"highlight_id": anchor.ID,
				"error":        rbErr.Error(),
			})
		}
		return nil, serverutils.Internal("Could not save highlight", err)
	}

	if s.notifications != nil {
		s.notifications.HighlightCreated(ctx, userId, session.Title, anchor)
	}

	res := highlightResponse(container)
	res.Text = anchor.Text
	return &res, nil
}

// UpdateHighlight persists first and only then touches the page, so a
// failed write leaves the session showing what is stored.
func (s *documentService) UpdateHighlight(ctx context.Context, userId uuid.UUID, sessionId, id string, req *dto.UpdateHighlightRequest) (*dto.HighlightResponse, error) {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}
	if _, ok := findContainer(session, id); !ok {
		return nil, engineError(highlight.ErrContainerNotFound)
	}

	if req.ColorIndex != nil {
		palette, err := s.paletteService.Get(ctx, userId)
		if err != nil {
			return nil, err
		}
		if !palette.Has(*req.ColorIndex) {
			return nil, engineError(fmt.Errorf("%w: %d", highlight.ErrInvalidColorIndex, *req.ColorIndex))
		}
		if err := s.anchors.UpdateAnchorField(ctx, session.UserID, session.DocumentKey, id, highlight.FieldColorIndex, *req.ColorIndex); err != nil {
			return nil, storeError(err)
		}
		if err := session.Document.SetColor(id, *req.ColorIndex, palette); err != nil {
			return nil, engineError(err)
		}
	}

	if req.Note != nil {
		note := highlight.TrimNote(*req.Note)
		if err := s.anchors.UpdateAnchorField(ctx, session.UserID, session.DocumentKey, id, highlight.FieldNote, note); err != nil {
			return nil, storeError(err)
		}
		if _, err := session.Document.SetNote(id, note); err != nil {
			return nil, engineError(err)
		}
	}

	c, ok := findContainer(session, id)
	if !ok {
		return nil, engineError(highlight.ErrContainerNotFound)
	}
	res := highlightResponse(c)
	return &res, nil
}

func (s *documentService) DeleteHighlight(ctx context.Context, userId uuid.UUID, sessionId, id string) error {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return err
	}
	if _, ok := findContainer(session, id); !ok {
		return engineError(highlight.ErrContainerNotFound)
	}
	if err := s.anchors.DeleteAnchor(ctx, session.UserID, session.DocumentKey, id); err != nil {
		return storeError(err)
	}
	if err := session.Document.Remove(id); err != nil {
		return engineError(err)
	}
	if s.notifications != nil {
		s.notifications.HighlightDeleted(ctx, userId, session.Title, id)
	}
	return nil
}

func findContainer(session *store.Session, id string) (highlight.Container, bool) {
	for _, c := range session.Document.Containers() {
		if c.ID == id {
			return c, true
		}
	}
	return highlight.Container{}, false
}

func (s *documentService) Close(ctx context.Context, userId uuid.UUID, sessionId string) error {
	session, err := s.session(userId, sessionId)
	if err != nil {
		return err
	}
	if p := session.Document.CurrentPass(); p != nil {
		p.Cancel()
	}
	s.sessions.Delete(session.ID)
	s.logger.Info("DocumentService", "Session closed", map[string]interface{}{"session_id": session.ID})
	return nil
}

func (s *documentService) RestoreOnce(ctx context.Context, userId uuid.UUID, req *dto.RestoreRequest) (*dto.RestoreResponse, error) {
	key, err := highlight.DocumentKey(req.Url)
	if err != nil {
		return nil, serverutils.BadRequest("Invalid document url", err)
	}
	tree, _, err := s.parse(req.Content, req.ContentType, req.Title)
	if err != nil {
		return nil, err
	}

	anchors := req.Anchors
	if anchors == nil {
		doc, err := s.anchors.GetAnchors(ctx, userId.String(), key)
		if err != nil {
			return nil, serverutils.Internal("Could not load highlights", err)
		}
		anchors = doc.Anchors
	}
	palette, err := s.paletteService.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	doc := highlight.NewDocument(tree, highlight.Options{
		ContextLength: s.contextLength,
		Logger:        s.logger,
	})
	res, err := doc.Restore(ctx, anchors, palette)
	if err != nil {
		return nil, err
	}

	out := &dto.RestoreResponse{Result: res, Css: palette.CSS()}
	doc.View(func(doctree.Tree) {
		out.Html = tree.InnerHTML(tree.Body())
	})
	return out, nil
}

// RestyleSessions re-applies the user's current palette to every live
// document. Each restyle waits for the document's in-flight pass. It
// returns the number of sessions and of containers left on the fallback
// colour.
func (s *documentService) RestyleSessions(ctx context.Context, userId uuid.UUID) (int, int, error) {
	palette, err := s.paletteService.Get(ctx, userId)
	if err != nil {
		return 0, 0, err
	}
	sessions := s.sessions.ByUser(userId.String())
	fallback := 0
	for _, session := range sessions {
		fallback += session.Document.Restyle(palette)
	}
	return len(sessions), fallback, nil
}

func (s *documentService) session(userId uuid.UUID, sessionId string) (*store.Session, error) {
	session, ok := s.sessions.Get(sessionId)
	if !ok || session.UserID != userId.String() {
		return nil, serverutils.NotFound("Session not found", nil)
	}
	return session, nil
}

// parse builds the document tree, rendering Lexical JSON to HTML first.
// An empty content type is sniffed from the content.
func (s *documentService) parse(content, contentType, title string) (*htmltree.Document, string, error) {
	if contentType == "" {
		contentType = store.ContentHTML
		if lexical.LooksLikeLexical(content) {
			contentType = store.ContentLexical
		}
	}

	if contentType == store.ContentLexical {
		rendered, err := s.renderer.Render(content, title)
		if err != nil {
			return nil, "", serverutils.BadRequest("Invalid lexical content", err)
		}
		content = rendered
	}

	tree, err := htmltree.ParseString(content)
	if err != nil {
		return nil, "", serverutils.BadRequest("Invalid HTML content", err)
	}
	return tree, contentType, nil
}

func (s *documentService) renderBody(session *store.Session) string {
	var out string
	session.Document.View(func(doctree.Tree) {
		out = session.Tree.InnerHTML(session.Tree.Body())
	})
	return out
}

func (s *documentService) passNotifier(userId uuid.UUID, session *store.Session) highlight.Notifier {
	return highlight.NotifierFunc(func(res highlight.Result) {
		if s.notifications == nil {
			return
		}
		s.notifications.RestorationCompleted(context.Background(), userId, session.ID, session.Title, res)
	})
}

func highlightResponse(c highlight.Container) dto.HighlightResponse {
	return dto.HighlightResponse{
		Id:         c.ID,
		Text:       doctree.TextContent(c.Node),
		ColorIndex: c.ColorIndex,
		Note:       c.Note,
	}
}

// engineError maps engine failures onto client-facing errors.
func engineError(err error) error {
	switch {
	case errors.Is(err, highlight.ErrContainerNotFound):
		return serverutils.NotFound("Highlight not found", nil)
	case errors.Is(err, highlight.ErrAlreadyPresent):
		return serverutils.Conflict(err.Error(), nil)
	case errors.Is(err, highlight.ErrInvalidColorIndex),
		errors.Is(err, highlight.ErrEmptySelection),
		errors.Is(err, highlight.ErrNotSurroundable):
		return serverutils.Unprocessable(err.Error(), nil)
	default:
		return serverutils.BadRequest(fmt.Sprintf("Could not apply highlight: %v", err), nil)
	}
}

// storeError reports a failed persistence step for one anchor.
func storeError(err error) error {
	if errors.Is(err, highlight.ErrAnchorNotFound) {
		return serverutils.NotFound("Highlight not found", nil)
	}
	return serverutils.Internal("Could not complete this highlight's lifecycle step", err)
}
