package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"highlighter-be/internal/entity"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/internal/repository/specification"
	"highlighter-be/internal/repository/unitofwork"
	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// errAnchorExists rolls back a put whose anchor id is already taken.
var errAnchorExists = errors.New("anchor id already stored")

// anchorStore persists anchors through the unit of work and keeps a
// read-through Redis copy of each document's anchor list. Writes drop the
// cached copy.
type anchorStore struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
	ttl        time.Duration
	logger     logger.ILogger
}

// NewAnchorStore returns the database-backed store. rdb may be nil, in
// which case every read goes to the database.
func NewAnchorStore(uowFactory unitofwork.RepositoryFactory, rdb *redis.Client, ttl time.Duration, log logger.ILogger) highlight.Store {
	return &anchorStore{
		uowFactory: uowFactory,
		rdb:        rdb,
		ttl:        ttl,
		logger:     log,
	}
}

func anchorCacheKey(owner uuid.UUID, documentKey string) string {
	return fmt.Sprintf("highlight:anchors:%s:%s", owner, documentKey)
}

func parseOwner(owner string) (uuid.UUID, error) {
	id, err := uuid.Parse(owner)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid owner %q: %w", owner, err)
	}
	return id, nil
}

var anchorColumns = map[string]string{
	highlight.FieldNote:       "note",
	highlight.FieldColorIndex: "color_index",
}

func (s *anchorStore) GetAnchors(ctx context.Context, owner, documentKey string) (*highlight.DocumentAnchors, error) {
	userId, err := parseOwner(owner)
	if err != nil {
		return nil, err
	}

	if cached := s.cached(ctx, userId, documentKey); cached != nil {
		return cached, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.HighlightDocumentRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByDocumentKey{DocumentKey: documentKey},
	)
	if err != nil {
		return nil, err
	}

	res := &highlight.DocumentAnchors{Anchors: []highlight.Anchor{}}
	if doc == nil {
		return res, nil
	}
	res.Title = doc.Title

	rows, err := uow.HighlightAnchorRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: doc.Id},
		specification.OrderBy{Field: "position"},
	)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		res.Anchors = append(res.Anchors, row.ToAnchor())
	}

	s.cache(ctx, userId, documentKey, res)
	return res, nil
}

func (s *anchorStore) PutAnchor(ctx context.Context, owner, documentKey, title string, a highlight.Anchor) error {
	userId, err := parseOwner(owner)
	if err != nil {
		return err
	}

	existing, err := s.uowFactory.NewUnitOfWork(ctx).HighlightAnchorRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByAnchorID{AnchorID: a.ID},
	)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	err = unitofwork.Transaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		doc, err := s.ensureDocument(ctx, uow, userId, documentKey, title)
		if err != nil {
			return err
		}

		anchors := uow.HighlightAnchorRepository()
		last, err := anchors.FindOne(ctx,
			specification.ByDocumentID{DocumentID: doc.Id},
			specification.OrderBy{Field: "position", Desc: true},
		)
		if err != nil {
			return err
		}
		position := 0
		if last != nil {
			position = last.Position + 1
		}

		created, err := anchors.Create(ctx, &entity.HighlightAnchor{
			Id:          uuid.New(),
			DocumentId:  doc.Id,
			UserId:      userId,
			AnchorId:    a.ID,
			Text:        a.Text,
			PreContext:  a.PreContext,
			PostContext: a.PostContext,
			ColorIndex:  a.ColorIndex,
			Note:        a.Note,
			Position:    position,
			CreatedAt:   time.Now(),
		})
		if err == nil && !created {
			// Lost a race for the id; drop the document row made above.
			return errAnchorExists
		}
		return err
	})
	if errors.Is(err, errAnchorExists) {
		return nil
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, userId, documentKey)
	return nil
}

// ensureDocument finds or creates the user's record for documentKey and
// fills in a title it was created without.
func (s *anchorStore) ensureDocument(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, documentKey, title string) (*entity.HighlightDocument, error) {
	docs := uow.HighlightDocumentRepository()
	doc, err := docs.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByDocumentKey{DocumentKey: documentKey},
	)
	if err != nil {
		return nil, err
	}
	switch {
	case doc == nil:
		doc = &entity.HighlightDocument{
			Id:          uuid.New(),
			UserId:      userId,
			DocumentKey: documentKey,
			Title:       title,
			CreatedAt:   time.Now(),
		}
		err = docs.Create(ctx, doc)
	case doc.Title == "" && title != "":
		doc.Title = title
		err = docs.Update(ctx, doc)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *anchorStore) UpdateAnchorField(ctx context.Context, owner, documentKey, id, field string, value interface{}) error {
	userId, err := parseOwner(owner)
	if err != nil {
		return err
	}
	column, ok := anchorColumns[field]
	if !ok {
		return fmt.Errorf("unknown anchor field %q", field)
	}
	switch field {
	case highlight.FieldNote:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("note must be a string, got %T", value)
		}
	case highlight.FieldColorIndex:
		if _, ok := value.(int); !ok {
			return fmt.Errorf("colorIndex must be an int, got %T", value)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	row, err := s.findAnchor(ctx, uow, userId, documentKey, id)
	if err != nil {
		return err
	}
	if err := uow.HighlightAnchorRepository().UpdateFields(ctx, row.Id, map[string]interface{}{column: value}); err != nil {
		return err
	}
	s.invalidate(ctx, userId, documentKey)
	return nil
}

// DeleteAnchor drops the document record together with its last anchor.
func (s *anchorStore) DeleteAnchor(ctx context.Context, owner, documentKey, id string) error {
	userId, err := parseOwner(owner)
	if err != nil {
		return err
	}

	err = unitofwork.Transaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		row, err := s.findAnchor(ctx, uow, userId, documentKey, id)
		if err != nil {
			return err
		}
		anchors := uow.HighlightAnchorRepository()
		if err := anchors.Delete(ctx, row.Id); err != nil {
			return err
		}
		remaining, err := anchors.Count(ctx, specification.ByDocumentID{DocumentID: row.DocumentId})
		if err != nil || remaining > 0 {
			return err
		}
		return uow.HighlightDocumentRepository().Delete(ctx, row.DocumentId)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, userId, documentKey)
	return nil
}

func (s *anchorStore) findAnchor(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, documentKey, id string) (*entity.HighlightAnchor, error) {
	doc, err := uow.HighlightDocumentRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByDocumentKey{DocumentKey: documentKey},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, highlight.ErrAnchorNotFound
	}
	row, err := uow.HighlightAnchorRepository().FindOne(ctx,
		specification.ByDocumentID{DocumentID: doc.Id},
		specification.ByAnchorID{AnchorID: id},
	)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, highlight.ErrAnchorNotFound
	}
	return row, nil
}

func (s *anchorStore) cached(ctx context.Context, userId uuid.UUID, documentKey string) *highlight.DocumentAnchors {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, anchorCacheKey(userId, documentKey)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("AnchorStore", "Anchor cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	var res highlight.DocumentAnchors
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil
	}
	if res.Anchors == nil {
		res.Anchors = []highlight.Anchor{}
	}
	return &res
}

func (s *anchorStore) cache(ctx context.Context, userId uuid.UUID, documentKey string, res *highlight.DocumentAnchors) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, anchorCacheKey(userId, documentKey), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("AnchorStore", "Anchor cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *anchorStore) invalidate(ctx context.Context, userId uuid.UUID, documentKey string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, anchorCacheKey(userId, documentKey)).Err(); err != nil {
		s.logger.Warn("AnchorStore", "Anchor cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
