package memory

import (
	"context"
	"fmt"
	"sync"

	"highlighter-be/pkg/highlight"

	"github.com/patrickmn/go-cache"
)

// AnchorStore keeps anchors in process memory. It is used when no
// database is configured and follows the database rules: anchor ids are
// unique per owner, a document exists only while it has anchors, and an
// empty title is filled in by the next write that has one.
type AnchorStore struct {
	mu    sync.Mutex
	cache *cache.Cache

	// owner -> anchor id -> document key
	ids map[string]map[string]string
}

var _ highlight.Store = (*AnchorStore)(nil)

func NewAnchorStore() *AnchorStore {
	return &AnchorStore{
		cache: cache.New(cache.NoExpiration, 0),
		ids:   make(map[string]map[string]string),
	}
}

func anchorKey(owner, documentKey string) string {
	return owner + "|" + documentKey
}

func (s *AnchorStore) load(owner, documentKey string) (*highlight.DocumentAnchors, bool) {
	x, found := s.cache.Get(anchorKey(owner, documentKey))
	if !found {
		return nil, false
	}
	return x.(*highlight.DocumentAnchors), true
}

// GetAnchors returns a copy so callers never alias stored state. A
// document without anchors yields an empty record.
func (s *AnchorStore) GetAnchors(ctx context.Context, owner, documentKey string) (*highlight.DocumentAnchors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.load(owner, documentKey)
	if !ok {
		return &highlight.DocumentAnchors{Anchors: []highlight.Anchor{}}, nil
	}
	anchors := make([]highlight.Anchor, len(doc.Anchors))
	copy(anchors, doc.Anchors)
	return &highlight.DocumentAnchors{Title: doc.Title, Anchors: anchors}, nil
}

func (s *AnchorStore) PutAnchor(ctx context.Context, owner, documentKey, title string, a highlight.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.ids[owner][a.ID]; taken {
		return nil
	}

	doc, ok := s.load(owner, documentKey)
	if !ok {
		doc = &highlight.DocumentAnchors{Title: title}
		s.cache.Set(anchorKey(owner, documentKey), doc, cache.NoExpiration)
	} else if doc.Title == "" {
		doc.Title = title
	}
	doc.Anchors = append(doc.Anchors, a)

	if s.ids[owner] == nil {
		s.ids[owner] = make(map[string]string)
	}
	s.ids[owner][a.ID] = documentKey
	return nil
}

func (s *AnchorStore) UpdateAnchorField(ctx context.Context, owner, documentKey, id, field string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.load(owner, documentKey)
	if !ok {
		return highlight.ErrAnchorNotFound
	}
	for i := range doc.Anchors {
		if doc.Anchors[i].ID != id {
			continue
		}
		switch field {
		case highlight.FieldNote:
			note, ok := value.(string)
			if !ok {
				return fmt.Errorf("note must be a string, got %T", value)
			}
			doc.Anchors[i].Note = note
		case highlight.FieldColorIndex:
			idx, ok := value.(int)
			if !ok {
				return fmt.Errorf("colorIndex must be an int, got %T", value)
			}
			doc.Anchors[i].ColorIndex = idx
		default:
			return fmt.Errorf("unknown anchor field %q", field)
		}
		return nil
	}
	return highlight.ErrAnchorNotFound
}

func (s *AnchorStore) DeleteAnchor(ctx context.Context, owner, documentKey, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.load(owner, documentKey)
	if !ok {
		return highlight.ErrAnchorNotFound
	}
	for i := range doc.Anchors {
		if doc.Anchors[i].ID == id {
			doc.Anchors = append(doc.Anchors[:i], doc.Anchors[i+1:]...)
			delete(s.ids[owner], id)
			if len(doc.Anchors) == 0 {
				s.cache.Delete(anchorKey(owner, documentKey))
			}
			return nil
		}
	}
	return highlight.ErrAnchorNotFound
}
