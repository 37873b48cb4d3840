package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"highlighter-be/internal/entity"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/internal/repository/contract"
	"highlighter-be/internal/repository/memory"
	"highlighter-be/internal/repository/specification"
	"highlighter-be/internal/repository/unitofwork"
	"highlighter-be/pkg/highlight"

	"github.com/google/uuid"
)

const foxPage = `<html><head><title>Fox</title></head><body><p>The quick brown fox jumps.</p></body></html>`

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.err
}

type fakeNotifications struct {
	mu       sync.Mutex
	restored []highlight.Result
	palettes []int
	created  []string
	deleted  []string
}

func (n *fakeNotifications) RestorationCompleted(ctx context.Context, userID uuid.UUID, sessionID, title string, res highlight.Result) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.restored = append(n.restored, res)
}

func (n *fakeNotifications) PaletteChanged(ctx context.Context, userID uuid.UUID, sessions, fallback int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.palettes = append(n.palettes, sessions)
}

func (n *fakeNotifications) HighlightCreated(ctx context.Context, userID uuid.UUID, title string, a highlight.Anchor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, a.ID)
}

func (n *fakeNotifications) HighlightDeleted(ctx context.Context, userID uuid.UUID, title, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, id)
}

// failingStore fails writes after delegating reads.
type failingStore struct {
	highlight.Store
	err error
}

func (s failingStore) PutAnchor(ctx context.Context, owner, documentKey, title string, a highlight.Anchor) error {
	return s.err
}

// flakyStore passes writes through until err is set.
type flakyStore struct {
	highlight.Store
	err error
}

func (s *flakyStore) PutAnchor(ctx context.Context, owner, documentKey, title string, a highlight.Anchor) error {
	if s.err != nil {
		return s.err
	}
	return s.Store.PutAnchor(ctx, owner, documentKey, title, a)
}

func (s *flakyStore) UpdateAnchorField(ctx context.Context, owner, documentKey, id, field string, value interface{}) error {
	if s.err != nil {
		return s.err
	}
	return s.Store.UpdateAnchorField(ctx, owner, documentKey, id, field, value)
}

func (s *flakyStore) DeleteAnchor(ctx context.Context, owner, documentKey, id string) error {
	if s.err != nil {
		return s.err
	}
	return s.Store.DeleteAnchor(ctx, owner, documentKey, id)
}

type documentFixture struct {
	service       IDocumentService
	anchors       *memory.AnchorStore
	palettes      IPaletteService
	publisher     *fakePublisher
	notifications *fakeNotifications
	sessions      *memory.SessionRepository
}

func newDocumentFixture(store highlight.Store) *documentFixture {
	mem := memory.NewAnchorStore()
	if store == nil {
		store = mem
	}
	pub := &fakePublisher{}
	notes := &fakeNotifications{}
	palettes := NewPaletteService(nil, nil, pub, logger.NewNopLogger())
	sessions := memory.NewSessionRepository(time.Minute)
	return &documentFixture{
		service:       NewDocumentService(store, palettes, sessions, notes, 5, logger.NewNopLogger()),
		anchors:       mem,
		palettes:      palettes,
		publisher:     pub,
		notifications: notes,
		sessions:      sessions,
	}
}

// fakeDB keeps rows in slices; the fake repositories understand the
// specifications the services use.
type fakeDB struct {
	mu       sync.Mutex
	docs     []*entity.HighlightDocument
	anchors  []*entity.HighlightAnchor
	palettes []*entity.HighlightPalette
	begun    int
	commits  int
}

type fakeFactory struct{ db *fakeDB }

func newFakeFactory() *fakeFactory {
	return &fakeFactory{db: &fakeDB{}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{db: f.db}
}

type fakeUnitOfWork struct {
	db *fakeDB
	tx bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.tx {
		return errors.New("transaction already started")
	}
	u.tx = true
	u.db.mu.Lock()
	u.db.begun++
	u.db.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.tx {
		return errors.New("no transaction to commit")
	}
	u.tx = false
	u.db.mu.Lock()
	u.db.commits++
	u.db.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.tx {
		return errors.New("no transaction to rollback")
	}
	u.tx = false
	return nil
}

func (u *fakeUnitOfWork) HighlightDocumentRepository() contract.HighlightDocumentRepository {
	return &fakeDocumentRepo{db: u.db}
}

func (u *fakeUnitOfWork) HighlightAnchorRepository() contract.HighlightAnchorRepository {
	return &fakeAnchorRepo{db: u.db}
}

func (u *fakeUnitOfWork) HighlightPaletteRepository() contract.HighlightPaletteRepository {
	return &fakePaletteRepo{db: u.db}
}

type row struct {
	id, userId, documentId uuid.UUID
	documentKey, anchorId  string
}

func matches(r row, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if r.id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if r.userId != s.UserID {
				return false
			}
		case specification.ByDocumentKey:
			if r.documentKey != s.DocumentKey {
				return false
			}
		case specification.ByDocumentID:
			if r.documentId != s.DocumentID {
				return false
			}
		case specification.ByAnchorID:
			if r.anchorId != s.AnchorID {
				return false
			}
		}
	}
	return true
}

func orderDesc(specs []specification.Specification) (bool, bool) {
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok {
			return true, o.Desc
		}
	}
	return false, false
}

type fakeDocumentRepo struct{ db *fakeDB }

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *entity.HighlightDocument) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *doc
	r.db.docs = append(r.db.docs, &cp)
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, doc *entity.HighlightDocument) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, d := range r.db.docs {
		if d.Id == doc.Id {
			cp := *doc
			r.db.docs[i] = &cp
		}
	}
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, d := range r.db.docs {
		if d.Id == id {
			r.db.docs = append(r.db.docs[:i], r.db.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightDocument, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, d := range r.db.docs {
		if matches(row{id: d.Id, userId: d.UserId, documentKey: d.DocumentKey}, specs) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeAnchorRepo struct{ db *fakeDB }

func (r *fakeAnchorRepo) Create(ctx context.Context, anchor *entity.HighlightAnchor) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.anchors {
		if a.UserId == anchor.UserId && a.AnchorId == anchor.AnchorId {
			return false, nil
		}
	}
	cp := *anchor
	r.db.anchors = append(r.db.anchors, &cp)
	return true, nil
}

func (r *fakeAnchorRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.anchors {
		if a.Id != id {
			continue
		}
		if v, ok := fields["note"]; ok {
			a.Note = v.(string)
		}
		if v, ok := fields["color_index"]; ok {
			a.ColorIndex = v.(int)
		}
	}
	return nil
}

func (r *fakeAnchorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, a := range r.db.anchors {
		if a.Id == id {
			r.db.anchors = append(r.db.anchors[:i], r.db.anchors[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeAnchorRepo) find(specs []specification.Specification) []*entity.HighlightAnchor {
	var out []*entity.HighlightAnchor
	for _, a := range r.db.anchors {
		if matches(row{id: a.Id, userId: a.UserId, documentId: a.DocumentId, anchorId: a.AnchorId}, specs) {
			cp := *a
			out = append(out, &cp)
		}
	}
	if ordered, desc := orderDesc(specs); ordered {
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return out[i].Position > out[j].Position
			}
			return out[i].Position < out[j].Position
		})
	}
	return out
}

func (r *fakeAnchorRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightAnchor, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	found := r.find(specs)
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *fakeAnchorRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HighlightAnchor, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.find(specs), nil
}

func (r *fakeAnchorRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.find(specs))), nil
}

type fakePaletteRepo struct{ db *fakeDB }

func (r *fakePaletteRepo) Save(ctx context.Context, palette *entity.HighlightPalette) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *palette
	for i, p := range r.db.palettes {
		if p.UserId == palette.UserId {
			r.db.palettes[i] = &cp
			return nil
		}
	}
	r.db.palettes = append(r.db.palettes, &cp)
	return nil
}

func (r *fakePaletteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HighlightPalette, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.palettes {
		if matches(row{id: p.Id, userId: p.UserId}, specs) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}
