package highlight

import (
	"context"
	"fmt"
	"sync"

	"highlighter-be/pkg/doctree"
)

const logModule = "highlight"

// Logger is the subset of the application logger the engine writes to.
type Logger interface {
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
}

// Notifier is told once about every pass that ran to completion.
type Notifier interface {
	PassCompleted(res Result)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(res Result)

func (f NotifierFunc) PassCompleted(res Result) { f(res) }

// Options configures a Document. Zero values fall back to defaults.
type Options struct {
	ContextLength int
	Logger        Logger
	Notifier      Notifier
}

// Result reports one restoration pass.
type Result struct {
	PassID    string            `json:"pass_id"`
	Restored  []string          `json:"restored"`
	Failed    []string          `json:"failed"`
	Skipped   []string          `json:"skipped"`
	Failures  map[string]string `json:"failures,omitempty"`
	Cancelled bool              `json:"cancelled"`
}

func (r *Result) fail(id string, err error) {
	r.Failed = append(r.Failed, id)
	if r.Failures == nil {
		r.Failures = make(map[string]string)
	}
	r.Failures[id] = err.Error()
}

// Document owns a tree and serialises every operation that mutates it.
type Document struct {
	tree doctree.Tree
	opts Options

	mu sync.Mutex

	passMu  sync.Mutex
	current *Pass
}

// NewDocument wraps tree for highlighting.
func NewDocument(tree doctree.Tree, opts Options) *Document {
	if opts.ContextLength <= 0 {
		opts.ContextLength = DefaultContextLength
	}
	return &Document{tree: tree, opts: opts}
}

// ContextLength is the window used for extraction and matching.
func (d *Document) ContextLength() int {
	return d.opts.ContextLength
}

// CurrentPass returns the most recently started pass, if any.
func (d *Document) CurrentPass() *Pass {
	d.passMu.Lock()
	defer d.passMu.Unlock()
	return d.current
}

// Restore runs a restoration pass for anchors in input order. Starting a
// pass cancels the one in flight and waits for it to stop first. Per-anchor
// failures are recorded in the result and never abort the pass; a
// cancelled pass returns its partial result with Cancelled set.
func (d *Document) Restore(ctx context.Context, anchors []Anchor, palette Palette) (*Result, error) {
	p := newPass(ctx)

	d.passMu.Lock()
	prev := d.current
	d.current = p
	d.passMu.Unlock()

	if prev != nil {
		prev.Cancel()
		<-prev.Done()
	}

	res := d.restore(p, anchors, palette)
	// Notified outside the lock: a slow notifier must not stall edits.
	if !res.Cancelled && d.opts.Notifier != nil {
		d.opts.Notifier.PassCompleted(*res)
	}
	return res, nil
}

func (d *Document) restore(p *Pass, anchors []Anchor, palette Palette) *Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	res := &Result{PassID: p.ID}
	if p.cancelled() {
		res.Cancelled = true
		p.finish(PassCancelled)
		return res
	}
	p.setState(PassRunning)

	n := d.opts.ContextLength
	m := BuildTextModel(d.tree)
	claimed := claimsFromContainers(m)
	present := make(map[string]bool)
	for _, c := range Containers(d.tree) {
		present[c.ID] = true
	}

	for _, a := range anchors {
		if p.cancelled() {
			res.Cancelled = true
			break
		}
		if present[a.ID] {
			res.Skipped = append(res.Skipped, a.ID)
			continue
		}
		if err := a.Validate(n); err != nil {
			res.fail(a.ID, err)
			d.warn("anchor rejected", a.ID, err)
			continue
		}
		span, err := Resolve(a, m, claimed, n)
		if err != nil {
			res.fail(a.ID, err)
			d.warn("anchor not resolved", a.ID, err)
			continue
		}
		if _, err := Apply(d.tree, m, span.Range(), a.Metadata(), palette); err != nil {
			res.fail(a.ID, err)
			d.warn("anchor not applied", a.ID, err)
			continue
		}
		claimed = append(claimed, span)
		present[a.ID] = true
		res.Restored = append(res.Restored, a.ID)
	}

	if res.Cancelled {
		p.finish(PassCancelled)
		d.info("restoration pass cancelled", res)
		return res
	}
	p.finish(PassCompleted)
	d.info("restoration pass completed", res)
	return res
}

// Create highlights the selection, returning the anchor to persist and the
// applied container. The selection is trimmed of surrounding whitespace.
func (d *Document) Create(sel Selection, colorIndex int, palette Palette) (Anchor, Container, error) {
	if !palette.Has(colorIndex) {
		return Anchor{}, Container{}, fmt.Errorf("%w: %d", ErrInvalidColorIndex, colorIndex)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	m := BuildTextModel(d.tree)
	r, err := m.RangeOf(sel)
	if err != nil {
		return Anchor{}, Container{}, err
	}
	for _, s := range m.spans(r) {
		if intersectsAny(s, claimsFromContainers(m)) {
			return Anchor{}, Container{}, fmt.Errorf("%w: selection overlaps an existing highlight", ErrAlreadyPresent)
		}
	}

	ctx := ExtractContext(m, r, d.opts.ContextLength)
	a := Anchor{
		ID:          NewID(),
		Text:        ctx.Text,
		PreContext:  ctx.PreContext,
		PostContext: ctx.PostContext,
		ColorIndex:  colorIndex,
	}
	c, err := Apply(d.tree, m, r, a.Metadata(), palette)
	if err != nil {
		return Anchor{}, Container{}, err
	}
	return a, c, nil
}

// Remove unwraps the container carrying id.
func (d *Document) Remove(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := FindContainer(d.tree, id)
	if !ok {
		return ErrContainerNotFound
	}
	return Remove(d.tree, c)
}

// SetNote trims note and stores it on the container carrying id.
func (d *Document) SetNote(id, note string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := FindContainer(d.tree, id)
	if !ok {
		return "", ErrContainerNotFound
	}
	note = TrimNote(note)
	UpdateNote(d.tree, c, note)
	return note, nil
}

// SetColor moves the container carrying id to palette entry i.
func (d *Document) SetColor(id string, i int, palette Palette) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := FindContainer(d.tree, id)
	if !ok {
		return ErrContainerNotFound
	}
	return UpdateColor(d.tree, c, i, palette)
}

// Restyle re-applies palette to every container.
func (d *Document) Restyle(palette Palette) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Restyle(d.tree, palette)
}

// Containers lists the applied highlights.
func (d *Document) Containers() []Container {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Containers(d.tree)
}

// View runs fn with exclusive access to the tree, for rendering.
func (d *Document) View(fn func(tree doctree.Tree)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.tree)
}

func (d *Document) warn(message, id string, err error) {
	if d.opts.Logger == nil {
		return
	}
	d.opts.Logger.Warn(logModule, message, map[string]interface{}{
		"anchor_id": id,
		"error":     err.Error(),
	})
}

func (d *Document) info(message string, res *Result) {
	if d.opts.Logger == nil {
		return
	}
	d.opts.Logger.Info(logModule, message, map[string]interface{}{
		"pass_id":  res.PassID,
		"restored": len(res.Restored),
		"failed":   len(res.Failed),
		"skipped":  len(res.Skipped),
	})
}
