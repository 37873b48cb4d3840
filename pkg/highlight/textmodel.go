package highlight

import (
	"strings"
	"unicode"

	"highlighter-be/pkg/doctree"
)

// TextSegment is one run of visible text at the time the model was built.
// A run is a maximal sequence of text nodes with nothing but highlight
// container boundaries between them, so wrapping part of a run never
// changes how the model is cut. Node is the first text node of the run.
type TextSegment struct {
	Index int
	Node  doctree.Node
	Text  string

	// claimed holds the byte ranges of Text already inside a container.
	claimed [][2]int
}

// TextModel is the flattened, ordered view of a document's visible text.
type TextModel struct {
	Segments []TextSegment
}

// Position addresses a byte offset inside a segment.
type Position struct {
	Segment int
	Offset  int
}

// Range is a half-open model range, possibly crossing segments.
type Range struct {
	Start Position
	End   Position
}

// Span is a resolved, single-segment range [Start, End).
type Span struct {
	Segment int
	Start   int
	End     int
}

// Range converts the span to a model range.
func (s Span) Range() Range {
	return Range{
		Start: Position{Segment: s.Segment, Offset: s.Start},
		End:   Position{Segment: s.Segment, Offset: s.End},
	}
}

// Intersects reports whether both spans share at least one character.
func (s Span) Intersects(o Span) bool {
	return s.Segment == o.Segment && s.Start < o.End && o.Start < s.End
}

// Selection is a character (rune) range over the joined text of a model.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var nonContentTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// nonContent reports elements whose subtree never holds readable text.
func nonContent(n doctree.Node) bool {
	if nonContentTags[n.Tag()] {
		return true
	}
	if v, ok := n.Attr("contenteditable"); ok && !strings.EqualFold(v, "false") {
		return true
	}
	return false
}

// BuildTextModel flattens the visible text of tree in reading order.
// It has no side effects; the same tree state yields the same model, and
// applying or removing containers leaves Text() unchanged.
func BuildTextModel(tree doctree.Tree) *TextModel {
	b := &modelBuilder{tree: tree, m: &TextModel{}}
	b.visit(tree.Root(), false)
	b.flush()
	return b.m
}

type modelBuilder struct {
	tree doctree.Tree
	m    *TextModel
	run  *TextSegment
}

func (b *modelBuilder) visit(n doctree.Node, inContainer bool) {
	switch n.Kind() {
	case doctree.TextNode:
		b.add(n, inContainer)
		return
	case doctree.ElementNode:
		if nonContent(n) || b.tree.Hidden(n) {
			b.flush()
			return
		}
		if IsContainer(n) {
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				b.visit(c, true)
			}
			return
		}
	}

	// Any other node ends the run on both sides.
	b.flush()
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		b.visit(c, inContainer)
	}
	b.flush()
}

func (b *modelBuilder) add(n doctree.Node, inContainer bool) {
	if b.run == nil {
		b.run = &TextSegment{Node: n}
	}
	text := n.Data()
	if inContainer && text != "" {
		start := len(b.run.Text)
		b.run.claimed = append(b.run.claimed, [2]int{start, start + len(text)})
	}
	b.run.Text += text
}

// flush closes the current run, dropping it when it is only whitespace.
func (b *modelBuilder) flush() {
	run := b.run
	b.run = nil
	if run == nil || strings.TrimSpace(run.Text) == "" {
		return
	}
	run.Index = len(b.m.Segments)
	b.m.Segments = append(b.m.Segments, *run)
}

// Text joins the segments without separators.
func (m *TextModel) Text() string {
	var sb strings.Builder
	for _, s := range m.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Slice returns the model text covered by r.
func (m *TextModel) Slice(r Range) string {
	if r.Start.Segment == r.End.Segment {
		return m.Segments[r.Start.Segment].Text[r.Start.Offset:r.End.Offset]
	}
	var sb strings.Builder
	sb.WriteString(m.Segments[r.Start.Segment].Text[r.Start.Offset:])
	for i := r.Start.Segment + 1; i < r.End.Segment; i++ {
		sb.WriteString(m.Segments[i].Text)
	}
	sb.WriteString(m.Segments[r.End.Segment].Text[:r.End.Offset])
	return sb.String()
}

// TrimSelection shrinks sel until it neither starts nor ends with
// whitespace. An out-of-bounds or all-whitespace selection is empty.
func TrimSelection(m *TextModel, sel Selection) (Selection, error) {
	runes := []rune(m.Text())
	start, end := sel.Start, sel.End
	if start < 0 || end > len(runes) || start >= end {
		return Selection{}, ErrEmptySelection
	}
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if start == end {
		return Selection{}, ErrEmptySelection
	}
	return Selection{Start: start, End: end}, nil
}

// RangeOf converts a rune selection to a model range, trimming whitespace
// off both edges first.
func (m *TextModel) RangeOf(sel Selection) (Range, error) {
	sel, err := TrimSelection(m, sel)
	if err != nil {
		return Range{}, err
	}
	runes := []rune(m.Text())
	startByte := len(string(runes[:sel.Start]))
	endByte := startByte + len(string(runes[sel.Start:sel.End]))
	return Range{
		Start: m.position(startByte, false),
		End:   m.position(endByte, true),
	}, nil
}

// position maps a byte offset of Text() to a segment position. At a segment
// edge an end boundary stays in the earlier segment and a start boundary
// moves to the later one.
func (m *TextModel) position(off int, atEnd bool) Position {
	for _, s := range m.Segments {
		l := len(s.Text)
		if off < l || (atEnd && off == l) {
			return Position{Segment: s.Index, Offset: off}
		}
		off -= l
	}
	last := len(m.Segments) - 1
	return Position{Segment: last, Offset: len(m.Segments[last].Text)}
}

// boundary locates a model position in the current tree. The characters of
// a segment are the next len(Text) characters of text nodes in document
// order starting at the segment's node, even after wraps split or moved
// them into containers.
func (m *TextModel) boundary(p Position, atEnd bool) (doctree.Boundary, bool) {
	seg := m.Segments[p.Segment]
	remaining := p.Offset
	for n := seg.Node; n != nil; n = doctree.NextInOrder(n) {
		if n.Kind() != doctree.TextNode {
			continue
		}
		l := len(n.Data())
		if remaining < l || (atEnd && remaining == l) {
			return doctree.Boundary{Node: n, Offset: remaining}, true
		}
		remaining -= l
	}
	return doctree.Boundary{}, false
}

// claimsFromContainers marks every character already inside a container.
func claimsFromContainers(m *TextModel) []Span {
	var claims []Span
	for _, s := range m.Segments {
		for _, c := range s.claimed {
			claims = append(claims, Span{Segment: s.Index, Start: c[0], End: c[1]})
		}
	}
	return claims
}

// spans splits r into one span per segment it touches.
func (m *TextModel) spans(r Range) []Span {
	if r.Start.Segment == r.End.Segment {
		return []Span{{Segment: r.Start.Segment, Start: r.Start.Offset, End: r.End.Offset}}
	}
	out := []Span{{Segment: r.Start.Segment, Start: r.Start.Offset, End: len(m.Segments[r.Start.Segment].Text)}}
	for i := r.Start.Segment + 1; i < r.End.Segment; i++ {
		out = append(out, Span{Segment: i, Start: 0, End: len(m.Segments[i].Text)})
	}
	return append(out, Span{Segment: r.End.Segment, Start: 0, End: r.End.Offset})
}
