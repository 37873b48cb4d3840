package highlight

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"highlighter-be/pkg/doctree"
)

// Container element markup.
const (
	ContainerTag   = "span"
	ContainerClass = "highlight"
	AttrID         = "data-highlight-id"
	AttrColorIndex = "data-color-index"
	AttrNote       = "data-note"
	AttrHasNote    = "data-has-note"
	styleProperty  = "--highlight-bg-color"
)

// Container is an applied highlight in the live tree.
type Container struct {
	Node       doctree.Node
	ID         string
	ColorIndex int
	Note       string
}

// IsContainer reports whether n is a highlight container element.
func IsContainer(n doctree.Node) bool {
	if n == nil || n.Kind() != doctree.ElementNode {
		return false
	}
	if _, ok := n.Attr(AttrID); !ok {
		return false
	}
	class, _ := n.Attr("class")
	for _, c := range strings.Fields(class) {
		if c == ContainerClass {
			return true
		}
	}
	return false
}

func containerOf(n doctree.Node) Container {
	id, _ := n.Attr(AttrID)
	note, _ := n.Attr(AttrNote)
	idx := -1
	if v, ok := n.Attr(AttrColorIndex); ok {
		if i, err := strconv.Atoi(v); err == nil {
			idx = i
		}
	}
	return Container{Node: n, ID: id, ColorIndex: idx, Note: note}
}

// Containers lists every container in document order.
func Containers(tree doctree.Tree) []Container {
	var out []Container
	doctree.Walk(tree.Root(), func(n doctree.Node) bool {
		if IsContainer(n) {
			out = append(out, containerOf(n))
		}
		return true
	})
	return out
}

// FindContainer returns the container carrying id.
func FindContainer(tree doctree.Tree, id string) (Container, bool) {
	var found *Container
	doctree.Walk(tree.Root(), func(n doctree.Node) bool {
		if found != nil {
			return false
		}
		if IsContainer(n) {
			if v, _ := n.Attr(AttrID); v == id {
				c := containerOf(n)
				found = &c
				return false
			}
		}
		return true
	})
	if found == nil {
		return Container{}, false
	}
	return *found, true
}

// Apply wraps the characters of r in a new container. It fails with
// ErrNotSurroundable when the range crosses a block boundary or would split
// an element. An out-of-range colour index is not an error here; the
// container gets the fallback style.
func Apply(tree doctree.Tree, m *TextModel, r Range, meta Metadata, palette Palette) (Container, error) {
	start, ok := m.boundary(r.Start, false)
	if !ok {
		return Container{}, fmt.Errorf("%w: start position not found", ErrNotSurroundable)
	}
	end, ok := m.boundary(r.End, true)
	if !ok {
		return Container{}, fmt.Errorf("%w: end position not found", ErrNotSurroundable)
	}
	dr := doctree.Range{Start: start, End: end}
	if err := surroundable(tree, dr); err != nil {
		return Container{}, err
	}

	style, _ := palette.Style(meta.ColorIndex)
	attrs := []doctree.Attr{
		{Key: "class", Val: ContainerClass},
		{Key: AttrID, Val: meta.ID},
		{Key: AttrColorIndex, Val: strconv.Itoa(meta.ColorIndex)},
		{Key: AttrNote, Val: meta.Note},
		{Key: AttrHasNote, Val: strconv.FormatBool(meta.Note != "")},
		{Key: "style", Val: styleProperty + ": " + style},
	}
	n, err := tree.Wrap(dr, ContainerTag, attrs)
	if err != nil {
		if errors.Is(err, doctree.ErrPartialSelection) {
			return Container{}, fmt.Errorf("%w: %v", ErrNotSurroundable, err)
		}
		return Container{}, err
	}
	return Container{Node: n, ID: meta.ID, ColorIndex: meta.ColorIndex, Note: meta.Note}, nil
}

// surroundable requires both ends to reach the same nearest block ancestor
// inside their common ancestor, and both ends to sit directly under it.
func surroundable(tree doctree.Tree, r doctree.Range) error {
	if r.Collapsed() {
		return fmt.Errorf("%w: empty range", ErrNotSurroundable)
	}
	ca := doctree.CommonAncestor(r.Start.Node, r.End.Node)
	if ca == nil {
		return fmt.Errorf("%w: no common ancestor", ErrNotSurroundable)
	}
	if nearestBlock(tree, r.Start.Node, ca) != nearestBlock(tree, r.End.Node, ca) {
		return fmt.Errorf("%w: crosses a block boundary", ErrNotSurroundable)
	}
	if r.Start.Node != r.End.Node && r.Start.Node.Parent() != r.End.Node.Parent() {
		return fmt.Errorf("%w: partially selects an element", ErrNotSurroundable)
	}
	return nil
}

func nearestBlock(tree doctree.Tree, n, ca doctree.Node) doctree.Node {
	for p := n.Parent(); p != nil && p != ca; p = p.Parent() {
		if tree.Block(p) {
			return p
		}
	}
	return ca
}

// Remove unwraps c, restoring the tree as if it had never been applied.
func Remove(tree doctree.Tree, c Container) error {
	if c.Node == nil {
		return ErrContainerNotFound
	}
	return tree.Unwrap(c.Node)
}

// UpdateNote updates the note carried by c.
func UpdateNote(tree doctree.Tree, c Container, note string) {
	tree.SetAttr(c.Node, AttrNote, note)
	tree.SetAttr(c.Node, AttrHasNote, strconv.FormatBool(note != ""))
}

// UpdateColor moves c to palette entry i. Indices outside the palette are
// refused and leave the container untouched.
func UpdateColor(tree doctree.Tree, c Container, i int, palette Palette) error {
	style, err := palette.Style(i)
	if err != nil {
		return err
	}
	tree.SetAttr(c.Node, AttrColorIndex, strconv.Itoa(i))
	tree.SetAttr(c.Node, "style", styleProperty+": "+style)
	return nil
}

// Restyle re-applies the palette to every container and returns how many
// fell back because their index left the palette.
func Restyle(tree doctree.Tree, palette Palette) int {
	fallbacks := 0
	for _, c := range Containers(tree) {
		style, err := palette.Style(c.ColorIndex)
		if err != nil {
			fallbacks++
		}
		tree.SetAttr(c.Node, "style", styleProperty+": "+style)
	}
	return fallbacks
}
