// Package doctree describes a mutable ordered tree of text and element nodes.
//
// The highlight engine only talks to this interface, so any concrete tree
// (an HTML DOM, a virtual tree, a test fixture) can host highlights.
package doctree

import "errors"

// Kind classifies a node.
type Kind int

const (
	TextNode Kind = iota
	ElementNode
	DocumentNode
	OtherNode
)

// ErrPartialSelection is returned by Wrap when the range would split an element.
var ErrPartialSelection = errors.New("range partially selects an element")

// ErrDetached is returned when a node has no parent to operate in.
var ErrDetached = errors.New("node is not attached to a parent")

// Node is a handle to one node of a Tree. Implementations must return an
// untyped nil (not a typed nil pointer) when a relative does not exist.
type Node interface {
	Kind() Kind
	// Tag is the lowercase element name, empty for non-elements.
	Tag() string
	// Data is the character content of a text node.
	Data() string
	Attr(key string) (string, bool)
	Parent() Node
	FirstChild() Node
	NextSibling() Node
	PrevSibling() Node
}

// Attr is a key/value attribute pair.
type Attr struct {
	Key string
	Val string
}

// Boundary is a position inside a text node, Offset in bytes.
type Boundary struct {
	Node   Node
	Offset int
}

// Range is a half-open span between two text boundaries in document order.
type Range struct {
	Start Boundary
	End   Boundary
}

// Collapsed reports whether the range selects nothing.
func (r Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset >= r.End.Offset
}

// Tree is the mutable document the engine operates on.
type Tree interface {
	Root() Node
	// Hidden reports whether the host does not render the element.
	Hidden(n Node) bool
	// Block reports whether the element is block-level.
	Block(n Node) bool
	// Wrap surrounds the characters of r with a new element and returns it.
	Wrap(r Range, tag string, attrs []Attr) (Node, error)
	// Unwrap moves the children of n into its parent, removes n and merges
	// adjacent text nodes left behind.
	Unwrap(n Node) error
	SetAttr(n Node, key, val string)
}

// Walk visits n and its descendants depth-first, left to right. Returning
// false from fn skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		Walk(c, fn)
	}
}

// NextInOrder returns the node following n in depth-first order, or nil.
func NextInOrder(n Node) Node {
	if c := n.FirstChild(); c != nil {
		return c
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if s := cur.NextSibling(); s != nil {
			return s
		}
	}
	return nil
}

// IsAncestor reports whether a is a proper ancestor of n.
func IsAncestor(a, n Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == a {
			return true
		}
	}
	return false
}

// CommonAncestor returns the deepest node containing both a and b.
func CommonAncestor(a, b Node) Node {
	seen := make(map[Node]struct{})
	for n := a; n != nil; n = n.Parent() {
		seen[n] = struct{}{}
	}
	for n := b; n != nil; n = n.Parent() {
		if _, ok := seen[n]; ok {
			return n
		}
	}
	return nil
}

// TextContent concatenates the text nodes under n.
func TextContent(n Node) string {
	var out []byte
	Walk(n, func(c Node) bool {
		if c.Kind() == TextNode {
			out = append(out, c.Data()...)
		}
		return true
	})
	return string(out)
}
