package htmltree

import (
	"highlighter-be/pkg/doctree"

	"golang.org/x/net/html"
)

// node adapts *html.Node. It is a comparable value so two handles to the
// same underlying node are equal as doctree.Node interfaces.
type node struct {
	n *html.Node
}

func wrap(n *html.Node) doctree.Node {
	if n == nil {
		return nil
	}
	return node{n: n}
}

func unwrapNode(n doctree.Node) *html.Node {
	if n == nil {
		return nil
	}
	hn, ok := n.(node)
	if !ok {
		return nil
	}
	return hn.n
}

// HTMLNode exposes the underlying x/net/html node.
func HTMLNode(n doctree.Node) *html.Node {
	return unwrapNode(n)
}

func (w node) Kind() doctree.Kind {
	switch w.n.Type {
	case html.TextNode:
		return doctree.TextNode
	case html.ElementNode:
		return doctree.ElementNode
	case html.DocumentNode:
		return doctree.DocumentNode
	default:
		return doctree.OtherNode
	}
}

func (w node) Tag() string {
	if w.n.Type != html.ElementNode {
		return ""
	}
	return w.n.Data
}

func (w node) Data() string {
	if w.n.Type != html.TextNode {
		return ""
	}
	return w.n.Data
}

func (w node) Attr(key string) (string, bool) {
	for _, a := range w.n.Attr {
		if a.Key == key && a.Namespace == "" {
			return a.Val, true
		}
	}
	return "", false
}

func (w node) Parent() doctree.Node      { return wrap(w.n.Parent) }
func (w node) FirstChild() doctree.Node  { return wrap(w.n.FirstChild) }
func (w node) NextSibling() doctree.Node { return wrap(w.n.NextSibling) }
func (w node) PrevSibling() doctree.Node { return wrap(w.n.PrevSibling) }
