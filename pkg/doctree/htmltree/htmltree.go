// Package htmltree implements doctree.Tree on top of golang.org/x/net/html.
package htmltree

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"highlighter-be/pkg/doctree"
	"highlighter-be/pkg/lexical"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document that can be mutated and rendered back.
type Document struct {
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render serialises the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Body returns the <body> element, or the root when there is none.
func (d *Document) Body() doctree.Node {
	var body *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(d.root)
	if body == nil {
		return wrap(d.root)
	}
	return wrap(body)
}

// InnerHTML renders the children of n.
func (d *Document) InnerHTML(n doctree.Node) string {
	hn := unwrapNode(n)
	if hn == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// Title returns the text of the first <title> element.
func (d *Document) Title() string {
	var title string
	doctree.Walk(wrap(d.root), func(n doctree.Node) bool {
		if title != "" {
			return false
		}
		if n.Kind() == doctree.ElementNode && n.Tag() == "title" {
			title = strings.TrimSpace(doctree.TextContent(n))
			return false
		}
		return true
	})
	return title
}

func (d *Document) Root() doctree.Node {
	return wrap(d.root)
}

func (d *Document) Hidden(n doctree.Node) bool {
	hn := unwrapNode(n)
	if hn == nil || hn.Type != html.ElementNode {
		return false
	}
	switch hn.DataAtom {
	case atom.Head, atom.Template, atom.Title, atom.Meta, atom.Link:
		return true
	}
	for _, a := range hn.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(a.Val, "true") {
				return true
			}
		case "style":
			styles := lexical.ParseStyle(a.Val)
			if strings.EqualFold(styles["display"], "none") {
				return true
			}
			if v := strings.ToLower(styles["visibility"]); v == "hidden" || v == "collapse" {
				return true
			}
		}
	}
	return false
}

var blockAtoms = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Caption: true, atom.Dd: true, atom.Details: true,
	atom.Dialog: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Hgroup: true, atom.Hr: true,
	atom.Html: true, atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Summary: true,
	atom.Table: true, atom.Tbody: true, atom.Td: true, atom.Tfoot: true,
	atom.Th: true, atom.Thead: true, atom.Tr: true, atom.Ul: true,
}

func (d *Document) Block(n doctree.Node) bool {
	hn := unwrapNode(n)
	if hn == nil {
		return false
	}
	if hn.Type == html.DocumentNode {
		return true
	}
	if hn.Type != html.ElementNode {
		return false
	}
	for _, a := range hn.Attr {
		if a.Key != "style" {
			continue
		}
		switch strings.ToLower(lexical.ParseStyle(a.Val)["display"]) {
		case "block", "flex", "grid", "list-item", "table", "flow-root":
			return true
		case "inline", "inline-block", "inline-flex", "contents":
			return false
		}
	}
	return blockAtoms[hn.DataAtom]
}

func (d *Document) SetAttr(n doctree.Node, key, val string) {
	hn := unwrapNode(n)
	if hn == nil {
		return
	}
	for i := range hn.Attr {
		if hn.Attr[i].Key == key && hn.Attr[i].Namespace == "" {
			hn.Attr[i].Val = val
			return
		}
	}
	hn.Attr = append(hn.Attr, html.Attribute{Key: key, Val: val})
}

func (d *Document) Wrap(r doctree.Range, tag string, attrs []doctree.Attr) (doctree.Node, error) {
	start, end := unwrapNode(r.Start.Node), unwrapNode(r.End.Node)
	if start == nil || end == nil || start.Type != html.TextNode || end.Type != html.TextNode {
		return nil, fmt.Errorf("wrap: range boundaries must be text nodes")
	}
	if r.Start.Offset < 0 || r.Start.Offset > len(start.Data) || r.End.Offset < 0 || r.End.Offset > len(end.Data) {
		return nil, fmt.Errorf("wrap: offset out of bounds")
	}
	if r.Collapsed() {
		return nil, fmt.Errorf("wrap: empty range")
	}
	parent := start.Parent
	if parent == nil || end.Parent == nil {
		return nil, doctree.ErrDetached
	}
	if end.Parent != parent {
		return nil, doctree.ErrPartialSelection
	}

	var first, last *html.Node
	if start == end {
		if r.End.Offset < len(start.Data) {
			splitText(start, r.End.Offset)
		}
		first = start
		if r.Start.Offset > 0 {
			first = splitText(start, r.Start.Offset)
		}
		last = first
	} else {
		if !precedes(start, end) {
			return nil, fmt.Errorf("wrap: range end precedes start")
		}
		switch {
		case r.End.Offset == 0:
			last = end.PrevSibling
		case r.End.Offset < len(end.Data):
			splitText(end, r.End.Offset)
			last = end
		default:
			last = end
		}
		switch {
		case r.Start.Offset == len(start.Data):
			first = start.NextSibling
		case r.Start.Offset > 0:
			first = splitText(start, r.Start.Offset)
		default:
			first = start
		}
		if first == nil || last == nil || (first != last && !precedes(first, last)) {
			return nil, fmt.Errorf("wrap: empty range")
		}
	}

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, a := range attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	parent.InsertBefore(el, first)
	for c := first; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		el.AppendChild(c)
		if c == last {
			break
		}
		c = next
	}
	return wrap(el), nil
}

func (d *Document) Unwrap(n doctree.Node) error {
	hn := unwrapNode(n)
	if hn == nil {
		return fmt.Errorf("unwrap: nil node")
	}
	parent := hn.Parent
	if parent == nil {
		return doctree.ErrDetached
	}
	for c := hn.FirstChild; c != nil; {
		next := c.NextSibling
		hn.RemoveChild(c)
		parent.InsertBefore(c, hn)
		c = next
	}
	parent.RemoveChild(hn)
	normalize(parent)
	return nil
}

// splitText cuts t at off. t keeps the head; the returned node holds the
// tail and is inserted right after t.
func splitText(t *html.Node, off int) *html.Node {
	tail := &html.Node{Type: html.TextNode, Data: t.Data[off:]}
	t.Data = t.Data[:off]
	if t.NextSibling != nil {
		t.Parent.InsertBefore(tail, t.NextSibling)
	} else {
		t.Parent.AppendChild(tail)
	}
	return tail
}

// normalize merges adjacent text children and drops empty ones.
func normalize(p *html.Node) {
	for c := p.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.TextNode {
			c = next
			continue
		}
		if c.Data == "" {
			p.RemoveChild(c)
			c = next
			continue
		}
		if next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			p.RemoveChild(next)
			continue
		}
		c = next
	}
}

func precedes(a, b *html.Node) bool {
	for s := a.NextSibling; s != nil; s = s.NextSibling {
		if s == b {
			return true
		}
	}
	return false
}
