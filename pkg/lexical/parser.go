package lexical

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Renderer turns Lexical editor JSON into an HTML document that the
// highlight engine can read.
type Renderer struct{}

// NewRenderer creates a new renderer instance
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render converts a Lexical JSON string into a full HTML document.
func (p *Renderer) Render(jsonContent, title string) (string, error) {
	var doc Document
	if err := json.Unmarshal([]byte(jsonContent), &doc); err != nil {
		return "", fmt.Errorf("failed to parse lexical json: %w", err)
	}
	if doc.Root.Type != "root" {
		return "", fmt.Errorf("failed to parse lexical json: missing root node")
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head><title>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title></head><body>")
	p.walkNode(doc.Root, &sb)
	sb.WriteString("</body></html>")
	return sb.String(), nil
}

// LooksLikeLexical is a quick check used before attempting a full parse.
func LooksLikeLexical(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), `{"root":`)
}

func (p *Renderer) walkNode(node Node, sb *strings.Builder) {
	switch node.Type {
	case "root":
		p.children(node, sb)

	case "paragraph":
		p.block("p", node, sb)

	case "heading":
		tag := node.Tag
		if len(tag) != 2 || tag[0] != 'h' || tag[1] < '1' || tag[1] > '6' {
			tag = "h1"
		}
		p.block(tag, node, sb)

	case "quote":
		p.block("blockquote", node, sb)

	case "code":
		sb.WriteString("<pre><code>")
		p.children(node, sb)
		sb.WriteString("</code></pre>")

	case "text", "code-highlight":
		p.handleText(node, sb)

	case "linebreak":
		sb.WriteString("<br>")

	case "tab":
		sb.WriteString("\t")

	case "list":
		p.handleList(node, sb)

	case "listitem":
		p.block("li", node, sb)

	case "link", "autolink":
		p.handleLink(node, sb)

	case "table":
		sb.WriteString("<table><tbody>")
		p.children(node, sb)
		sb.WriteString("</tbody></table>")

	case "tablerow":
		sb.WriteString("<tr>")
		p.children(node, sb)
		sb.WriteString("</tr>")

	case "tablecell":
		p.handleCell(node, sb)

	case "horizontalrule":
		sb.WriteString("<hr>")

	default:
		// Generic recursion
		p.children(node, sb)
	}
}

func (p *Renderer) children(node Node, sb *strings.Builder) {
	for _, child := range node.Children {
		p.walkNode(child, sb)
	}
}

func (p *Renderer) block(tag string, node Node, sb *strings.Builder) {
	sb.WriteString("<" + tag)
	if align := node.alignment(); align != "" {
		sb.WriteString(` style="text-align: ` + html.EscapeString(align) + `"`)
	}
	sb.WriteString(">")
	p.children(node, sb)
	sb.WriteString("</" + tag + ">")
}

func (p *Renderer) handleText(node Node, sb *strings.Builder) {
	style := ParseStyle(node.Style).Inline()
	if style != "" {
		sb.WriteString(`<span style="` + html.EscapeString(style) + `">`)
	}

	bits := node.formatBits()
	// outermost first; closed in reverse
	var tags []string
	if bits&FormatCode != 0 {
		tags = append(tags, "code")
	}
	if bits&FormatBold != 0 {
		tags = append(tags, "strong")
	}
	if bits&FormatItalic != 0 {
		tags = append(tags, "em")
	}
	if bits&FormatUnderline != 0 {
		tags = append(tags, "u")
	}
	if bits&FormatStrikethrough != 0 {
		tags = append(tags, "s")
	}
	if bits&FormatSubscript != 0 {
		tags = append(tags, "sub")
	}
	if bits&FormatSuperscript != 0 {
		tags = append(tags, "sup")
	}

	for _, t := range tags {
		sb.WriteString("<" + t + ">")
	}
	sb.WriteString(html.EscapeString(node.Text))
	for i := len(tags) - 1; i >= 0; i-- {
		sb.WriteString("</" + tags[i] + ">")
	}

	if style != "" {
		sb.WriteString("</span>")
	}
}

func (p *Renderer) handleLink(node Node, sb *strings.Builder) {
	sb.WriteString(`<a href="` + html.EscapeString(node.URL) + `"`)
	if node.Title != "" {
		sb.WriteString(` title="` + html.EscapeString(node.Title) + `"`)
	}
	if node.Rel != "" {
		sb.WriteString(` rel="` + html.EscapeString(node.Rel) + `"`)
	}
	sb.WriteString(">")
	p.children(node, sb)
	sb.WriteString("</a>")
}

func (p *Renderer) handleList(node Node, sb *strings.Builder) {
	tag := "ul"
	if node.ListType == "number" {
		tag = "ol"
	}
	sb.WriteString("<" + tag)
	if tag == "ol" && node.Start > 1 {
		sb.WriteString(fmt.Sprintf(` start="%d"`, node.Start))
	}
	sb.WriteString(">")
	for _, child := range node.Children {
		if child.Type != "listitem" {
			p.walkNode(child, sb)
			continue
		}
		if node.ListType == "check" {
			if child.Checked {
				sb.WriteString(`<li data-checked="true">`)
			} else {
				sb.WriteString(`<li data-checked="false">`)
			}
			p.children(child, sb)
			sb.WriteString("</li>")
			continue
		}
		p.walkNode(child, sb)
	}
	sb.WriteString("</" + tag + ">")
}

func (p *Renderer) handleCell(node Node, sb *strings.Builder) {
	tag := "td"
	if node.HeaderState != 0 {
		tag = "th"
	}
	sb.WriteString("<" + tag)
	if node.ColSpan > 1 {
		sb.WriteString(fmt.Sprintf(` colspan="%d"`, node.ColSpan))
	}
	if node.RowSpan > 1 {
		sb.WriteString(fmt.Sprintf(` rowspan="%d"`, node.RowSpan))
	}
	sb.WriteString(">")
	p.children(node, sb)
	sb.WriteString("</" + tag + ">")
}
