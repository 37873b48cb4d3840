package lexical

// Document is the top-level Lexical editor state.
type Document struct {
	Root Node `json:"root"`
}

// Node is any node in a Lexical editor state tree.
type Node struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Children []Node `json:"children,omitempty"`

	// text
	Text   string      `json:"text,omitempty"`
	Format interface{} `json:"format,omitempty"` // int bitmask on text, alignment string on blocks
	Style  string      `json:"style,omitempty"`

	// heading, list
	Tag      string `json:"tag,omitempty"`
	ListType string `json:"listType,omitempty"` // bullet, number, check
	Start    int    `json:"start,omitempty"`

	// listitem
	Checked bool `json:"checked,omitempty"`

	// link
	URL    string `json:"url,omitempty"`
	Rel    string `json:"rel,omitempty"`
	Target string `json:"target,omitempty"`
	Title  string `json:"title,omitempty"`

	// tablecell
	ColSpan     int `json:"colSpan,omitempty"`
	RowSpan     int `json:"rowSpan,omitempty"`
	HeaderState int `json:"headerState,omitempty"`
}

// Text format bitmask.
const (
	FormatBold          = 1
	FormatItalic        = 2
	FormatStrikethrough = 4
	FormatUnderline     = 8
	FormatCode          = 16
	FormatSubscript     = 32
	FormatSuperscript   = 64
)

func (n Node) formatBits() int {
	switch f := n.Format.(type) {
	case float64:
		return int(f)
	case int:
		return f
	}
	return 0
}

func (n Node) alignment() string {
	if s, ok := n.Format.(string); ok && s != "left" {
		return s
	}
	return ""
}
