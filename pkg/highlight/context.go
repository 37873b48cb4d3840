package highlight

import (
	"github.com/rivo/uniseg"
)

// Context is the textual fingerprint of a selected range.
type Context struct {
	Text        string
	PreContext  string
	PostContext string
}

// ExtractContext returns the exact text of r plus up to n characters of
// context on each side, walking across segment boundaries. Near the
// document edges the context is shorter; it is never padded.
//
// Trim convention, shared with Resolve: the pre-context keeps the n
// characters nearest the span (a suffix), the post-context keeps the n
// characters nearest the span (a prefix).
func ExtractContext(m *TextModel, r Range, n int) Context {
	if len(m.Segments) == 0 || n < 0 {
		return Context{}
	}
	c := Context{Text: m.Slice(r)}
	if n == 0 {
		return c
	}

	pre := m.Segments[r.Start.Segment].Text[:r.Start.Offset]
	for i := r.Start.Segment - 1; i >= 0 && graphemeCount(pre) < n; i-- {
		pre = m.Segments[i].Text + pre
	}
	c.PreContext = lastGraphemes(pre, n)

	post := m.Segments[r.End.Segment].Text[r.End.Offset:]
	for i := r.End.Segment + 1; i < len(m.Segments) && graphemeCount(post) < n; i++ {
		post += m.Segments[i].Text
	}
	c.PostContext = firstGraphemes(post, n)
	return c
}

// Characters are user-perceived characters (grapheme clusters), so a
// window never splits an emoji or a base letter from its combining marks.

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

func firstGraphemes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rest, state, idx := s, -1, 0
	for count := 0; len(rest) > 0 && count < n; count++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		idx += len(cluster)
	}
	return s[:idx]
}

func lastGraphemes(s string, n int) string {
	total := graphemeCount(s)
	if total <= n {
		return s
	}
	return s[len(firstGraphemes(s, total-n)):]
}
