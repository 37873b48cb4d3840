package highlight

import (
	"strings"
	"unicode/utf8"
)

// Resolve finds where anchor a lives in the model.
//
// Every occurrence of a.Text inside each segment is tried left to right.
// An occurrence is accepted when the text before it in the same segment
// ends with a.PreContext and the text after it starts with a.PostContext
// (empty contexts always match), looking at most n characters either way.
// Occurrences that intersect a claimed span are skipped. The first accepted
// occurrence in document order wins; otherwise ErrNoMatch.
//
// Context is matched within a single segment only. Matching is case and
// whitespace sensitive.
func Resolve(a Anchor, m *TextModel, claimed []Span, n int) (Span, error) {
	if a.Text == "" {
		return Span{}, ErrInvalidAnchor
	}
	for _, seg := range m.Segments {
		text := seg.Text
		from := 0
		for from < len(text) {
			i := strings.Index(text[from:], a.Text)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(a.Text)

			if contextMatches(text, start, end, a, n) {
				span := Span{Segment: seg.Index, Start: start, End: end}
				if !intersectsAny(span, claimed) {
					return span, nil
				}
			}

			_, size := utf8.DecodeRuneInString(text[start:])
			from = start + size
		}
	}
	return Span{}, ErrNoMatch
}

func contextMatches(text string, start, end int, a Anchor, n int) bool {
	if a.PreContext != "" {
		actual := lastGraphemes(text[:start], n)
		if !strings.HasSuffix(actual, a.PreContext) {
			return false
		}
	}
	if a.PostContext != "" {
		actual := firstGraphemes(text[end:], n)
		if !strings.HasPrefix(actual, a.PostContext) {
			return false
		}
	}
	return true
}

func intersectsAny(s Span, claimed []Span) bool {
	for _, c := range claimed {
		if s.Intersects(c) {
			return true
		}
	}
	return false
}
