package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		anchor  Anchor
		claimed []Span
		n       int
		want    Span
		wantErr error
	}{
		{
			name:   "first occurrence without context",
			body:   "<p>a cat and a cat</p>",
			anchor: Anchor{ID: "a", Text: "cat"},
			n:      25,
			want:   Span{Segment: 0, Start: 2, End: 5},
		},
		{
			name:    "claimed occurrence skipped",
			body:    "<p>a cat and a cat</p>",
			anchor:  Anchor{ID: "a", Text: "cat"},
			claimed: []Span{{Segment: 0, Start: 2, End: 5}},
			n:       25,
			want:    Span{Segment: 0, Start: 12, End: 15},
		},
		{
			name:   "pre context selects later occurrence",
			body:   "<p>a cat and a cat</p>",
			anchor: Anchor{ID: "a", Text: "cat", PreContext: "and a "},
			n:      25,
			want:   Span{Segment: 0, Start: 12, End: 15},
		},
		{
			name:   "post context selects occurrence",
			body:   "<p>red dog, red cat</p>",
			anchor: Anchor{ID: "a", Text: "red", PostContext: " cat"},
			n:      25,
			want:   Span{Segment: 0, Start: 9, End: 12},
		},
		{
			name:   "later segment",
			body:   "<p>nothing here</p><p>find me</p>",
			anchor: Anchor{ID: "a", Text: "me", PreContext: "find "},
			n:      25,
			want:   Span{Segment: 1, Start: 5, End: 7},
		},
		{
			name:    "overlapping occurrences advance by one character",
			body:    "<p>aaaa</p>",
			anchor:  Anchor{ID: "a", Text: "aa"},
			claimed: []Span{{Segment: 0, Start: 0, End: 2}},
			n:       25,
			want:    Span{Segment: 0, Start: 2, End: 4},
		},
		{
			name:    "mismatched context",
			body:    "<p>a cat and a cat</p>",
			anchor:  Anchor{ID: "a", Text: "cat", PostContext: " sat"},
			n:       25,
			wantErr: ErrNoMatch,
		},
		{
			name:    "text missing",
			body:    "<p>a cat and a cat</p>",
			anchor:  Anchor{ID: "a", Text: "dog"},
			n:       25,
			wantErr: ErrNoMatch,
		},
		{
			name:    "case sensitive",
			body:    "<p>A Cat</p>",
			anchor:  Anchor{ID: "a", Text: "cat"},
			n:       25,
			wantErr: ErrNoMatch,
		},
		{
			name:    "context does not cross segments",
			body:    "<p>left <b>word</b></p>",
			anchor:  Anchor{ID: "a", Text: "word", PreContext: "left "},
			n:       25,
			wantErr: ErrNoMatch,
		},
		{
			name:    "context window bounded by n",
			body:    "<p>xxxxxxxxxx target</p>",
			anchor:  Anchor{ID: "a", Text: "target", PreContext: "xxxxxxxxxx "},
			n:       5,
			wantErr: ErrNoMatch,
		},
		{
			name:    "empty text",
			body:    "<p>anything</p>",
			anchor:  Anchor{ID: "a"},
			n:       25,
			wantErr: ErrInvalidAnchor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildTextModel(parseBody(t, tt.body))
			got, err := Resolve(tt.anchor, m, tt.claimed, tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAfterTextShift(t *testing.T) {
	before := BuildTextModel(parseBody(t, "<p>The quick brown fox jumps.</p>"))
	r, err := before.RangeOf(Selection{Start: 10, End: 15})
	require.NoError(t, err)
	c := ExtractContext(before, r, 5)

	after := BuildTextModel(parseBody(t, "<p>The very quick brown fox jumps swiftly.</p>"))
	span, err := Resolve(Anchor{ID: "a", Text: c.Text, PreContext: c.PreContext, PostContext: c.PostContext}, after, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, "brown", after.Slice(span.Range()))
	assert.Equal(t, 15, span.Start)
}
