package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "paragraph with formatting",
			content: `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","text":"plain "},{"type":"text","text":"bold","format":1},{"type":"text","text":" both","format":3}]}]}}`,
			want:    `<p>plain <strong>bold</strong><strong><em> both</em></strong></p>`,
		},
		{
			name:    "heading and quote",
			content: `{"root":{"type":"root","children":[{"type":"heading","tag":"h2","children":[{"type":"text","text":"Title"}]},{"type":"quote","children":[{"type":"text","text":"Said"}]}]}}`,
			want:    `<h2>Title</h2><blockquote>Said</blockquote>`,
		},
		{
			name:    "numbered list",
			content: `{"root":{"type":"root","children":[{"type":"list","listType":"number","start":3,"children":[{"type":"listitem","children":[{"type":"text","text":"three"}]}]}]}}`,
			want:    `<ol start="3"><li>three</li></ol>`,
		},
		{
			name:    "check list",
			content: `{"root":{"type":"root","children":[{"type":"list","listType":"check","children":[{"type":"listitem","checked":true,"children":[{"type":"text","text":"done"}]}]}]}}`,
			want:    `<ul><li data-checked="true">done</li></ul>`,
		},
		{
			name:    "link escaped",
			content: `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"link","url":"https://example.com/?a=1&b=2","children":[{"type":"text","text":"<site>"}]}]}]}}`,
			want:    `<p><a href="https://example.com/?a=1&amp;b=2">&lt;site&gt;</a></p>`,
		},
		{
			name:    "styled text and alignment",
			content: `{"root":{"type":"root","children":[{"type":"paragraph","format":"center","children":[{"type":"text","text":"red","style":"font-size: 12px; color: red"}]}]}}`,
			want:    `<p style="text-align: center"><span style="color: red">red</span></p>`,
		},
	}

	r := NewRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.content, "Doc")
			require.NoError(t, err)
			assert.Equal(t, "<!DOCTYPE html><html><head><title>Doc</title></head><body>"+tt.want+"</body></html>", got)
		})
	}
}

func TestRenderRejectsInvalid(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render("not json", "")
	assert.Error(t, err)
	_, err = r.Render(`{"root":{"type":"paragraph"}}`, "")
	assert.Error(t, err)
}

func TestLooksLikeLexical(t *testing.T) {
	assert.True(t, LooksLikeLexical(`  {"root":{"type":"root"}}`))
	assert.False(t, LooksLikeLexical("<html></html>"))
}

func TestParseStyle(t *testing.T) {
	s := ParseStyle("Display: none !important; color:#fff;; bad")
	assert.Equal(t, StyleMap{"display": "none", "color": "#fff"}, s)
	assert.Equal(t, "color: #fff", s.Inline())
	assert.Empty(t, ParseStyle("").Inline())
}
