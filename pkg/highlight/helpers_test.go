package highlight

import (
	"testing"

	"highlighter-be/pkg/doctree"
	"highlighter-be/pkg/doctree/htmltree"

	"github.com/stretchr/testify/require"
)

func parseBody(t *testing.T, body string) *htmltree.Document {
	t.Helper()
	doc, err := htmltree.ParseString("<html><head><title>Test</title></head><body>" + body + "</body></html>")
	require.NoError(t, err)
	return doc
}

func bodyHTML(doc *htmltree.Document) string {
	return doc.InnerHTML(doc.Body())
}

func containerText(c Container) string {
	return doctree.TextContent(c.Node)
}

type recordingLogger struct {
	warns []string
	infos []string
}

func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.infos = append(l.infos, message)
}

func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.warns = append(l.warns, message)
}
