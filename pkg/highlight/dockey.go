package highlight

import (
	"fmt"
	"net/url"
	"strings"
)

// DocumentKey identifies the document a URL points at. Query string and
// fragment are dropped, so every view of the same page shares its anchors.
func DocumentKey(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse document url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("document url %q is not absolute", rawURL)
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path, nil
}
