package lexical

import (
	"sort"
	"strings"
)

// StyleMap represents parsed CSS declarations.
type StyleMap map[string]string

// ParseStyle parses an inline CSS declaration list into a map.
// Example: "color: #F97316; background-color: #BFDBFE;"
// Property names are lowercased; values are kept as written.
func ParseStyle(styleStr string) StyleMap {
	styles := make(StyleMap)
	if styleStr == "" {
		return styles
	}

	for _, part := range strings.Split(styleStr, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])
		v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
		if k != "" && v != "" {
			styles[k] = v
		}
	}
	return styles
}

// presentational styles carried from editor text into rendered HTML
var keptStyles = []string{"color", "background-color", "text-transform"}

// Inline returns the kept declarations as a style attribute value, in a
// stable order. Empty when nothing relevant is set.
func (s StyleMap) Inline() string {
	var relevant []string
	for _, k := range keptStyles {
		if v, ok := s[k]; ok {
			relevant = append(relevant, k+": "+v)
		}
	}
	sort.Strings(relevant)
	return strings.Join(relevant, "; ")
}
