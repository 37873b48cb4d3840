package highlight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// MaxColors is the largest palette a user may configure.
	MaxColors = 9
	// DefaultOpacity is applied to colours added without one.
	DefaultOpacity = 0.4
	// FallbackStyle paints highlights whose colour index left the palette.
	FallbackStyle = "rgba(128, 128, 128, 0.3)"
)

// Color is one palette entry.
type Color struct {
	Hex     string  `json:"color" toml:"color" validate:"required"`
	Opacity float64 `json:"opacity" toml:"opacity" validate:"gte=0,lte=1"`
}

// Palette is referenced by index from anchors, so editing an entry
// restyles every highlight that uses it.
type Palette []Color

// DefaultPalette returns the four stock colours.
func DefaultPalette() Palette {
	return Palette{
		{Hex: "#FF809D", Opacity: DefaultOpacity},
		{Hex: "#FCF485", Opacity: DefaultOpacity},
		{Hex: "#C5FB72", Opacity: DefaultOpacity},
		{Hex: "#38E5FF", Opacity: DefaultOpacity},
	}
}

// Has reports whether index i addresses an entry.
func (p Palette) Has(i int) bool {
	return i >= 0 && i < len(p)
}

// Variable is the CSS custom property holding entry i.
func Variable(i int) string {
	return "--highlight-color-" + strconv.Itoa(i)
}

// Style returns the background value for a container with colour index i.
// Out-of-range indices get FallbackStyle and ErrInvalidColorIndex.
func (p Palette) Style(i int) (string, error) {
	if !p.Has(i) {
		return FallbackStyle, fmt.Errorf("%w: %d (palette has %d colors)", ErrInvalidColorIndex, i, len(p))
	}
	return "var(" + Variable(i) + ")", nil
}

// RGBA renders entry i as a CSS rgba() value, opacity clamped to [0, 1].
func (p Palette) RGBA(i int) (string, error) {
	if !p.Has(i) {
		return "", fmt.Errorf("%w: %d", ErrInvalidColorIndex, i)
	}
	c, err := ParseHex(p[i].Hex)
	if err != nil {
		return "", err
	}
	r, g, b := c.RGB255()
	o := p[i].Opacity
	if o < 0 {
		o = 0
	}
	if o > 1 {
		o = 1
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(o, 'f', -1, 64)), nil
}

// CSS renders the palette as custom properties on :root. Entries that fail
// to parse are left as comments.
func (p Palette) CSS() string {
	var sb strings.Builder
	sb.WriteString(":root {\n")
	for i := range p {
		rgba, err := p.RGBA(i)
		if err != nil {
			sb.WriteString(fmt.Sprintf("  /* %s: invalid */\n", Variable(i)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s: %s;\n", Variable(i), rgba))
	}
	sb.WriteString("}")
	return sb.String()
}

// Validate checks size and colour syntax.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("palette is empty")
	}
	if len(p) > MaxColors {
		return fmt.Errorf("palette has %d colors, at most %d allowed", len(p), MaxColors)
	}
	for i, c := range p {
		if _, err := ParseHex(c.Hex); err != nil {
			return fmt.Errorf("color %d: %w", i, err)
		}
		if c.Opacity < 0 || c.Opacity > 1 {
			return fmt.Errorf("color %d: opacity %v outside [0, 1]", i, c.Opacity)
		}
	}
	return nil
}

// ParseHex accepts #RRGGBB or #RGB, with or without the leading '#'.
func ParseHex(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}
