package mapping

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// PaletteSize is the number of utilization tiers.
const PaletteSize = 9

// Palette maps utilization tiers to colors, lowest tier first.
type Palette [PaletteSize]color.RGBA

var defaultPaletteHex = [PaletteSize]string{
	"#908C8C", // no traffic
	"#FFFFFF",
	"#8000FF",
	"#0000FF",
	"#00EAEA",
	"#00FF00",
	"#FFFF00",
	"#FF9933",
	"#FF0000", // saturated
}

// DefaultPalette returns the stock grey-white-purple-to-red palette.
func DefaultPalette() Palette {
	var p Palette
	for i, hex := range defaultPaletteHex {
		p[i], _ = ParseColor(hex)
	}
	return p
}

// ParsePalette parses exactly PaletteSize colors.
func ParsePalette(colors []string) (Palette, error) {
	var p Palette
	if len(colors) != PaletteSize {
		return p, fmt.Errorf("palette must have %d colors, got %d", PaletteSize, len(colors))
	}
	for i, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return p, fmt.Errorf("palette color %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

// Color returns the color of tier i, clamped to the palette bounds.
func (p Palette) Color(i int) color.RGBA {
	if i < 0 {
		i = 0
	}
	if i >= PaletteSize {
		i = PaletteSize - 1
	}
	return p[i]
}

// ParseColor accepts #RGB, #RRGGBB, #RRGGBBAA or an SVG color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[strings.ToLower(s)]; ok {
			return c, nil
		}
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	n := color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
	return color.RGBAModel.Convert(n).(color.RGBA), nil
}

// HexColor formats c as #RRGGBB, ignoring alpha.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
