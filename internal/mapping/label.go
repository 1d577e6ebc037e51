package mapping

import (
	"image/color"
	"unicode/utf8"
)

// DefaultFontSize is used for labels whose size has no width entry.
const DefaultFontSize = 10

// charWidths holds the average glyph width in pixels per supported font size.
var charWidths = map[int]float64{
	8:  6,
	10: 7.4,
	12: 8,
	14: 9,
	16: 11,
	18: 12,
	20: 13,
}

// NormalizeFontSize maps unsupported sizes to DefaultFontSize.
func NormalizeFontSize(size int) int {
	if _, ok := charWidths[size]; ok {
		return size
	}
	return DefaultFontSize
}

// Label is a boxed text centered on a point.
type Label struct {
	Text       string
	Box        Rect
	TextAnchor Point // top-left of the text
	FontSize   int

	Background color.Color
	Foreground color.Color
	Outline    color.Color
}

// NewLabel places text centered on at. An empty text yields a zero box.
func NewLabel(text string, at Point, fontSize int) *Label {
	l := &Label{
		Text:       text,
		FontSize:   NormalizeFontSize(fontSize),
		Background: color.White,
		Foreground: color.Black,
		Outline:    color.Black,
	}

	count := utf8.RuneCountInString(text)
	if count == 0 {
		return l
	}

	half := float64(count) * charWidths[l.FontSize] / 2
	fs := float64(l.FontSize)
	x, y := float64(at.X), float64(at.Y)

	l.Box = Rect{
		X1: int(x - half + 1),
		Y1: int(y - fs/2),
		X2: int(x + half - 1),
		Y2: int(y + fs/2 + 1),
	}
	l.TextAnchor = Point{X: l.Box.X1 + 2, Y: l.Box.Y1}
	return l
}

// Empty reports whether the label has nothing to draw.
func (l *Label) Empty() bool {
	return l == nil || l.Text == ""
}
