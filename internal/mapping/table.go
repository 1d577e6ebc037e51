package mapping

import (
	"image/color"
	"time"
)

const (
	tableTitle       = "Traffic Load"
	tableSwatchW     = 30
	tableSwatchH     = 20
	tableIndentX     = 5
	tableIndentY     = 3
	tableRows        = 11 // 9 swatches + 2 timestamp rows
	tableTextPadding = 60

	// DefaultTableFontSize is the legend text size.
	DefaultTableFontSize = 12
)

// RangeLabels describe the utilization range of each palette tier.
var RangeLabels = [PaletteSize]string{
	"0-0%", "0-1%", "1-10%", "10-25%", "25-40%", "40-55%", "55-70%", "70-85%", "85-100%",
}

// TableSpec places the legend table.
type TableSpec struct {
	X, Y          int
	Palette       Palette // zero value means DefaultPalette
	FontSize      int
	ShowTimestamp bool
	Now           func() time.Time // defaults to time.Now
}

// Table is the legend mapping palette colors to utilization ranges.
type Table struct {
	Origin        Point
	Palette       Palette
	FontSize      int
	ShowTimestamp bool

	rows []Rect
	now  func() time.Time
}

// NewTable lays out the legend rows below origin.
func NewTable(spec TableSpec) *Table {
	t := &Table{
		Origin:        Point{X: spec.X, Y: spec.Y},
		Palette:       spec.Palette,
		FontSize:      spec.FontSize,
		ShowTimestamp: spec.ShowTimestamp,
		now:           spec.Now,
	}
	if t.Palette == (Palette{}) {
		t.Palette = DefaultPalette()
	}
	if t.FontSize == 0 {
		t.FontSize = DefaultTableFontSize
	}
	if t.now == nil {
		t.now = time.Now
	}

	top := t.Origin.Y + tableSwatchH
	for i := 0; i < tableRows; i++ {
		t.rows = append(t.rows, Rect{
			X1: t.Origin.X + tableIndentX,
			Y1: top + tableIndentY + tableSwatchH*i,
			X2: t.Origin.X + tableIndentX + tableSwatchW,
			Y2: top + tableSwatchH*(i+1),
		})
	}
	return t
}

// Frame returns the outer box of the color legend.
func (t *Table) Frame() Rect {
	last := t.rows[PaletteSize-1]
	return Rect{X1: t.Origin.X, Y1: t.Origin.Y, X2: last.X2 + tableTextPadding, Y2: last.Y2 + 5}
}

// TimestampFrame returns the box holding the render time.
func (t *Table) TimestampFrame() Rect {
	return Rect{
		X1: t.Origin.X,
		Y1: t.rows[PaletteSize].Y1 + 5,
		X2: t.rows[PaletteSize+1].X2 + tableTextPadding,
		Y2: t.rows[PaletteSize+1].Y2 + 5,
	}
}

// Swatch returns the box of palette tier i.
func (t *Table) Swatch(i int) Rect {
	return t.rows[i]
}

// Draw paints the legend onto c.
func (t *Table) Draw(c Canvas) {
	c.Rectangle(t.Frame(), color.White, color.Black)
	c.Text(Point{X: t.Origin.X + 5, Y: t.Origin.Y + 5}, tableTitle, t.FontSize, color.Black)

	for i := 0; i < PaletteSize; i++ {
		r := t.rows[i]
		c.Rectangle(r, t.Palette[i], t.Palette[i])
		c.Text(Point{X: r.X2 + 2, Y: r.Y1 + 2}, RangeLabels[i], t.FontSize, color.Black)
	}

	if t.ShowTimestamp {
		t.drawTimestamp(c)
	}
}

func (t *Table) drawTimestamp(c Canvas) {
	now := t.now()
	timeRow, dateRow := t.rows[PaletteSize], t.rows[PaletteSize+1]

	c.Rectangle(t.TimestampFrame(), color.White, color.Black)
	c.Text(Point{X: timeRow.X1 + 14, Y: timeRow.Y1 + 8}, now.Format("15:04:05"), t.FontSize, color.Black)
	c.Text(Point{X: dateRow.X1 + 8, Y: dateRow.Y1 + 4}, now.Format("02.01.2006"), t.FontSize, color.Black)
}
