package mapping

import (
	"fmt"
	"image/color"
)

// DefaultArrowWidth is the arrow half-width used when a link sets none.
const DefaultArrowWidth = 5.0

// LinkSpec holds the drawing parameters of a link.
type LinkSpec struct {
	Name     string
	Capacity int64   // kilobits per second
	Width    float64 // arrow half-width in pixels
	FontSize int
	Palette  Palette // zero value means DefaultPalette
}

// Link joins two nodes with an input arrow (A toward the middle) and an
// output arrow (B toward the middle). Geometry is fixed at construction;
// colors and labels exist only after Feed.
type Link struct {
	Name     string
	A, B     *Node
	Capacity int64
	Width    float64
	FontSize int
	Palette  Palette

	InputArrow  []Point
	OutputArrow []Point

	fed      bool
	in, out  Utilization
	inLabel  *Label
	outLabel *Label
}

// NewLink computes the arrows between a and b.
func NewLink(a, b *Node, spec LinkSpec) (*Link, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("link %s: both endpoints are required", spec.Name)
	}
	if spec.Capacity <= 0 {
		return nil, fmt.Errorf("link %s: %w", spec.Name, ErrInvalidCapacity)
	}

	l := &Link{
		Name:     spec.Name,
		A:        a,
		B:        b,
		Capacity: spec.Capacity,
		Width:    spec.Width,
		FontSize: spec.FontSize,
		Palette:  spec.Palette,
	}
	if l.Width <= 0 {
		l.Width = DefaultArrowWidth
	}
	if l.Palette == (Palette{}) {
		l.Palette = DefaultPalette()
	}

	mid := l.Middle()
	l.InputArrow = ArrowPoints(a.Position, mid, l.Width)
	l.OutputArrow = ArrowPoints(b.Position, mid, l.Width)
	return l, nil
}

// Middle returns the point where both arrow heads meet.
func (l *Link) Middle() Point {
	return Midpoint(l.A.Position, l.B.Position)
}

// InputLabelPoint is halfway between A and the middle of the link.
func (l *Link) InputLabelPoint() Point {
	return Midpoint(l.A.Position, l.Middle())
}

// OutputLabelPoint is halfway between B and the middle of the link.
func (l *Link) OutputLabelPoint() Point {
	return Midpoint(l.B.Position, l.Middle())
}

// Feed classifies the current rates, in bits per second, and places the
// rate labels. It may be called again to refresh the link.
func (l *Link) Feed(inBps, outBps int64) {
	l.in = Classify(inBps, l.Capacity)
	l.out = Classify(outBps, l.Capacity)
	l.inLabel = NewLabel(l.in.Label, l.InputLabelPoint(), l.FontSize)
	l.outLabel = NewLabel(l.out.Label, l.OutputLabelPoint(), l.FontSize)
	l.fed = true
}

// Fed reports whether Feed has been called.
func (l *Link) Fed() bool {
	return l.fed
}

// Input returns the classification of the A-side traffic.
func (l *Link) Input() (Utilization, error) {
	if !l.fed {
		return Utilization{}, l.unfed()
	}
	return l.in, nil
}

// Output returns the classification of the B-side traffic.
func (l *Link) Output() (Utilization, error) {
	if !l.fed {
		return Utilization{}, l.unfed()
	}
	return l.out, nil
}

// InputColor returns the fill color of the input arrow.
func (l *Link) InputColor() (color.RGBA, error) {
	u, err := l.Input()
	if err != nil {
		return color.RGBA{}, err
	}
	return l.Palette.Color(u.Index), nil
}

// OutputColor returns the fill color of the output arrow.
func (l *Link) OutputColor() (color.RGBA, error) {
	u, err := l.Output()
	if err != nil {
		return color.RGBA{}, err
	}
	return l.Palette.Color(u.Index), nil
}

// InputLabel returns the rate label of the input arrow.
func (l *Link) InputLabel() (*Label, error) {
	if !l.fed {
		return nil, l.unfed()
	}
	return l.inLabel, nil
}

// OutputLabel returns the rate label of the output arrow.
func (l *Link) OutputLabel() (*Label, error) {
	if !l.fed {
		return nil, l.unfed()
	}
	return l.outLabel, nil
}

func (l *Link) unfed() error {
	return fmt.Errorf("link %s: %w", l.Name, ErrUnfedLink)
}
