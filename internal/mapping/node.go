package mapping

import (
	"fmt"
	"image"
)

// NodeSpec describes a network element as read from a map config.
type NodeSpec struct {
	Name     string
	X, Y     int
	Label    string
	Icon     string
	FontSize int
}

// Node is a placed network element. It is immutable once built.
type Node struct {
	Name     string
	Position Point

	IconRef    string
	Icon       image.Image
	IconAnchor Point // top-left corner that centers the icon on Position

	Label *Label
}

// NewNode builds a node and loads its icon, if any. A missing icon is fatal.
func NewNode(spec NodeSpec, icons *IconLoader) (*Node, error) {
	n := &Node{
		Name:     spec.Name,
		Position: Point{X: spec.X, Y: spec.Y},
		IconRef:  spec.Icon,
	}

	if spec.Label != "" {
		n.Label = NewLabel(spec.Label, n.Position, spec.FontSize)
	}

	if spec.Icon != "" {
		img, err := icons.Load(spec.Icon)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", spec.Name, err)
		}
		if img != nil {
			n.Icon = img
			n.IconAnchor = iconAnchor(n.Position, img.Bounds().Size())
		}
	}

	return n, nil
}

func iconAnchor(center Point, size image.Point) Point {
	return Point{
		X: int(float64(center.X) - float64(size.X)/2),
		Y: int(float64(center.Y) - float64(size.Y)/2),
	}
}
