package mapping

import (
	"image"
	"image/color"
)

// Canvas is the drawing surface a Map renders onto.
type Canvas interface {
	// Polygon fills a closed polygon and strokes its outline.
	Polygon(points []Point, fill, outline color.Color)
	// Rectangle fills r and strokes its border. A nil color is skipped.
	Rectangle(r Rect, fill, outline color.Color)
	// Text draws s with its top-left corner at at.
	Text(at Point, s string, size int, c color.Color)
	// Paste composites img with its top-left corner at at, using its alpha.
	Paste(img image.Image, at Point)
	// Image returns the rendered surface.
	Image() image.Image
}

// CanvasFactory creates the surface of a map.
type CanvasFactory func(width, height int, background color.Color) (Canvas, error)
