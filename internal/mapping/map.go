package mapping

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
)

// MapSpec sizes the map image.
type MapSpec struct {
	Width, Height int
	Background    color.Color // nil renders a transparent background
}

// Map composes nodes, links and the legend onto one canvas.
type Map struct {
	Spec  MapSpec
	Nodes []*Node
	Links []*Link
	Table *Table

	newCanvas CanvasFactory
	log       *slog.Logger
}

// Option configures a Map.
type Option func(*Map)

// WithCanvasFactory replaces the default raster canvas.
func WithCanvasFactory(f CanvasFactory) Option {
	return func(m *Map) {
		m.newCanvas = f
	}
}

// WithLogger sets the logger used for render events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Map) {
		m.log = l
	}
}

// NewMap creates a map. table may be nil.
func NewMap(spec MapSpec, nodes []*Node, links []*Link, table *Table, opts ...Option) *Map {
	m := &Map{
		Spec:      spec,
		Nodes:     nodes,
		Links:     links,
		Table:     table,
		newCanvas: RasterCanvasFactory(nil),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Render draws the legend, then every arrow, then the node icons and
// finally all labels, so icons and labels stay readable over the arrows.
func (m *Map) Render() (image.Image, error) {
	for _, link := range m.Links {
		if !link.Fed() {
			return nil, fmt.Errorf("link %s: %w", link.Name, ErrUnfedLink)
		}
	}

	canvas, err := m.newCanvas(m.Spec.Width, m.Spec.Height, m.Spec.Background)
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}

	if m.Table != nil {
		m.Table.Draw(canvas)
		m.log.Debug("drew table")
	}
	if err := m.drawArrows(canvas); err != nil {
		return nil, err
	}
	m.drawIcons(canvas)
	if err := m.drawLabels(canvas); err != nil {
		return nil, err
	}

	m.log.Debug("map rendered",
		"width", m.Spec.Width,
		"height", m.Spec.Height,
		"nodes", len(m.Nodes),
		"links", len(m.Links))
	return canvas.Image(), nil
}

func (m *Map) drawArrows(c Canvas) error {
	for _, link := range m.Links {
		in, err := link.InputColor()
		if err != nil {
			return err
		}
		out, err := link.OutputColor()
		if err != nil {
			return err
		}
		c.Polygon(link.InputArrow, in, color.Black)
		c.Polygon(link.OutputArrow, out, color.Black)
	}
	m.log.Debug("drew arrows", "links", len(m.Links))
	return nil
}

func (m *Map) drawIcons(c Canvas) {
	for _, node := range m.Nodes {
		if node.Icon == nil {
			continue
		}
		c.Paste(node.Icon, node.IconAnchor)
	}
}

func (m *Map) drawLabels(c Canvas) error {
	for _, node := range m.Nodes {
		drawLabel(c, node.Label)
	}
	for _, link := range m.Links {
		in, err := link.InputLabel()
		if err != nil {
			return err
		}
		out, err := link.OutputLabel()
		if err != nil {
			return err
		}
		drawLabel(c, in)
		drawLabel(c, out)
	}
	m.log.Debug("drew labels")
	return nil
}

func drawLabel(c Canvas, l *Label) {
	if l.Empty() {
		return
	}
	c.Rectangle(l.Box, l.Background, l.Outline)
	c.Text(l.TextAnchor, l.Text, l.FontSize, l.Foreground)
}

// Encode renders the map and writes it to w as PNG.
func (m *Map) Encode(w io.Writer) error {
	img, err := m.Render()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// PNG renders the map and returns the encoded image.
func (m *Map) PNG() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := m.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save renders the map into a PNG file at path.
func (m *Map) Save(path string) error {
	data, err := m.PNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	m.log.Debug("saved map image", "path", path)
	return nil
}
