package mapping

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Fonts caches one face per point size of a single TrueType font.
type Fonts struct {
	font  *opentype.Font
	faces map[int]font.Face
}

// NewFonts parses ttf. A nil ttf selects the bundled Go Mono font.
func NewFonts(ttf []byte) (*Fonts, error) {
	if ttf == nil {
		ttf = gomono.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Fonts{font: f, faces: make(map[int]font.Face)}, nil
}

// Face returns the face for size points at 72 DPI, so one point is one pixel.
func (f *Fonts) Face(size int) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %dpt face: %w", size, err)
	}
	f.faces[size] = face
	return face, nil
}

// RasterCanvas draws onto an in-memory RGBA image.
type RasterCanvas struct {
	img   *image.RGBA
	fonts *Fonts
	z     *vector.Rasterizer
}

// NewRasterCanvas allocates a width x height image filled with background.
// A nil background leaves the image fully transparent.
func NewRasterCanvas(width, height int, background color.Color, fonts *Fonts) (*RasterCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if fonts == nil {
		var err error
		if fonts, err = NewFonts(nil); err != nil {
			return nil, err
		}
	}

	c := &RasterCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		fonts: fonts,
		z:     vector.NewRasterizer(width, height),
	}
	if background != nil {
		draw.Draw(c.img, c.img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	}
	return c, nil
}

// RasterCanvasFactory returns a CanvasFactory sharing fonts between canvases.
func RasterCanvasFactory(fonts *Fonts) CanvasFactory {
	return func(width, height int, background color.Color) (Canvas, error) {
		return NewRasterCanvas(width, height, background, fonts)
	}
}

// Polygon fills points with fill and strokes a 1px outline.
func (c *RasterCanvas) Polygon(points []Point, fill, outline color.Color) {
	if len(points) == 0 {
		return
	}

	if fill != nil && len(points) >= 3 {
		size := c.img.Bounds().Size()
		c.z.Reset(size.X, size.Y)
		c.z.MoveTo(pixelCenter(points[0]))
		for _, p := range points[1:] {
			c.z.LineTo(pixelCenter(p))
		}
		c.z.ClosePath()
		c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(fill), image.Point{})
	}

	if outline != nil {
		for i := range points {
			next := points[(i+1)%len(points)]
			c.drawLine(points[i], next, outline)
		}
	}
}

// Rectangle fills r and strokes its border, corners included.
func (c *RasterCanvas) Rectangle(r Rect, fill, outline color.Color) {
	if fill != nil {
		area := image.Rect(r.X1, r.Y1, r.X2+1, r.Y2+1).Intersect(c.img.Bounds())
		draw.Draw(c.img, area, image.NewUniform(fill), image.Point{}, draw.Over)
	}
	if outline != nil {
		c.drawLine(Point{r.X1, r.Y1}, Point{r.X2, r.Y1}, outline)
		c.drawLine(Point{r.X2, r.Y1}, Point{r.X2, r.Y2}, outline)
		c.drawLine(Point{r.X2, r.Y2}, Point{r.X1, r.Y2}, outline)
		c.drawLine(Point{r.X1, r.Y2}, Point{r.X1, r.Y1}, outline)
	}
}

// Text draws s with its top-left corner at at. When no face can be built for
// size the fixed 7x13 face is used.
func (c *RasterCanvas) Text(at Point, s string, size int, col color.Color) {
	face, err := c.fonts.Face(size)
	if err != nil {
		face = basicfont.Face7x13
	}

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(at.X, at.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// Paste composites img over the canvas with its top-left corner at at.
func (c *RasterCanvas) Paste(img image.Image, at Point) {
	b := img.Bounds()
	dst := image.Rectangle{Min: image.Pt(at.X, at.Y), Max: image.Pt(at.X+b.Dx(), at.Y+b.Dy())}
	draw.Draw(c.img, dst, img, b.Min, draw.Over)
}

// Image returns the underlying RGBA image.
func (c *RasterCanvas) Image() image.Image {
	return c.img
}

func pixelCenter(p Point) (float32, float32) {
	return float32(p.X) + 0.5, float32(p.Y) + 0.5
}

// drawLine draws a 1px line using Bresenham's algorithm.
func (c *RasterCanvas) drawLine(from, to Point, col color.Color) {
	x1, y1, x2, y2 := from.X, from.Y, to.X, to.Y
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := -1
	if x1 < x2 {
		sx = 1
	}
	sy := -1
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy

	for {
		c.setPixel(x1, y1, col)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// setPixel sets a pixel with bounds checking
func (c *RasterCanvas) setPixel(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.Set(x, y, col)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
