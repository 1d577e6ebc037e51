package mapping

import "math"

// Point is an integer canvas coordinate.
type Point struct {
	X, Y int
}

// Add returns p shifted by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned box with inclusive corners.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// Midpoint returns the point halfway between a and b, truncated toward zero.
func Midpoint(a, b Point) Point {
	return Point{X: middle(a.X, b.X), Y: middle(a.Y, b.Y)}
}

func middle(a, b int) int {
	return int(float64(a) + float64(b-a)/2)
}

// ArrowVertices is the number of vertices of an arrow polygon.
const ArrowVertices = 7

// ArrowPoints returns the polygon of an arrow with a shaft starting at from
// and a head whose tip is exactly to. width is the half-width of the shaft.
//
// When from and to coincide the direction is undefined and a zero-area
// polygon collapsed on to is returned.
func ArrowPoints(from, to Point, width float64) []Point {
	points := make([]Point, 0, ArrowVertices)

	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	if dx == 0 && dy == 0 {
		for i := 0; i < ArrowVertices; i++ {
			points = append(points, to)
		}
		return points
	}

	angle := math.Atan2(dy, dx)
	at := func(anchor Point, a, b float64) Point {
		return anchor.Add(rotate(a, b, angle))
	}

	points = append(points,
		at(from, 0, width),
		at(to, -4*width, width),
		at(to, -4*width, 2*width),
		to,
		at(to, -4*width, -2*width),
		at(to, -4*width, -width),
		at(from, 0, -width),
	)
	return points
}

// rotate turns the offset (a, b) by angle, keeping its length. Components
// are truncated toward zero.
func rotate(a, b, angle float64) Point {
	r := math.Hypot(a, b)
	theta := math.Atan2(b, a) + angle
	return Point{
		X: int(math.Cos(theta) * r),
		Y: int(math.Sin(theta) * r),
	}
}
