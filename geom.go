package ink

import "math"

// Point is a layer-local position in pixels.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point         { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point         { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point       { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64       { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64     { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64              { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64      { return p.Sub(q).Len() }
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Perp returns p rotated by +90 degrees.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Unit returns p scaled to length 1, or the zero point.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Rect is a half-open pixel rectangle [MinX, MaxX) x [MinY, MaxY).
// A rect with MinX >= MaxX or MinY >= MaxY is empty and means
// "nothing to redraw".
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

// EmptyRect returns the identity for Union: min above max.
func EmptyRect() Rect {
	return Rect{MinX: math.MaxInt32, MinY: math.MaxInt32, MaxX: math.MinInt32, MaxY: math.MinInt32}
}

// XYWH builds a rect from origin and size.
func XYWH(x, y, w, h int) Rect { return Rect{x, y, x + w, y + h} }

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.MinX >= r.MaxX || r.MinY >= r.MaxY }

// Dx returns the width of r, 0 when empty.
func (r Rect) Dx() int {
	if r.Empty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Dy returns the height of r, 0 when empty.
func (r Rect) Dy() int {
	if r.Empty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Union returns the smallest rect containing r and s. Empty rects are
// the identity.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{min(r.MinX, s.MinX), min(r.MinY, s.MinY), max(r.MaxX, s.MaxX), max(r.MaxY, s.MaxY)}
}

// Intersect returns the overlap of r and s, empty when they are disjoint.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{max(r.MinX, s.MinX), max(r.MinY, s.MinY), min(r.MaxX, s.MaxX), min(r.MaxY, s.MaxY)}
	if out.Empty() {
		return EmptyRect()
	}
	return out
}

// Contains reports whether s lies inside r. Every rect contains the
// empty rect.
func (r Rect) Contains(s Rect) bool {
	if s.Empty() {
		return true
	}
	return s.MinX >= r.MinX && s.MinY >= r.MinY && s.MaxX <= r.MaxX && s.MaxY <= r.MaxY
}

// Inset shrinks r by n pixels on each side; negative n grows it.
func (r Rect) Inset(n int) Rect {
	if r.Empty() {
		return r
	}
	return Rect{r.MinX + n, r.MinY + n, r.MaxX - n, r.MaxY - n}
}

// Bounds returns the pixel rect covering every point, grown by pad.
func Bounds(pts []Point, pad float64) Rect {
	if len(pts) == 0 {
		return EmptyRect()
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	return Rect{
		MinX: int(math.Floor(minX - pad)),
		MinY: int(math.Floor(minY - pad)),
		MaxX: int(math.Ceil(maxX + pad)),
		MaxY: int(math.Ceil(maxY + pad)),
	}
}
