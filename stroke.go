package ink

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// StrokePoint is one calibrated sample in layer-local space.
type StrokePoint struct {
	X, Y     float64
	Pressure float64 // [0, 1]
	TiltX    float64 // degrees
	TiltY    float64 // degrees
	Time     time.Duration
}

// Pos returns the position of p.
func (p StrokePoint) Pos() Point { return Point{p.X, p.Y} }

// Mesh is an indexed triangle list over flat x,y vertex coordinates.
type Mesh struct {
	Vertices []float64
	Indices  []uint32
}

// Empty reports whether m has no triangles.
func (m Mesh) Empty() bool { return len(m.Indices) < 3 }

// Stroke is one pointer-down to pointer-up gesture. After Finalize the
// stroke is immutable and owned by the layer it was committed to.
type Stroke struct {
	ID        string
	Points    []StrokePoint
	Brush     Brush
	SingleDot bool

	// Outline is the closed silhouette, first vertex not repeated.
	// Setting it before Finalize skips outline generation.
	Outline []Point

	// Mesh triangulates every contour of the stroke.
	Mesh Mesh

	contours  [][]Point
	finalized bool
}

// NewStroke creates an unfinalized stroke with a fresh ID.
func NewStroke(points []StrokePoint, brush Brush) *Stroke {
	return &Stroke{
		ID:     uuid.NewString(),
		Points: points,
		Brush:  brush.normalized(),
	}
}

// NewShapeStroke creates a stroke whose silhouette is the given polygon.
// It is drawn exactly like a captured stroke, including eraser mode.
func NewShapeStroke(outline []Point, brush Brush) *Stroke {
	s := NewStroke(nil, brush)
	s.Outline = outline
	return s
}

// Finalized reports whether Finalize has run.
func (s *Stroke) Finalized() bool { return s.finalized }

// Finalize derives the outline, fallback contours and triangulation.
// It is idempotent.
func (s *Stroke) Finalize() {
	if s.finalized {
		return
	}
	s.finalized = true
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Brush = s.Brush.normalized()

	switch {
	case len(s.Outline) >= 3:
	case s.SingleDot || len(s.Points) == 1:
		s.SingleDot = true
		s.Outline = dotOutline(s.Points, s.Brush)
	case len(s.Points) >= 2:
		s.Outline = Generate(s.Points, s.Brush)
	}

	if len(s.Outline) >= 3 {
		s.contours = [][]Point{s.Outline}
	} else if len(s.Points) > 0 {
		// Outline failed: one disc per point as a last resort.
		Logger().Debug("stroke outline degenerate, using discs", "stroke", s.ID, "points", len(s.Points))
		for _, p := range s.Points {
			s.contours = append(s.contours, Disc(p.Pos(), s.Brush.Radius(p.Pressure)))
		}
	}

	for _, c := range s.contours {
		base := uint32(len(s.Mesh.Vertices) / 2)
		for _, idx := range Triangulate(c) {
			s.Mesh.Indices = append(s.Mesh.Indices, base+idx)
		}
		for _, p := range c {
			s.Mesh.Vertices = append(s.Mesh.Vertices, p.X, p.Y)
		}
	}
}

// Contours returns the closed polygons that make up the stroke silhouette.
// It finalizes the stroke if needed.
func (s *Stroke) Contours() [][]Point {
	s.Finalize()
	return s.contours
}

// Footprint returns the pixel rect the stroke can touch when rendered
// with a distance field of the given range.
func (s *Stroke) Footprint(rng float64) Rect {
	r := EmptyRect()
	pad := s.Brush.Feather(rng)/2 + 1
	for _, c := range s.Contours() {
		r = r.Union(Bounds(c, pad))
	}
	return r
}

// dotOutline is the disc for a single-dot stroke: centered on the mean
// position, sized by the strongest pressure.
func dotOutline(pts []StrokePoint, b Brush) []Point {
	if len(pts) == 0 {
		return nil
	}
	var c Point
	pressure := 0.0
	for _, p := range pts {
		c = c.Add(p.Pos())
		pressure = max(pressure, p.Pressure)
	}
	return Disc(c.Mul(1/float64(len(pts))), b.Radius(pressure))
}

// Disc returns a closed polygon approximating a circle. The vertex count
// grows with the radius so the chord error stays below a tenth of a pixel.
func Disc(c Point, r float64) []Point {
	if r <= 0 || math.IsNaN(r) {
		return nil
	}
	n := 16
	if r > 0.1 {
		n = max(n, int(math.Ceil(math.Pi/math.Acos(1-0.1/r))))
	}
	n = min(n, 512)
	pts := make([]Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	return pts
}
