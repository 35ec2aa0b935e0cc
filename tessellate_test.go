package ink

import (
	"math"
	"testing"
)

// triangleArea sums the absolute area of an indexed triangle list.
func triangleArea(t *testing.T, pts []Point, idx []uint32) float64 {
	t.Helper()
	if len(idx)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(idx))
	}
	a := 0.0
	for i := 0; i < len(idx); i += 3 {
		for _, k := range idx[i : i+3] {
			if int(k) >= len(pts) {
				t.Fatalf("index %d out of range (%d vertices)", k, len(pts))
			}
		}
		p, q, r := pts[idx[i]], pts[idx[i+1]], pts[idx[i+2]]
		a += math.Abs(q.Sub(p).Cross(r.Sub(p))) / 2
	}
	return a
}

func TestTriangulateConvex(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	idx := Triangulate(square)
	if len(idx) != 6 {
		t.Fatalf("square: %d indices, want 6", len(idx))
	}
	if a := triangleArea(t, square, idx); math.Abs(a-100) > 1e-9 {
		t.Errorf("square area = %v, want 100", a)
	}
}

func TestTriangulateConcave(t *testing.T) {
	tests := []struct {
		name string
		poly []Point
	}{
		{"L shape", []Point{{0, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 20}, {0, 20}}},
		{"L shape clockwise", []Point{{0, 20}, {10, 20}, {10, 10}, {20, 10}, {20, 0}, {0, 0}}},
		{"star", star(Pt(50, 50), 40, 15, 7)},
		{"disc", Disc(Pt(10, 10), 25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Triangulate(tt.poly)
			if want := 3 * (len(tt.poly) - 2); len(idx) != want {
				t.Errorf("%d indices, want %d", len(idx), want)
			}
			want := math.Abs(polygonArea(tt.poly))
			if a := triangleArea(t, tt.poly, idx); math.Abs(a-want) > 1e-6*want {
				t.Errorf("triangle area = %v, polygon area = %v", a, want)
			}
		})
	}
}

func TestTriangulateHole(t *testing.T) {
	outer := []Point{{0, 0}, {30, 0}, {30, 30}, {0, 30}}
	hole := []Point{{8, 11}, {19, 9}, {21, 18}, {12, 21}}
	idx := Triangulate(outer, hole)

	all := append(append([]Point(nil), outer...), hole...)
	if a := triangleArea(t, all, idx); math.Abs(a-797.5) > 1e-6 {
		t.Errorf("area with hole = %v, want 797.5", a)
	}
}

func TestTriangulateFallback(t *testing.T) {
	tests := []struct {
		name   string
		coords []float64
		want   []uint32
	}{
		{"odd count", []float64{0, 0, 1, 0, 1, 1, 0}, []uint32{0, 1, 2}},
		{"two vertices", []float64{0, 0, 1, 1}, nil},
		{"empty", nil, nil},
		{"nan", []float64{0, 0, math.NaN(), 0, 1, 1, 0, 1}, []uint32{0, 1, 2, 0, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TriangulateFlat(tt.coords, nil)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTriangulateSelfIntersecting(t *testing.T) {
	// Bow tie: no clean ears exist on one lobe; the result must still be
	// a valid triangle list.
	bow := []Point{{0, 0}, {10, 10}, {10, 0}, {0, 10}}
	idx := Triangulate(bow)
	if len(idx)%3 != 0 || len(idx) == 0 {
		t.Fatalf("bow tie: %v", idx)
	}
	triangleArea(t, bow, idx)
}

func TestTriangulateStrokeOutline(t *testing.T) {
	b := DefaultBrush()
	b.Size = 12
	pts := []StrokePoint{
		{X: 10, Y: 10, Pressure: 0.5},
		{X: 40, Y: 12, Pressure: 0.8},
		{X: 60, Y: 40, Pressure: 1},
		{X: 30, Y: 60, Pressure: 0.6},
	}
	out := Generate(pts, b)
	idx := Triangulate(out)
	if len(idx) == 0 {
		t.Fatalf("no triangles for %d vertices", len(out))
	}
	if a := triangleArea(t, out, idx); a < 0.9*math.Abs(polygonArea(out)) {
		t.Errorf("triangles cover %v of outline area %v", a, math.Abs(polygonArea(out)))
	}
}

func TestFanIndices(t *testing.T) {
	if got := FanIndices(2); got != nil {
		t.Errorf("FanIndices(2) = %v", got)
	}
	got := FanIndices(5)
	want := []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FanIndices(5) = %v", got)
		}
	}
}

func star(c Point, outer, inner float64, n int) []Point {
	pts := make([]Point, 0, 2*n)
	for i := range 2 * n {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := math.Pi * float64(i) / float64(n)
		pts = append(pts, Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)})
	}
	return pts
}
