package jfa

import (
	"math"
	"testing"

	"github.com/gogpu/ink/internal/parallel"
)

// squareMask returns a w*h mask with [x0,x1)x[y0,y1) marked inside.
func squareMask(w, h, x0, y0, x1, y1 int) []byte {
	m := make([]byte, w*h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m[y*w+x] = 255
		}
	}
	return m
}

func squareSegs(x0, y0, x1, y1 float64) []Segment {
	return []Segment{
		{x0, y0, x1, y0},
		{x1, y0, x1, y1},
		{x1, y1, x0, y1},
		{x0, y1, x0, y0},
	}
}

func TestSteps(t *testing.T) {
	got := Steps(20, 9)
	want := []int{16, 8, 4, 2, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("Steps(20, 9) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Steps(20, 9) = %v, want %v", got, want)
		}
	}
}

func TestSegmentDistance(t *testing.T) {
	s := Segment{0, 0, 10, 0}
	tests := []struct {
		x, y, want float64
	}{
		{5, 3, 3},
		{-3, 4, 5},
		{10, 0, 0},
		{13, 4, 5},
	}
	for _, tt := range tests {
		if got := s.Distance(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Distance(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

// Texels within the field range must resolve to their exact nearest edge.
func TestFloodMatchesBruteForce(t *testing.T) {
	const w, h = 24, 24
	segs := squareSegs(6, 6, 18, 18)
	ids := Seed(segs, nil, w, h)
	Flood(ids, segs, w, h, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			want := math.Inf(1)
			for _, s := range segs {
				want = math.Min(want, s.Distance(px, py))
			}
			if want > 4 {
				continue
			}
			id := ids[y*w+x]
			if id == None {
				t.Fatalf("texel (%d,%d) has no edge", x, y)
			}
			if got := segs[id].Distance(px, py); math.Abs(got-want) > 1e-9 {
				t.Fatalf("texel (%d,%d): flood distance %v, brute force %v", x, y, got, want)
			}
		}
	}
}

func TestFloodParallelMatchesSerial(t *testing.T) {
	const w, h = 40, 70
	segs := append(squareSegs(4, 4, 30, 20), squareSegs(10, 35, 36, 66)...)
	serial := Seed(segs, nil, w, h)
	Flood(serial, segs, w, h, nil)

	pool := parallel.NewWorkerPool(4)
	defer pool.Close()
	banded := Seed(segs, nil, w, h)
	Flood(banded, segs, w, h, pool)

	for i := range serial {
		if serial[i] != banded[i] {
			t.Fatalf("texel %d: serial edge %d, parallel edge %d", i, serial[i], banded[i])
		}
	}
}

func TestBuildSquareCoverageIsCrisp(t *testing.T) {
	const w, h = 20, 20
	mask := squareMask(w, h, 5, 5, 15, 15)
	f := Build(squareSegs(5, 5, 15, 15), mask, w, h, 4, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := Coverage(f.N[y*w+x], f.Range, 1)
			want := byte(0)
			if x >= 5 && x < 15 && y >= 5 && y < 15 {
				want = 255
			}
			if c != want {
				t.Fatalf("coverage(%d,%d) = %d, want %d", x, y, c, want)
			}
		}
	}
}

func TestEdgeValueIsHalf(t *testing.T) {
	if got := Normalize(0, 4); got != 0.5 {
		t.Errorf("Normalize(0) = %v, want 0.5", got)
	}
	if got := Signed(Normalize(-2, 4), 4); math.Abs(got+2) > 1e-6 {
		t.Errorf("Signed(Normalize(-2)) = %v, want -2", got)
	}
	if got := Normalize(100, 4); got != 0 {
		t.Errorf("Normalize(100) = %v, want 0 (clamped)", got)
	}
}

func TestBoundaryDropsInteriorEdges(t *testing.T) {
	const w, h = 20, 20
	mask := squareMask(w, h, 2, 2, 18, 18)
	segs := append(squareSegs(2, 2, 18, 18), Segment{10, 4, 10, 16})
	got := Boundary(segs, mask, w, h)
	if len(got) != 4 {
		t.Fatalf("Boundary kept %d segments, want 4", len(got))
	}
}

func TestMultiMedianMatchesSingle(t *testing.T) {
	const w, h = 20, 20
	mask := squareMask(w, h, 5, 5, 15, 15)
	segs := squareSegs(5, 5, 15, 15)
	single := Build(segs, mask, w, h, 4, nil)
	multi := BuildMulti(segs, mask, w, h, 4, nil).Field()
	for i := range single.N {
		a := Coverage(single.N[i], single.Range, 1)
		b := Coverage(multi.N[i], multi.Range, 1)
		if a != b {
			t.Fatalf("texel %d: single coverage %d, multi median coverage %d", i, a, b)
		}
	}
}

func TestEdgeChannelsPairs(t *testing.T) {
	for i, c := range EdgeChannels(7) {
		bits := 0
		for b := uint8(1); b <= ChannelB; b <<= 1 {
			if c&b != 0 {
				bits++
			}
		}
		if bits != 2 {
			t.Errorf("edge %d has %d channels, want 2", i, bits)
		}
	}
}

func TestMedian(t *testing.T) {
	if got := median(0.1, 0.9, 0.5); got != 0.5 {
		t.Errorf("median = %v, want 0.5", got)
	}
	if got := median(0.7, 0.7, 0.2); got != 0.7 {
		t.Errorf("median = %v, want 0.7", got)
	}
}
