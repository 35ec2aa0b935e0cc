// Package jfa is the CPU reference of the jump-flood distance field
// pipeline used for stroke anti-aliasing.
//
// The pipeline runs over a w*h texel window:
//
//	Seed   texels crossed by an outline edge record that edge's index
//	Flood  jump flooding with steps N/2, N/4, ..., 1 propagates the nearest edge
//	Encode the exact distance to the propagated edge, signed by an interior
//	       mask and normalized into [0, 1] with 0.5 on the edge
//
// Distances are measured from texel centers. The GPU compute shaders in
// internal/gpu mirror this package pass for pass.
package jfa

import (
	"math"

	"github.com/gogpu/ink/internal/parallel"
)

// None marks a texel with no propagated edge.
const None = -1

// seedRadius bounds the texel-center distance at which an edge seeds a texel.
const seedRadius = 1.5

// Segment is an outline edge in window-local pixel coordinates.
type Segment struct {
	AX, AY, BX, BY float64
}

// Distance returns the Euclidean distance from (px, py) to the segment.
func (s Segment) Distance(px, py float64) float64 {
	dx, dy := s.BX-s.AX, s.BY-s.AY
	l2 := dx*dx + dy*dy
	t := 0.0
	if l2 > 0 {
		t = ((px-s.AX)*dx + (py-s.AY)*dy) / l2
		t = math.Max(0, math.Min(1, t))
	}
	ex, ey := s.AX+t*dx-px, s.AY+t*dy-py
	return math.Hypot(ex, ey)
}

// Seed returns one edge index per texel (None when no edge passes near
// it). include filters which segments participate; nil includes all.
func Seed(segs []Segment, include func(int) bool, w, h int) []int32 {
	ids := make([]int32, w*h)
	best := make([]float64, w*h)
	for i := range ids {
		ids[i] = None
		best[i] = math.Inf(1)
	}
	for si, s := range segs {
		if include != nil && !include(si) {
			continue
		}
		length := math.Hypot(s.BX-s.AX, s.BY-s.AY)
		steps := int(math.Ceil(length*2)) + 1
		for k := 0; k <= steps; k++ {
			t := float64(k) / float64(steps)
			cx := int(math.Floor(s.AX + t*(s.BX-s.AX)))
			cy := int(math.Floor(s.AY + t*(s.BY-s.AY)))
			for y := cy - 1; y <= cy+1; y++ {
				if y < 0 || y >= h {
					continue
				}
				for x := cx - 1; x <= cx+1; x++ {
					if x < 0 || x >= w {
						continue
					}
					d := s.Distance(float64(x)+0.5, float64(y)+0.5)
					i := y*w + x
					if d <= seedRadius && d < best[i] {
						best[i] = d
						ids[i] = int32(si)
					}
				}
			}
		}
	}
	return ids
}

// Steps returns the jump distances for a w*h window: the largest power of
// two below max(w, h), halving down to 1, then one extra pass at 1.
func Steps(w, h int) []int {
	n := max(w, h)
	k := 1
	for k*2 < n {
		k *= 2
	}
	var steps []int
	for ; k >= 1; k /= 2 {
		steps = append(steps, k)
	}
	return append(steps, 1)
}

// floodBand is the smallest row band worth handing to another worker.
const floodBand = 16

// Flood propagates the nearest edge to every texel in place. Rows of
// each step are split across pool, which may be nil.
func Flood(ids []int32, segs []Segment, w, h int, pool *parallel.WorkerPool) {
	if w <= 0 || h <= 0 {
		return
	}
	next := make([]int32, len(ids))
	cur := ids
	for _, k := range Steps(w, h) {
		pool.Bands(h, floodBand, func(y0, y1 int) {
			floodStep(cur, next, segs, w, h, k, y0, y1)
		})
		cur, next = next, cur
	}
	if &cur[0] != &ids[0] {
		copy(ids, cur)
	}
}

func floodStep(src, dst []int32, segs []Segment, w, h, k, y0, y1 int) {
	for y := y0; y < y1; y++ {
		py := float64(y) + 0.5
		for x := 0; x < w; x++ {
			px := float64(x) + 0.5
			bestID := src[y*w+x]
			bestD := math.Inf(1)
			if bestID != None {
				bestD = segs[bestID].Distance(px, py)
			}
			for dy := -k; dy <= k; dy += k {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -k; dx <= k; dx += k {
					nx := x + dx
					if nx < 0 || nx >= w || (dx == 0 && dy == 0) {
						continue
					}
					id := src[ny*w+nx]
					if id == None || id == bestID {
						continue
					}
					if d := segs[id].Distance(px, py); d < bestD {
						bestD, bestID = d, id
					}
				}
			}
			dst[y*w+x] = bestID
		}
	}
}

// Field is a single-channel distance field. Values are normalized so
// that 0.5 lies on the edge, larger values are inside and the span
// [0, 1] covers Range pixels on either side.
type Field struct {
	W, H  int
	Range float64
	N     []float32
}

// Normalize maps a signed distance (negative inside) into field space.
func Normalize(sd, rng float64) float32 {
	v := 0.5 - sd/(2*rng)
	return float32(math.Max(0, math.Min(1, v)))
}

// Signed maps a normalized value back to a signed distance in pixels.
func Signed(n float32, rng float64) float64 {
	return (0.5 - float64(n)) * 2 * rng
}

// Encode converts propagated edge ids into a normalized field. inside is
// a w*h mask where values >= 128 mark interior texels.
func Encode(ids []int32, segs []Segment, inside []byte, w, h int, rng float64) *Field {
	f := &Field{W: w, H: h, Range: rng, N: make([]float32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			d := math.Inf(1)
			if id := ids[i]; id != None {
				d = segs[id].Distance(float64(x)+0.5, float64(y)+0.5)
			}
			if inside[i] >= 128 {
				d = -d
			}
			f.N[i] = Normalize(d, rng)
		}
	}
	return f
}

// Build runs seed, flood and encode over the boundary edges of segs.
func Build(segs []Segment, inside []byte, w, h int, rng float64, pool *parallel.WorkerPool) *Field {
	segs = Boundary(segs, inside, w, h)
	ids := Seed(segs, nil, w, h)
	Flood(ids, segs, w, h, pool)
	return Encode(ids, segs, inside, w, h, rng)
}

// Boundary drops segments that have interior texels on both sides. Such
// edges appear where a stroke outline overlaps itself and would otherwise
// draw seams through filled areas.
func Boundary(segs []Segment, inside []byte, w, h int) []Segment {
	in := func(x, y float64) bool {
		ix, iy := int(math.Floor(x)), int(math.Floor(y))
		if ix < 0 || iy < 0 || ix >= w || iy >= h {
			return false
		}
		return inside[iy*w+ix] >= 128
	}
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		dx, dy := s.BX-s.AX, s.BY-s.AY
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*0.75, dx/l*0.75
		mx, my := (s.AX+s.BX)/2, (s.AY+s.BY)/2
		if in(mx+nx, my+ny) && in(mx-nx, my-ny) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Coverage converts a normalized field value into 8-bit coverage using a
// box filter of the given width in pixels (1 for a hard edge).
func Coverage(n float32, rng, width float64) byte {
	if width < 1 {
		width = 1
	}
	c := 0.5 - Signed(n, rng)/width
	switch {
	case c <= 0:
		return 0
	case c >= 1:
		return 255
	}
	return byte(c*255 + 0.5)
}
