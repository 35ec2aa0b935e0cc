package ink

import (
	"github.com/gogpu/ink/internal/blend"
	"github.com/gogpu/ink/internal/jfa"
	"github.com/gogpu/ink/internal/parallel"
	"github.com/gogpu/ink/internal/raster"
)

// DefaultRange is the distance field range in pixels on either side of
// the edge.
const DefaultRange = 4.0

// Coverage is the rasterized footprint of one stroke: 8-bit coverage for
// every pixel of Rect, row-major, already scaled by brush opacity.
type Coverage struct {
	Rect Rect
	Mask []byte
}

// Empty reports whether the coverage touches no pixel.
func (c Coverage) Empty() bool { return c.Rect.Empty() }

// At returns the coverage at canvas pixel (x, y).
func (c Coverage) At(x, y int) byte {
	if x < c.Rect.MinX || y < c.Rect.MinY || x >= c.Rect.MaxX || y >= c.Rect.MaxY {
		return 0
	}
	return c.Mask[(y-c.Rect.MinY)*c.Rect.Dx()+(x-c.Rect.MinX)]
}

// strokeWindow returns the footprint of s clipped to bounds as a raster
// window.
func strokeWindow(s *Stroke, bounds Rect, rng float64) (Rect, raster.Window) {
	r := s.Footprint(rng).Intersect(bounds)
	if r.Empty() {
		return r, raster.Window{}
	}
	return r, raster.Window{X: r.MinX, Y: r.MinY, W: r.Dx(), H: r.Dy()}
}

// flatContours converts the stroke silhouette to flat coordinate lists.
func flatContours(s *Stroke) [][]float64 {
	cs := s.Contours()
	out := make([][]float64, len(cs))
	for i, c := range cs {
		f := make([]float64, 0, 2*len(c))
		for _, p := range c {
			f = append(f, p.X, p.Y)
		}
		out[i] = f
	}
	return out
}

// Segments returns every contour edge of s translated by (-ox, -oy).
func Segments(s *Stroke, ox, oy float64) []jfa.Segment {
	var segs []jfa.Segment
	for _, c := range s.Contours() {
		for i := range c {
			a, b := c[i], c[(i+1)%len(c)]
			if a == b {
				continue
			}
			segs = append(segs, jfa.Segment{AX: a.X - ox, AY: a.Y - oy, BX: b.X - ox, BY: b.Y - oy})
		}
	}
	return segs
}

// interiorMask rasterizes the stroke silhouette over win with the nonzero
// rule. Values >= 128 are interior.
func interiorMask(s *Stroke, win raster.Window) []byte {
	return raster.Contours(flatContours(s), win)
}

// DistanceCoverage rasterizes s through a jump-flood distance field over
// its footprint clipped to bounds.
func DistanceCoverage(s *Stroke, bounds Rect, rng float64) Coverage {
	return distanceCoverage(s, bounds, rng, nil)
}

func distanceCoverage(s *Stroke, bounds Rect, rng float64, pool *parallel.WorkerPool) Coverage {
	s.Finalize()
	r, win := strokeWindow(s, bounds, rng)
	if win.Empty() {
		return Coverage{Rect: EmptyRect()}
	}
	inside := interiorMask(s, win)
	segs := Segments(s, float64(win.X), float64(win.Y))

	var field *jfa.Field
	if s.Brush.MultiChannel {
		field = jfa.BuildMulti(segs, inside, win.W, win.H, rng, pool).Field()
	} else {
		field = jfa.Build(segs, inside, win.W, win.H, rng, pool)
	}
	Logger().Debug("distance field", "stroke", s.ID, "w", win.W, "h", win.H, "edges", len(segs))

	width := s.Brush.Feather(rng)
	op := blend.FromFloat(s.Brush.Opacity)
	mask := make([]byte, len(field.N))
	for i, n := range field.N {
		mask[i] = blend.MulDiv255(jfa.Coverage(n, rng, width), op)
	}
	return trim(Coverage{Rect: r, Mask: mask})
}

// DirectCoverage rasterizes the stroke triangles without distance
// smoothing: a pixel is either covered or not.
func DirectCoverage(s *Stroke, bounds Rect, rng float64) Coverage {
	s.Finalize()
	r, win := strokeWindow(s, bounds, rng)
	if win.Empty() || s.Mesh.Empty() {
		return Coverage{Rect: EmptyRect()}
	}
	mask := raster.Triangles(s.Mesh.Vertices, s.Mesh.Indices, win)
	raster.Threshold(mask)
	op := blend.FromFloat(s.Brush.Opacity)
	for i, v := range mask {
		mask[i] = blend.MulDiv255(v, op)
	}
	return trim(Coverage{Rect: r, Mask: mask})
}

// trim shrinks c to the bounding box of its nonzero pixels.
func trim(c Coverage) Coverage {
	w := c.Rect.Dx()
	tight := EmptyRect()
	for y := 0; y < c.Rect.Dy(); y++ {
		row := c.Mask[y*w : (y+1)*w]
		x0 := -1
		x1 := 0
		for x, v := range row {
			if v != 0 {
				if x0 < 0 {
					x0 = x
				}
				x1 = x + 1
			}
		}
		if x0 >= 0 {
			tight = tight.Union(Rect{c.Rect.MinX + x0, c.Rect.MinY + y, c.Rect.MinX + x1, c.Rect.MinY + y + 1})
		}
	}
	if tight.Empty() {
		return Coverage{Rect: EmptyRect()}
	}
	if tight == c.Rect {
		return c
	}
	tw := tight.Dx()
	mask := make([]byte, tw*tight.Dy())
	for y := tight.MinY; y < tight.MaxY; y++ {
		src := c.Mask[(y-c.Rect.MinY)*w+(tight.MinX-c.Rect.MinX):]
		copy(mask[(y-tight.MinY)*tw:(y-tight.MinY+1)*tw], src[:tw])
	}
	return Coverage{Rect: tight, Mask: mask}
}
