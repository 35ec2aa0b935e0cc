package ink

import "math"

const (
	// mergeDistance is the spacing below which adjacent centerline points
	// are merged.
	mergeDistance = 0.5

	// joinThreshold is the turn angle above which the outer side of a
	// joint gets a round join.
	joinThreshold = 15 * math.Pi / 180

	// arcTolerance bounds the chord error of caps and joins in pixels.
	arcTolerance = 0.1

	// minTaper is the smallest taper factor, keeping stroke ends visible.
	minTaper = 0.1
)

// centerPoint is a centerline vertex with its final half-width.
type centerPoint struct {
	p Point
	r float64
}

// Generate turns a centerline with per-point pressure into a closed
// outline polygon (first vertex not repeated). It returns nil for fewer
// than two distinct points or a zero-area result; callers fall back to
// discs.
func Generate(points []StrokePoint, brush Brush) []Point {
	brush = brush.normalized()
	cps := centerline(points, brush)
	if len(cps) < 2 {
		return nil
	}

	n := len(cps)
	dirs := make([]Point, n-1)
	for i := range dirs {
		dirs[i] = cps[i+1].p.Sub(cps[i].p).Unit()
	}

	left := make([]Point, 0, n+8)
	right := make([]Point, 0, n+8)
	for i, cp := range cps {
		switch {
		case i == 0:
			nrm := dirs[0].Perp()
			left = append(left, cp.p.Add(nrm.Mul(cp.r)))
			right = append(right, cp.p.Sub(nrm.Mul(cp.r)))
		case i == n-1:
			nrm := dirs[n-2].Perp()
			left = append(left, cp.p.Add(nrm.Mul(cp.r)))
			right = append(right, cp.p.Sub(nrm.Mul(cp.r)))
		default:
			left, right = appendJoint(left, right, cp, dirs[i-1], dirs[i], brush.CornerRounding)
		}
	}

	first, last := cps[0], cps[n-1]
	out := make([]Point, 0, len(left)+len(right)+64)
	out = append(out, left...)
	// End cap: from the left normal through the forward direction.
	out = append(out, capArc(last.p, last.r, dirs[n-2].Perp())...)
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	// Start cap: from the right normal through the backward direction.
	out = append(out, capArc(first.p, first.r, dirs[0].Perp().Mul(-1))...)

	if math.Abs(polygonArea(out)) < 1e-9 {
		return nil
	}
	return out
}

// HalfWidths returns the half-width assigned to each centerline point
// that survives merging.
func HalfWidths(points []StrokePoint, brush Brush) []float64 {
	cps := centerline(points, brush.normalized())
	out := make([]float64, len(cps))
	for i, cp := range cps {
		out[i] = cp.r
	}
	return out
}

// centerline applies streamline lag, merges near-duplicates and assigns
// tapered radii.
func centerline(points []StrokePoint, brush Brush) []centerPoint {
	if len(points) == 0 {
		return nil
	}
	cps := make([]centerPoint, 0, len(points))
	pressures := make([]float64, 0, len(points))
	lag := brush.Streamline
	q := points[0].Pos()
	for i, sp := range points {
		if i > 0 {
			q = q.Add(sp.Pos().Sub(q).Mul(1 - lag))
		}
		if len(cps) > 0 && q.Dist(cps[len(cps)-1].p) < mergeDistance {
			k := len(pressures) - 1
			pressures[k] = math.Max(pressures[k], sp.Pressure)
			continue
		}
		cps = append(cps, centerPoint{p: q})
		pressures = append(pressures, sp.Pressure)
	}

	total := 0.0
	arcLen := make([]float64, len(cps))
	for i := 1; i < len(cps); i++ {
		total += cps[i].p.Dist(cps[i-1].p)
		arcLen[i] = total
	}
	for i := range cps {
		r := brush.Radius(pressures[i])
		if brush.TaperLength > 0 {
			f := math.Min(arcLen[i], total-arcLen[i]) / brush.TaperLength
			r *= math.Max(minTaper, math.Min(1, f))
		}
		cps[i].r = r
	}
	return cps
}

// appendJoint adds the rail vertices for an interior centerline point.
// Gentle turns get one mitered vertex per side. Sharp turns get a round
// join on the outer side and the two unjoined offsets on the inner side.
func appendJoint(left, right []Point, cp centerPoint, din, dout Point, rounding float64) ([]Point, []Point) {
	nIn, nOut := din.Perp(), dout.Perp()
	turn := math.Atan2(din.Cross(dout), din.Dot(dout))
	if math.Abs(turn) <= joinThreshold {
		avg := nIn.Add(nOut).Unit()
		scale := cp.r / math.Max(avg.Dot(nIn), 0.5)
		return append(left, cp.p.Add(avg.Mul(scale))), append(right, cp.p.Sub(avg.Mul(scale)))
	}
	if turn > 0 {
		// Turning toward the left rail: the right side is outer.
		left = append(left, cp.p.Add(nIn.Mul(cp.r)), cp.p.Add(nOut.Mul(cp.r)))
		right = append(right, arc(cp.p, cp.r, nIn.Mul(-1), turn, rounding)...)
		return left, right
	}
	left = append(left, arc(cp.p, cp.r, nIn, turn, rounding)...)
	right = append(right, cp.p.Sub(nIn.Mul(cp.r)), cp.p.Sub(nOut.Mul(cp.r)))
	return left, right
}

// arc returns points on a circle of radius r around c, starting at the
// unit direction from and sweeping by sweep radians, both ends included.
// density in [0, 1] scales the vertex count; 0 yields the endpoints only.
func arc(c Point, r float64, from Point, sweep, density float64) []Point {
	steps := 1
	if r > arcTolerance {
		step := 2 * math.Acos(1-arcTolerance/r)
		full := int(math.Ceil(math.Abs(sweep) / step))
		steps = max(1, int(math.Round(float64(full)*density)))
	}
	a0 := math.Atan2(from.Y, from.X)
	pts := make([]Point, steps+1)
	for i := range pts {
		a := a0 + sweep*float64(i)/float64(steps)
		pts[i] = Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	return pts
}

// capArc is a semicircular cap without its endpoints, which the rails
// already provide.
func capArc(c Point, r float64, from Point) []Point {
	pts := arc(c, r, from, -math.Pi, 1)
	if len(pts) <= 2 {
		return nil
	}
	return pts[1 : len(pts)-1]
}

// polygonArea returns the signed shoelace area.
func polygonArea(pts []Point) float64 {
	a := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].Cross(pts[j])
	}
	return a / 2
}
