package ink

import (
	"math"
	"sort"
)

// Triangulate returns triangle indices for a polygon with optional holes.
// Indices address the concatenation of poly and holes in order. Every
// result is a multiple of three; degenerate input yields a fan from
// vertex 0 or nil.
func Triangulate(poly []Point, holes ...[]Point) []uint32 {
	n := len(poly)
	for _, h := range holes {
		n += len(h)
	}
	coords := make([]float64, 0, 2*n)
	for _, p := range poly {
		coords = append(coords, p.X, p.Y)
	}
	var holeStarts []int
	for _, h := range holes {
		holeStarts = append(holeStarts, len(coords)/2)
		for _, p := range h {
			coords = append(coords, p.X, p.Y)
		}
	}
	return TriangulateFlat(coords, holeStarts)
}

// FanIndices returns the fan (0, i, i+1) over n vertices.
func FanIndices(n int) []uint32 {
	if n < 3 {
		return nil
	}
	out := make([]uint32, 0, 3*(n-2))
	for i := 1; i+1 < n; i++ {
		out = append(out, 0, uint32(i), uint32(i+1))
	}
	return out
}

// TriangulateFlat ear-clips a flat x,y coordinate list. holeStarts holds
// the vertex index at which each hole ring begins. Input that cannot be
// triangulated falls back to FanIndices over the outer ring.
func TriangulateFlat(coords []float64, holeStarts []int) []uint32 {
	if len(coords)%2 != 0 {
		Logger().Debug("tessellate: odd coordinate count, using fan", "coords", len(coords))
		return FanIndices(len(coords) / 2)
	}
	nv := len(coords) / 2
	outerEnd := nv
	if len(holeStarts) > 0 {
		outerEnd = holeStarts[0]
	}
	if outerEnd < 3 || outerEnd > nv {
		return FanIndices(min(outerEnd, nv))
	}
	for _, v := range coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FanIndices(outerEnd)
		}
	}

	ec := &earClipper{coords: coords}
	outer := ec.ring(0, outerEnd, true)
	if outer < 0 {
		return FanIndices(outerEnd)
	}
	if len(holeStarts) > 0 {
		outer = ec.bridgeHoles(outer, holeStarts, nv)
	}
	tris, ok := ec.clip(outer)
	if !ok {
		Logger().Debug("tessellate: ear clipping stalled, using fan", "vertices", nv)
		return FanIndices(outerEnd)
	}
	return tris
}

// earNode is a vertex in the circular list being clipped. Bridged holes
// duplicate vertices, so several nodes may share one index.
type earNode struct {
	i          uint32
	x, y       float64
	prev, next int
	removed    bool
}

type earClipper struct {
	coords []float64
	nodes  []earNode
}

func (ec *earClipper) add(i int) int {
	ec.nodes = append(ec.nodes, earNode{i: uint32(i), x: ec.coords[2*i], y: ec.coords[2*i+1]})
	return len(ec.nodes) - 1
}

// ring links vertices [start, end) into a circular list with positive
// signed area (ccw) or negative (cw) and returns one of its nodes, or -1
// when the ring has fewer than three vertices.
func (ec *earClipper) ring(start, end int, ccw bool) int {
	if end-start < 3 {
		return -1
	}
	area := 0.0
	for i := start; i < end; i++ {
		j := i + 1
		if j == end {
			j = start
		}
		area += ec.coords[2*i]*ec.coords[2*j+1] - ec.coords[2*j]*ec.coords[2*i+1]
	}
	first := len(ec.nodes)
	if (area > 0) == ccw {
		for i := start; i < end; i++ {
			ec.add(i)
		}
	} else {
		for i := end - 1; i >= start; i-- {
			ec.add(i)
		}
	}
	last := len(ec.nodes) - 1
	for k := first; k <= last; k++ {
		ec.nodes[k].prev = k - 1
		ec.nodes[k].next = k + 1
	}
	ec.nodes[first].prev = last
	ec.nodes[last].next = first
	return first
}

// bridgeHoles splices every hole ring into the outer ring, rightmost hole
// first, through a zero-width bridge to a visible outer vertex.
func (ec *earClipper) bridgeHoles(outer int, holeStarts []int, nv int) int {
	type hole struct{ node, right int }
	var holes []hole
	for k, s := range holeStarts {
		e := nv
		if k+1 < len(holeStarts) {
			e = holeStarts[k+1]
		}
		if s < 0 || e > nv || s >= e {
			continue
		}
		h := ec.ring(s, e, false)
		if h < 0 {
			continue
		}
		right := h
		for n := ec.nodes[h].next; n != h; n = ec.nodes[n].next {
			if ec.nodes[n].x > ec.nodes[right].x {
				right = n
			}
		}
		holes = append(holes, hole{h, right})
	}
	sort.Slice(holes, func(a, b int) bool {
		return ec.nodes[holes[a].right].x > ec.nodes[holes[b].right].x
	})
	for _, h := range holes {
		v := ec.visible(outer, h.right)
		if v < 0 {
			continue
		}
		ec.splice(v, h.right)
	}
	return outer
}

// visible returns the nearest node of the ring containing outer whose
// segment to hole node m crosses no edge of that ring.
func (ec *earClipper) visible(outer, m int) int {
	mx, my := ec.nodes[m].x, ec.nodes[m].y
	best, bestD := -1, math.Inf(1)
	n := outer
	for {
		p := ec.nodes[n]
		d := (p.x-mx)*(p.x-mx) + (p.y-my)*(p.y-my)
		if d < bestD && ec.clear(outer, n, mx, my) {
			best, bestD = n, d
		}
		n = p.next
		if n == outer {
			break
		}
	}
	return best
}

// clear reports whether the segment from node v to (mx, my) avoids every
// ring edge that does not touch v.
func (ec *earClipper) clear(start, v int, mx, my float64) bool {
	vx, vy := ec.nodes[v].x, ec.nodes[v].y
	n := start
	for {
		a := ec.nodes[n]
		b := ec.nodes[a.next]
		if n != v && a.next != v && segmentsCross(vx, vy, mx, my, a.x, a.y, b.x, b.y) {
			return false
		}
		n = a.next
		if n == start {
			return true
		}
	}
}

// splice links hole node m after outer node v and closes the bridge
// with duplicates of both.
func (ec *earClipper) splice(v, m int) {
	v2 := ec.add(int(ec.nodes[v].i))
	m2 := ec.add(int(ec.nodes[m].i))
	vNext := ec.nodes[v].next
	mPrev := ec.nodes[m].prev

	ec.nodes[v].next = m
	ec.nodes[m].prev = v

	ec.nodes[mPrev].next = m2
	ec.nodes[m2].prev = mPrev
	ec.nodes[m2].next = v2
	ec.nodes[v2].prev = m2
	ec.nodes[v2].next = vNext
	ec.nodes[vNext].prev = v2
}

// clip removes ears until three vertices remain. Self-intersecting rings
// that run out of clean ears force-clip their largest convex corner; a
// ring with no convex corner at all reports failure.
func (ec *earClipper) clip(start int) ([]uint32, bool) {
	count := 1
	for n := ec.nodes[start].next; n != start; n = ec.nodes[n].next {
		count++
	}
	tris := make([]uint32, 0, 3*(count-2))
	cur := start
	for count > 3 {
		ear, scanned := -1, 0
		for n := cur; scanned < count; n, scanned = ec.nodes[n].next, scanned+1 {
			if ec.isEar(n) {
				ear = n
				break
			}
		}
		if ear < 0 {
			ear = ec.degenerate(cur, count)
		}
		if ear < 0 {
			ear = ec.largestConvex(cur, count)
		}
		if ear < 0 {
			return nil, false
		}
		p, nx := ec.nodes[ear].prev, ec.nodes[ear].next
		if ec.cross(p, ear, nx) != 0 {
			tris = append(tris, ec.nodes[p].i, ec.nodes[ear].i, ec.nodes[nx].i)
		}
		ec.nodes[p].next = nx
		ec.nodes[nx].prev = p
		ec.nodes[ear].removed = true
		count--
		cur = nx
	}
	a := cur
	b := ec.nodes[a].next
	c := ec.nodes[b].next
	if ec.cross(a, b, c) != 0 {
		tris = append(tris, ec.nodes[a].i, ec.nodes[b].i, ec.nodes[c].i)
	}
	return tris, true
}

func (ec *earClipper) cross(a, b, c int) float64 {
	na, nb, nc := ec.nodes[a], ec.nodes[b], ec.nodes[c]
	return (nb.x-na.x)*(nc.y-na.y) - (nb.y-na.y)*(nc.x-na.x)
}

// isEar reports whether the corner at n is convex and no other ring
// vertex lies inside it.
func (ec *earClipper) isEar(n int) bool {
	p, nx := ec.nodes[n].prev, ec.nodes[n].next
	if ec.cross(p, n, nx) <= 0 {
		return false
	}
	a, b, c := ec.nodes[p], ec.nodes[n], ec.nodes[nx]
	for k := ec.nodes[nx].next; k != p; k = ec.nodes[k].next {
		q := ec.nodes[k]
		if (q.x == a.x && q.y == a.y) || (q.x == b.x && q.y == b.y) || (q.x == c.x && q.y == c.y) {
			continue
		}
		if pointInTriangle(q.x, q.y, a.x, a.y, b.x, b.y, c.x, c.y) {
			return false
		}
	}
	return true
}

// degenerate returns a node whose corner has zero area, or -1.
func (ec *earClipper) degenerate(start, count int) int {
	n := start
	for range count {
		if ec.cross(ec.nodes[n].prev, n, ec.nodes[n].next) == 0 {
			return n
		}
		n = ec.nodes[n].next
	}
	return -1
}

func (ec *earClipper) largestConvex(start, count int) int {
	best, bestA := -1, 0.0
	n := start
	for range count {
		if a := ec.cross(ec.nodes[n].prev, n, ec.nodes[n].next); a > bestA {
			best, bestA = n, a
		}
		n = ec.nodes[n].next
	}
	return best
}

func pointInTriangle(px, py, ax, ay, bx, by, cx, cy float64) bool {
	d1 := (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	d2 := (cx-bx)*(py-by) - (cy-by)*(px-bx)
	d3 := (ax-cx)*(py-cy) - (ay-cy)*(px-cx)
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

// segmentsCross reports a proper intersection of segments pq and ab.
// Touching endpoints do not count.
func segmentsCross(px, py, qx, qy, ax, ay, bx, by float64) bool {
	o := func(x0, y0, x1, y1, x2, y2 float64) float64 {
		return (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	}
	d1 := o(px, py, qx, qy, ax, ay)
	d2 := o(px, py, qx, qy, bx, by)
	d3 := o(ax, ay, bx, by, px, py)
	d4 := o(ax, ay, bx, by, qx, qy)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
