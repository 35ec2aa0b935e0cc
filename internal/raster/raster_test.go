package raster

import "testing"

func countAtLeast(mask []byte, v byte) int {
	n := 0
	for _, m := range mask {
		if m >= v {
			n++
		}
	}
	return n
}

func TestContoursSquare(t *testing.T) {
	win := Window{X: 0, Y: 0, W: 20, H: 20}
	sq := []float64{5, 5, 15, 5, 15, 15, 5, 15}
	mask := Contours([][]float64{sq}, win)
	if len(mask) != 400 {
		t.Fatalf("len(mask) = %d, want 400", len(mask))
	}
	if got := countAtLeast(mask, 250); got != 100 {
		t.Errorf("covered pixels = %d, want 100", got)
	}
	if !Inside(mask, win, 5, 5) || Inside(mask, win, 4, 5) || Inside(mask, win, 15, 10) {
		t.Error("Inside disagrees with square bounds")
	}
}

func TestTrianglesMatchContours(t *testing.T) {
	win := Window{X: 2, Y: 3, W: 16, H: 16}
	coords := []float64{5, 5, 15, 5, 15, 15, 5, 15}
	// Mixed winding must still produce the union.
	tris := Triangles(coords, []uint32{0, 1, 2, 0, 3, 2}, win)
	poly := Contours([][]float64{coords}, win)
	Threshold(tris)
	Threshold(poly)
	for i := range tris {
		if tris[i] != poly[i] {
			t.Fatalf("pixel %d: triangles=%d contour=%d", i, tris[i], poly[i])
		}
	}
}

func TestTrianglesIgnoresBadIndices(t *testing.T) {
	win := Window{W: 8, H: 8}
	mask := Triangles([]float64{0, 0, 8, 0, 0, 8}, []uint32{0, 1, 7}, win)
	if countAtLeast(mask, 1) != 0 {
		t.Error("out-of-range triangle was rasterized")
	}
}

func TestEmptyWindow(t *testing.T) {
	if Contours([][]float64{{0, 0, 1, 0, 1, 1}}, Window{}) != nil {
		t.Error("empty window should return nil")
	}
}
