package ink

import "testing"

func squareStroke(x, y, size float64, b Brush) *Stroke {
	s := NewShapeStroke(square(x, y, size), b)
	s.Finalize()
	return s
}

func TestDistanceCoverageSquare(t *testing.T) {
	bounds := XYWH(0, 0, 64, 64)
	cov := DistanceCoverage(squareStroke(10, 10, 20, solidBrush()), bounds, DefaultRange)
	if cov.Empty() {
		t.Fatal("coverage is empty")
	}
	if !XYWH(8, 8, 24, 24).Contains(cov.Rect) {
		t.Errorf("coverage rect %v exceeds the square plus one pixel", cov.Rect)
	}

	tests := []struct {
		x, y int
		want byte
	}{
		{20, 20, 255},
		{10, 10, 255},
		{29, 29, 255},
		{5, 5, 0},
		{40, 20, 0},
		{8, 20, 0},
	}
	for _, tt := range tests {
		if got := cov.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDistanceCoverageMatchesDirectAwayFromEdges(t *testing.T) {
	bounds := XYWH(0, 0, 64, 64)
	s := squareStroke(12, 14, 30, solidBrush())
	df := DistanceCoverage(s, bounds, DefaultRange)
	direct := DirectCoverage(s, bounds, DefaultRange)

	for y := range 64 {
		for x := range 64 {
			near := x >= 10 && x <= 43 && y >= 12 && y <= 45 &&
				!(x >= 14 && x <= 39 && y >= 16 && y <= 41)
			if near {
				continue
			}
			if a, b := df.At(x, y), direct.At(x, y); a != b {
				t.Fatalf("pixel (%d, %d): distance %d, direct %d", x, y, a, b)
			}
		}
	}
}

func TestDirectCoverageIsHard(t *testing.T) {
	b := solidBrush()
	b.Hardness = 0
	cov := DirectCoverage(NewShapeStroke([]Point{{5, 5}, {50, 9}, {20, 40}}, b), XYWH(0, 0, 64, 64), DefaultRange)
	for i, v := range cov.Mask {
		if v != 0 && v != 255 {
			t.Fatalf("mask[%d] = %d, want 0 or 255", i, v)
		}
	}
}

func TestDistanceCoverageSoftEdge(t *testing.T) {
	b := solidBrush()
	b.Hardness = 0
	cov := DistanceCoverage(squareStroke(20, 20, 20, b), XYWH(0, 0, 64, 64), DefaultRange)

	outside := cov.At(19, 30)
	inside := cov.At(20, 30)
	if outside == 0 || outside == 255 {
		t.Errorf("pixel just outside = %d, want partial coverage", outside)
	}
	if inside <= outside {
		t.Errorf("coverage not increasing inward: inside %d, outside %d", inside, outside)
	}
	if cov.At(30, 30) != 255 {
		t.Errorf("center = %d, want 255", cov.At(30, 30))
	}
	// The soft ramp widens the footprint beyond the hard square.
	if cov.Rect.MinX >= 19 {
		t.Errorf("soft coverage rect %v does not extend past the edge", cov.Rect)
	}
}

func TestDistanceCoverageOpacity(t *testing.T) {
	b := solidBrush()
	b.Opacity = 0.5
	cov := DistanceCoverage(squareStroke(10, 10, 20, b), XYWH(0, 0, 64, 64), DefaultRange)
	if got := cov.At(20, 20); got < 127 || got > 128 {
		t.Errorf("half opacity interior = %d, want 127..128", got)
	}
}

func TestDistanceCoverageMultiChannel(t *testing.T) {
	b := solidBrush()
	b.MultiChannel = true
	cov := DistanceCoverage(squareStroke(10, 10, 20, b), XYWH(0, 0, 64, 64), DefaultRange)
	if cov.At(20, 20) != 255 || cov.At(11, 11) != 255 {
		t.Errorf("interior = %d / %d, want 255", cov.At(20, 20), cov.At(11, 11))
	}
	if cov.At(4, 4) != 0 || cov.At(34, 34) != 0 {
		t.Errorf("exterior = %d / %d, want 0", cov.At(4, 4), cov.At(34, 34))
	}
}

func TestCoverageOffCanvas(t *testing.T) {
	s := squareStroke(-100, -100, 20, solidBrush())
	bounds := XYWH(0, 0, 64, 64)
	if cov := DistanceCoverage(s, bounds, DefaultRange); !cov.Empty() {
		t.Errorf("distance coverage rect = %v, want empty", cov.Rect)
	}
	if cov := DirectCoverage(s, bounds, DefaultRange); !cov.Empty() {
		t.Errorf("direct coverage rect = %v, want empty", cov.Rect)
	}
}

func TestCoverageClippedToBounds(t *testing.T) {
	cov := DistanceCoverage(squareStroke(50, 50, 40, solidBrush()), XYWH(0, 0, 64, 64), DefaultRange)
	if cov.Rect.MaxX > 64 || cov.Rect.MaxY > 64 {
		t.Errorf("coverage rect %v exceeds bounds", cov.Rect)
	}
	if cov.At(63, 63) != 255 {
		t.Errorf("corner = %d, want 255", cov.At(63, 63))
	}
}

func TestSegments(t *testing.T) {
	s := squareStroke(10, 10, 20, solidBrush())
	segs := Segments(s, 10, 10)
	if len(segs) != 4 {
		t.Fatalf("len(Segments) = %d, want 4", len(segs))
	}
	if segs[0].AX != 0 || segs[0].AY != 0 || segs[0].BX != 20 || segs[0].BY != 0 {
		t.Errorf("first segment = %+v, want (0,0)-(20,0)", segs[0])
	}
}

func TestSoftwareBackendParallelMatchesSerial(t *testing.T) {
	b := solidBrush()
	b.Hardness = 0.4
	draw := func(workers int) *Pixmap {
		sw := NewSoftwareBackend()
		sw.Workers = workers
		defer sw.Close()
		stack, _ := NewLayerStack(160, 160)
		stack.Background = White
		if _, err := sw.DrawStroke(stack.Active(), squareStroke(12, 12, 120, b)); err != nil {
			t.Fatal(err)
		}
		frame := NewPixmap(160, 160)
		if err := sw.CompositeLayers(stack, frame.Rect(), frame); err != nil {
			t.Fatal(err)
		}
		return frame
	}
	if !draw(1).Equal(draw(4)) {
		t.Error("parallel rasterization differs from the single-threaded result")
	}
}
