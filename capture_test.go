package ink

import (
	"errors"
	"math"
	"testing"
	"time"
)

func penSample(x, y, p float64, ms int) Sample {
	return Sample{X: x, Y: y, Pressure: p, Pointer: Pen, Time: time.Duration(ms) * time.Millisecond}
}

func TestCaptureLifecycleErrors(t *testing.T) {
	c := NewCapture(CaptureConfig{})

	if err := c.Append(penSample(0, 0, 0.5, 0)); !errors.Is(err, ErrNoStroke) {
		t.Errorf("Append without Begin = %v, want ErrNoStroke", err)
	}
	if _, err := c.End(); !errors.Is(err, ErrNoStroke) {
		t.Errorf("End without Begin = %v, want ErrNoStroke", err)
	}
	if err := c.Begin(penSample(0, 0, 0.5, 0)); err != nil {
		t.Fatalf("Begin() = %v", err)
	}
	if err := c.Begin(penSample(1, 1, 0.5, 1)); !errors.Is(err, ErrStrokeInProgress) {
		t.Errorf("second Begin = %v, want ErrStrokeInProgress", err)
	}
	if _, err := c.End(); err != nil {
		t.Fatalf("End() = %v", err)
	}
	if c.Active() {
		t.Error("capture still active after End")
	}
}

func TestCaptureAbortDiscards(t *testing.T) {
	c := NewCapture(CaptureConfig{})
	_ = c.Begin(penSample(0, 0, 0.5, 0))
	_ = c.Append(penSample(10, 0, 0.5, 1))
	c.Abort()

	if c.Active() || len(c.Points()) != 0 {
		t.Fatal("Abort left state behind")
	}
	if _, err := c.End(); !errors.Is(err, ErrNoStroke) {
		t.Errorf("End after Abort = %v, want ErrNoStroke", err)
	}
	// Abort while idle is a no-op.
	c.Abort()
}

func TestCaptureMousePressure(t *testing.T) {
	c := NewCapture(CaptureConfig{MousePressure: 0.7})
	_ = c.Begin(Sample{X: 0, Y: 0, Pressure: 1, Pointer: Mouse})
	_ = c.Append(Sample{X: 20, Y: 0, Pressure: 0.1, Pointer: Mouse})
	out, _ := c.End()
	for i, p := range out.Points {
		if math.Abs(p.Pressure-0.7) > 1e-9 {
			t.Errorf("point %d pressure = %v, want 0.7", i, p.Pressure)
		}
	}

	// Pens that report zero pressure behave like a mouse.
	_ = c.Begin(penSample(0, 0, 0, 0))
	out, _ = c.End()
	if out.Points[0].Pressure != 0.7 {
		t.Errorf("zero-pressure pen = %v, want 0.7", out.Points[0].Pressure)
	}
}

func TestCaptureCalibration(t *testing.T) {
	c := NewCapture(CaptureConfig{CalibrationSamples: 3})

	// Samples that fill the window pass through raw.
	_ = c.Begin(penSample(0, 0, 0.3, 0))
	_ = c.Append(penSample(0, 0, 0.2, 1))
	_ = c.Append(penSample(0, 0, 0.4, 2))
	first, _ := c.End()
	if first.Points[0].Pressure != 0.3 {
		t.Errorf("first sample pressure = %v, want raw 0.3", first.Points[0].Pressure)
	}
	if b := c.Baseline(); math.Abs(b-0.2) > 1e-9 {
		t.Fatalf("Baseline = %v, want 0.2", b)
	}

	// Later strokes remap (raw - b) / (1 - b).
	_ = c.Begin(penSample(0, 0, 0.6, 10))
	second, _ := c.End()
	if want := (0.6 - 0.2) / 0.8; math.Abs(second.Points[0].Pressure-want) > 1e-9 {
		t.Errorf("calibrated pressure = %v, want %v", second.Points[0].Pressure, want)
	}

	// Samples below the floor clamp to zero.
	_ = c.Begin(penSample(0, 0, 0.1, 20))
	third, _ := c.End()
	if third.Points[0].Pressure != 0 {
		t.Errorf("below-floor pressure = %v, want 0", third.Points[0].Pressure)
	}

	c.Recalibrate()
	if c.Baseline() != 0 {
		t.Error("Recalibrate did not reset the baseline")
	}
}

func TestCaptureBaselineCap(t *testing.T) {
	c := NewCapture(CaptureConfig{CalibrationSamples: 2})
	_ = c.Begin(penSample(0, 0, 0.9, 0))
	_ = c.Append(penSample(0, 0, 0.95, 1))
	_, _ = c.End()
	if b := c.Baseline(); b != DefaultCaptureConfig().MaxBaseline {
		t.Errorf("Baseline = %v, want cap %v", b, DefaultCaptureConfig().MaxBaseline)
	}
}

func TestCaptureAdaptiveSmoothing(t *testing.T) {
	cfg := DefaultCaptureConfig()
	c := NewCapture(cfg)

	// A short hop lags heavily.
	_ = c.Begin(penSample(0, 0, 0.5, 0))
	_ = c.Append(penSample(1, 0, 0.5, 1))
	slow := c.Points()[1].X

	c.Abort()

	// A long hop follows closely.
	_ = c.Begin(penSample(0, 0, 0.5, 0))
	_ = c.Append(penSample(20, 0, 0.5, 1))
	fast := c.Points()[1].X / 20

	wantSlow := 1 - (cfg.AlphaSlow - (cfg.AlphaSlow-cfg.AlphaFast)/cfg.FastDistance)
	if math.Abs(slow-wantSlow) > 1e-9 {
		t.Errorf("slow hop moved %v, want %v", slow, wantSlow)
	}
	if math.Abs(fast-(1-cfg.AlphaFast)) > 1e-9 {
		t.Errorf("fast hop moved %v of the distance, want %v", fast, 1-cfg.AlphaFast)
	}
}

func TestCaptureEndReachesPenUp(t *testing.T) {
	c := NewCapture(CaptureConfig{})
	_ = c.Begin(penSample(0, 0, 0.5, 0))
	for i := 1; i <= 10; i++ {
		_ = c.Append(penSample(float64(i)*3, 0, 0.5, i))
	}
	out, err := c.End()
	if err != nil {
		t.Fatalf("End() = %v", err)
	}
	last := out.Points[len(out.Points)-1]
	if last.X != 30 || last.Y != 0 {
		t.Errorf("last point = (%v, %v), want pen-up (30, 0)", last.X, last.Y)
	}
	if out.SingleDot {
		t.Error("long stroke flagged as single dot")
	}
	for i := 1; i < len(out.Points); i++ {
		if out.Points[i].Time < out.Points[i-1].Time {
			t.Fatalf("timestamps not monotonic at %d", i)
		}
	}
}

func TestCaptureSingleDot(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		want    bool
	}{
		{"tap", []Sample{penSample(5, 5, 0.5, 0)}, true},
		{"tiny wiggle", []Sample{penSample(5, 5, 0.5, 0), penSample(5.5, 5, 0.5, 1)}, true},
		{"short line", []Sample{penSample(5, 5, 0.5, 0), penSample(15, 5, 0.5, 1)}, false},
		{"three close points", []Sample{penSample(5, 5, 0.5, 0), penSample(5.2, 5, 0.5, 1), penSample(5.4, 5, 0.5, 2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCapture(CaptureConfig{})
			_ = c.Begin(tt.samples[0])
			for _, s := range tt.samples[1:] {
				_ = c.Append(s)
			}
			out, _ := c.End()
			if out.SingleDot != tt.want {
				t.Errorf("SingleDot = %v, want %v (points %d)", out.SingleDot, tt.want, len(out.Points))
			}
		})
	}
}

func TestCaptureDropsNonFinite(t *testing.T) {
	c := NewCapture(CaptureConfig{})
	_ = c.Begin(penSample(0, 0, 0.5, 0))
	_ = c.Append(Sample{X: math.NaN(), Y: 0, Pressure: 0.5, Pointer: Pen})
	_ = c.Append(Sample{X: math.Inf(1), Y: 0, Pressure: 0.5, Pointer: Pen})
	if n := len(c.Points()); n != 1 {
		t.Errorf("points = %d, want 1", n)
	}
}

func TestCapturePenRampFromZero(t *testing.T) {
	c := NewCapture(CaptureConfig{})
	_ = c.Begin(penSample(0, 0, 0, 0))
	_ = c.Append(penSample(20, 0, 0, 1))
	if p := c.Points()[1].Pressure; p != DefaultCaptureConfig().MousePressure {
		t.Fatalf("unsensed pen pressure = %v, want MousePressure", p)
	}
	_ = c.Append(penSample(40, 0, 0.3, 2))
	_ = c.Append(penSample(60, 0, 0.6, 3))

	pts := c.Points()
	if pts[0].Pressure != 0 || pts[1].Pressure != 0 {
		t.Errorf("lead-in pressures = %v, %v, want 0 once the pen reports pressure", pts[0].Pressure, pts[1].Pressure)
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Pressure < pts[i-1].Pressure {
			t.Errorf("pressure drops at %d: %v -> %v", i, pts[i-1].Pressure, pts[i].Pressure)
		}
	}

	// Lifting to zero after sensing is a real zero, not MousePressure.
	_ = c.Append(penSample(80, 0, 0, 4))
	pts = c.Points()
	if last, prev := pts[len(pts)-1].Pressure, pts[len(pts)-2].Pressure; last >= prev {
		t.Errorf("pressure after lift = %v, want below %v", last, prev)
	}
	out, _ := c.End()
	for i, p := range out.Points {
		if p.Pressure == DefaultCaptureConfig().MousePressure {
			t.Errorf("point %d kept provisional pressure %v", i, p.Pressure)
		}
	}

	// A pen that never reports pressure stays at MousePressure throughout.
	_ = c.Begin(penSample(0, 0, 0, 10))
	for i := 1; i < 4; i++ {
		_ = c.Append(penSample(float64(i)*20, 0, 0, 10+i))
	}
	out, _ = c.End()
	for i, p := range out.Points {
		if p.Pressure != DefaultCaptureConfig().MousePressure {
			t.Errorf("zero-pressure pen point %d = %v, want MousePressure", i, p.Pressure)
		}
	}
}

func TestCaptureCalibratesWithinFirstStroke(t *testing.T) {
	cfg := DefaultCaptureConfig()
	c := NewCapture(CaptureConfig{CalibrationSamples: 5})

	_ = c.Begin(penSample(0, 0, 0.2, 0))
	for i := 1; i < 5; i++ {
		_ = c.Append(penSample(float64(i)*20, 0, 0.2, i))
	}
	if b := c.Baseline(); math.Abs(b-0.2) > 1e-9 {
		t.Fatalf("Baseline after window = %v, want 0.2", b)
	}
	for i, p := range c.Points() {
		if math.Abs(p.Pressure-0.2) > 1e-9 {
			t.Errorf("window sample %d pressure = %v, want raw 0.2", i, p.Pressure)
		}
	}

	// Sample 6 already sits on the floor; only smoothing carries the
	// previous pressure into it.
	_ = c.Append(penSample(100, 0, 0.2, 5))
	if got, want := c.Points()[5].Pressure, cfg.AlphaFast*0.2; math.Abs(got-want) > 1e-9 {
		t.Errorf("sample 6 pressure = %v, want %v", got, want)
	}
	for i := 6; i < 10; i++ {
		_ = c.Append(penSample(float64(i)*20, 0, 0.2, i))
	}
	out, _ := c.End()
	if last := out.Points[len(out.Points)-1].Pressure; last > 0.01 {
		t.Errorf("last pressure = %v, want the floor to have been applied", last)
	}

	// Recalibrating mid-stroke passes raw values through again until the
	// window refills.
	_ = c.Begin(penSample(0, 0, 0.2, 20))
	c.Recalibrate()
	_ = c.Append(penSample(20, 0, 0.6, 21))
	if got, want := c.Points()[1].Pressure, (1-cfg.AlphaFast)*0.6; math.Abs(got-want) > 1e-9 {
		t.Errorf("pressure after Recalibrate = %v, want %v", got, want)
	}
}
