package ink

import (
	"log/slog"
	"math"
	"time"
)

// PointerType identifies the input device of a sample.
type PointerType uint8

const (
	Mouse PointerType = iota
	Pen
	Touch
)

// String returns the DOM-style name of the pointer type.
func (p PointerType) String() string {
	switch p {
	case Pen:
		return "pen"
	case Touch:
		return "touch"
	default:
		return "mouse"
	}
}

// Sample is a raw pointer sample already converted to layer-local space.
type Sample struct {
	X, Y     float64
	Pressure float64 // raw device pressure in [0, 1]
	TiltX    float64
	TiltY    float64
	Pointer  PointerType
	Time     time.Duration
}

// CaptureConfig tunes calibration and smoothing.
type CaptureConfig struct {
	// CalibrationSamples is the number of raw pressure samples that
	// establish the pressure floor.
	CalibrationSamples int `yaml:"calibration_samples"`

	// MaxBaseline caps the floor so a heavy first touch cannot swallow
	// most of the pressure range.
	MaxBaseline float64 `yaml:"max_baseline"`

	// MousePressure is used for mouse input and for pen or touch strokes
	// that have reported no pressure so far.
	MousePressure float64 `yaml:"mouse_pressure"`

	// AlphaSlow is the EMA weight of the previous point for tiny moves;
	// AlphaFast applies at FastDistance pixels and beyond.
	AlphaSlow    float64 `yaml:"alpha_slow"`
	AlphaFast    float64 `yaml:"alpha_fast"`
	FastDistance float64 `yaml:"fast_distance"`

	// DotThreshold is the path length below which a stroke of at most
	// two points is a single dot.
	DotThreshold float64 `yaml:"dot_threshold"`
}

// DefaultCaptureConfig returns the default capture tuning.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		CalibrationSamples: 5,
		MaxBaseline:        0.5,
		MousePressure:      0.5,
		AlphaSlow:          0.9,
		AlphaFast:          0.3,
		FastDistance:       8,
		DotThreshold:       2,
	}
}

// endSnapDistance is how far the pen-up sample may trail the smoothed
// line before it is appended verbatim.
const endSnapDistance = 0.5

// Captured is the result of a finished capture.
type Captured struct {
	Points    []StrokePoint
	SingleDot bool
}

// Capture turns raw samples into calibrated, smoothed stroke points.
// Calibration persists across strokes; everything else resets on End or
// Abort. Capture is not safe for concurrent use.
type Capture struct {
	cfg CaptureConfig
	log *slog.Logger

	// Calibration state, shared by all strokes.
	calibSeen int
	calibMin  float64
	baseline  float64

	// In-flight stroke.
	active   bool
	sensed   bool // a positive pressure reading arrived
	points   []StrokePoint
	last     Sample
	lastP    float64
	lastTime time.Duration
}

// NewCapture creates a capture with cfg. Zero fields take defaults.
func NewCapture(cfg CaptureConfig) *Capture {
	d := DefaultCaptureConfig()
	if cfg.CalibrationSamples <= 0 {
		cfg.CalibrationSamples = d.CalibrationSamples
	}
	if cfg.MaxBaseline <= 0 || cfg.MaxBaseline >= 1 {
		cfg.MaxBaseline = d.MaxBaseline
	}
	if cfg.MousePressure <= 0 {
		cfg.MousePressure = d.MousePressure
	}
	if cfg.AlphaSlow <= 0 || cfg.AlphaSlow >= 1 {
		cfg.AlphaSlow = d.AlphaSlow
	}
	if cfg.AlphaFast <= 0 || cfg.AlphaFast > cfg.AlphaSlow {
		cfg.AlphaFast = min(d.AlphaFast, cfg.AlphaSlow)
	}
	if cfg.FastDistance <= 0 {
		cfg.FastDistance = d.FastDistance
	}
	if cfg.DotThreshold <= 0 {
		cfg.DotThreshold = d.DotThreshold
	}
	return &Capture{cfg: cfg, log: Logger(), calibMin: 1}
}

// Active reports whether a stroke is being captured.
func (c *Capture) Active() bool { return c.active }

// Baseline returns the pressure floor currently applied.
func (c *Capture) Baseline() float64 { return c.baseline }

// Recalibrate forgets the pressure floor, e.g. after a device change.
func (c *Capture) Recalibrate() {
	c.calibSeen = 0
	c.calibMin = 1
	c.baseline = 0
}

// Points returns a copy of the points captured so far, for previews.
func (c *Capture) Points() []StrokePoint {
	return append([]StrokePoint(nil), c.points...)
}

// Begin starts a stroke. A second Begin before End or Abort is rejected.
func (c *Capture) Begin(s Sample) error {
	if c.active {
		return ErrStrokeInProgress
	}
	if !finiteSample(s) {
		c.log.Debug("capture: dropping non-finite sample", "x", s.X, "y", s.Y)
		return nil
	}
	c.active = true
	c.sensed = false
	c.points = c.points[:0]
	c.lastTime = s.Time
	c.last = s
	c.lastP = c.pressure(s)
	c.points = append(c.points, StrokePoint{
		X: s.X, Y: s.Y,
		Pressure: c.lastP,
		TiltX:    s.TiltX, TiltY: s.TiltY,
		Time: s.Time,
	})
	return nil
}

// Append adds a sample to the active stroke.
func (c *Capture) Append(s Sample) error {
	if !c.active {
		return ErrNoStroke
	}
	if !finiteSample(s) {
		c.log.Debug("capture: dropping non-finite sample", "x", s.X, "y", s.Y)
		return nil
	}
	s.Time = max(s.Time, c.lastTime)
	c.lastTime = s.Time
	c.last = s

	// pressure may rewrite provisional points, so it runs before prev is read.
	p := c.pressure(s)
	c.lastP = p
	prev := c.points[len(c.points)-1]
	d := math.Hypot(s.X-prev.X, s.Y-prev.Y)
	a := c.alpha(d)
	c.points = append(c.points, StrokePoint{
		X:        a*prev.X + (1-a)*s.X,
		Y:        a*prev.Y + (1-a)*s.Y,
		Pressure: a*prev.Pressure + (1-a)*p,
		TiltX:    a*prev.TiltX + (1-a)*s.TiltX,
		TiltY:    a*prev.TiltY + (1-a)*s.TiltY,
		Time:     s.Time,
	})
	return nil
}

// End finishes the stroke and resets the in-flight state.
func (c *Capture) End() (Captured, error) {
	if !c.active {
		return Captured{}, ErrNoStroke
	}
	pts := c.points
	if n := len(pts); n > 1 {
		tail := pts[n-1]
		if math.Hypot(c.last.X-tail.X, c.last.Y-tail.Y) > endSnapDistance {
			pts = append(pts, StrokePoint{
				X: c.last.X, Y: c.last.Y,
				Pressure: c.lastP,
				TiltX:    c.last.TiltX, TiltY: c.last.TiltY,
				Time: c.last.Time,
			})
		}
	}
	out := Captured{Points: append([]StrokePoint(nil), pts...)}
	out.SingleDot = len(out.Points) <= 2 && pathLength(out.Points) < c.cfg.DotThreshold
	c.reset()
	return out, nil
}

// Abort discards the in-flight stroke. It is a no-op when idle.
func (c *Capture) Abort() {
	c.reset()
}

func (c *Capture) reset() {
	c.active = false
	c.sensed = false
	c.points = c.points[:0]
	c.last = Sample{}
	c.lastP = 0
	c.lastTime = 0
}

// alpha is the EMA weight of the previous point for a hop of d pixels.
func (c *Capture) alpha(d float64) float64 {
	t := math.Min(d/c.cfg.FastDistance, 1)
	return c.cfg.AlphaSlow - (c.cfg.AlphaSlow-c.cfg.AlphaFast)*t
}

// pressure calibrates a raw sample. Mouse samples, and pen or touch
// strokes that have not reported a positive pressure yet, get
// MousePressure. The first positive reading rewrites those provisional
// points to zero pressure, so a stroke ramping up from 0 stays monotonic.
//
// Positive readings feed the calibration window. Once the window is full
// the floor applies to every later sample, including the rest of the
// stroke that filled it.
func (c *Capture) pressure(s Sample) float64 {
	if s.Pointer == Mouse {
		return c.cfg.MousePressure
	}
	raw := s.Pressure
	if math.IsNaN(raw) || raw <= 0 {
		if !c.sensed {
			return c.cfg.MousePressure
		}
		raw = 0
	} else {
		if !c.sensed {
			c.sensed = true
			for i := range c.points {
				c.points[i].Pressure = 0
			}
		}
		raw = clamp01(raw)
	}
	b := c.baseline
	if raw > 0 && c.calibSeen < c.cfg.CalibrationSamples {
		c.calibSeen++
		c.calibMin = math.Min(c.calibMin, raw)
		if c.calibSeen == c.cfg.CalibrationSamples {
			c.baseline = math.Min(c.calibMin, c.cfg.MaxBaseline)
		}
	}
	return clamp01((raw - b) / (1 - b))
}

func finiteSample(s Sample) bool {
	return !math.IsNaN(s.X) && !math.IsNaN(s.Y) && !math.IsInf(s.X, 0) && !math.IsInf(s.Y, 0)
}

func pathLength(pts []StrokePoint) float64 {
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return l
}
