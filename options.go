package ink

import "log/slog"

// Option configures an Engine during creation.
//
// Example:
//
//	// CPU rendering, silent
//	e, err := ink.NewEngine(800, 600)
//
//	// GPU backends first, CPU fallback
//	e, err := ink.NewEngine(800, 600, ink.WithProbes(gpu.Probes()...))
type Option func(*options)

type options struct {
	backend    Backend
	probes     []Probe
	bus        Bus
	logger     *slog.Logger
	background RGBA
	capture    CaptureConfig
	history    HistoryConfig
	brush      Brush
	rng        float64
	direct     bool
	workers    int
}

func defaultOptions() options {
	return options{
		bus:     NopBus{},
		capture: DefaultCaptureConfig(),
		history: DefaultHistoryConfig(),
		brush:   DefaultBrush(),
		rng:     DefaultRange,
	}
}

// WithBackend injects an already opened backend. Probes are then only
// used to replace it after device loss.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithProbes sets the backend probes tried at startup. The CPU backend
// is always appended as the last resort.
func WithProbes(p ...Probe) Option {
	return func(o *options) {
		o.probes = append(o.probes, p...)
	}
}

// WithBus connects the engine to an event bus.
func WithBus(b Bus) Option {
	return func(o *options) {
		if b != nil {
			o.bus = b
		}
	}
}

// WithLogger sets the logger for this engine instead of the package
// logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBackground sets the color painted below the bottom layer.
func WithBackground(c RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithCapture sets the calibration and smoothing parameters.
func WithCapture(cfg CaptureConfig) Option {
	return func(o *options) {
		o.capture = cfg
	}
}

// WithHistory sets the undo history bounds.
func WithHistory(cfg HistoryConfig) Option {
	return func(o *options) {
		o.history = cfg
	}
}

// WithBrush sets the initial brush.
func WithBrush(b Brush) Option {
	return func(o *options) {
		o.brush = b
	}
}

// WithRange sets the distance field range in pixels.
func WithRange(r float64) Option {
	return func(o *options) {
		if r > 0 {
			o.rng = r
		}
	}
}

// WithWorkers bounds the goroutines the CPU backend uses per stroke and
// per composite. 1 disables parallelism; 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 0)
	}
}

// WithDirectRaster makes the CPU backend fill stroke triangles without
// distance field smoothing.
func WithDirectRaster(direct bool) Option {
	return func(o *options) {
		o.direct = direct
	}
}
