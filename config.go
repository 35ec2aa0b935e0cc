package ink

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of engine settings.
//
//	width: 1024
//	height: 768
//	background: "#ffffff"
//	backend: auto        # auto | advanced | baseline | cpu
//	range: 4
//	workers: 0           # 0 = GOMAXPROCS, 1 = single-threaded
//	brush:
//	  size: 12
//	  color: "#1a1a1a"
//	capture:
//	  calibration_samples: 5
//	history:
//	  max_depth: 200
type Config struct {
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	Background string        `yaml:"background"`
	Backend    string        `yaml:"backend"`
	Range      float64       `yaml:"range"`
	Direct     bool          `yaml:"direct"`
	Workers    int           `yaml:"workers"`
	Brush      BrushConfig   `yaml:"brush"`
	Capture    CaptureConfig `yaml:"capture"`
	History    HistoryConfig `yaml:"history"`
}

// BrushConfig is a Brush with its color as a hex string.
type BrushConfig struct {
	Brush `yaml:",inline"`
	Color string `yaml:"color"`
}

// DefaultConfig returns the settings used when a field is absent.
func DefaultConfig() Config {
	return Config{
		Width:      1024,
		Height:     768,
		Background: "#00000000",
		Backend:    "auto",
		Range:      DefaultRange,
		Brush:      BrushConfig{Brush: DefaultBrush(), Color: Black.String()},
		Capture:    DefaultCaptureConfig(),
		History:    DefaultHistoryConfig(),
	}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return Config{}, fmt.Errorf("ink: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("ink: parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height))
	}
	if _, err := Hex(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if _, err := Hex(c.Brush.Color); err != nil {
		errs = append(errs, fmt.Errorf("brush.color: %w", err))
	}
	if _, ok := c.BackendKind(); !ok && !c.autoBackend() {
		errs = append(errs, fmt.Errorf("ink: unknown backend %q", c.Backend))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("ink: negative workers %d", c.Workers))
	}
	if c.Range < 0 {
		errs = append(errs, fmt.Errorf("ink: negative range %v", c.Range))
	}
	if c.Brush.Size <= 0 {
		errs = append(errs, fmt.Errorf("ink: brush size must be positive, got %v", c.Brush.Size))
	}
	return errors.Join(errs...)
}

func (c Config) autoBackend() bool {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	return b == "" || b == "auto"
}

// BackendKind returns the most capable backend kind the config allows.
// It reports false for "auto".
func (c Config) BackendKind() (BackendKind, bool) {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "advanced", GPUAdvanced.String():
		return GPUAdvanced, true
	case "baseline", GPUBaseline.String():
		return GPUBaseline, true
	case "cpu", "software":
		return CPUFallback, true
	}
	return 0, false
}

// Probes filters probes down to the kinds the config allows.
func (c Config) Probes(all ...Probe) []Probe {
	limit, ok := c.BackendKind()
	if !ok {
		return all
	}
	var out []Probe
	for _, p := range all {
		if p.Kind() <= limit {
			out = append(out, p)
		}
	}
	return out
}

// BrushValue returns the configured brush with its parsed color.
func (c Config) BrushValue() Brush {
	b := c.Brush.Brush
	if col, err := Hex(c.Brush.Color); err == nil {
		b.Color = col
	}
	return b
}

// Options converts the config into engine options. Backend probes are
// not included; pass them through Probes.
func (c Config) Options() []Option {
	opts := []Option{
		WithBrush(c.BrushValue()),
		WithCapture(c.Capture),
		WithHistory(c.History),
		WithRange(c.Range),
		WithDirectRaster(c.Direct),
		WithWorkers(c.Workers),
	}
	if bg, err := Hex(c.Background); err == nil {
		opts = append(opts, WithBackground(bg))
	}
	return opts
}
