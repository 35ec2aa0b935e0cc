//go:build !nogpu

// Package gpu exposes the GPU stroke backends as ink probes.
//
// Usage:
//
//	eng, err := ink.NewEngine(w, h, ink.WithProbes(gpu.Probes()...))
//
// Probes open a private Vulkan device unless a shared device is supplied
// with WithDeviceProvider. If no GPU is available the engine logs the
// failures and falls back to the software backend.
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ink"
	gpuimpl "github.com/gogpu/ink/internal/gpu"
)

// Option configures the probes returned by Probes.
type Option func(*config)

type config struct {
	provider gpucontext.DeviceProvider
	rng      float64
}

// WithDeviceProvider makes the probes use the device of an external
// provider (e.g., a gogpu window) instead of opening their own. The
// provider must also expose HalDevice() and HalQueue().
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(c *config) { c.provider = p }
}

// WithRange sets the distance field range in pixels.
func WithRange(rng float64) Option {
	return func(c *config) { c.rng = rng }
}

// Available reports whether this build includes the GPU backends.
func Available() bool { return true }

// Probes returns the advanced and baseline GPU probes, most capable first.
func Probes(opts ...Option) []ink.Probe {
	var c config
	for _, o := range opts {
		o(&c)
	}
	var provider any
	if c.provider != nil {
		provider = c.provider
	}
	return []ink.Probe{
		gpuimpl.NewProbe(ink.GPUAdvanced, provider, c.rng),
		gpuimpl.NewProbe(ink.GPUBaseline, provider, c.rng),
	}
}
