//go:build nogpu

// Package gpu exposes the GPU stroke backends as ink probes. This build
// was made with the nogpu tag and has none.
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ink"
)

// Option configures the probes returned by Probes.
type Option func()

// WithDeviceProvider is ignored in nogpu builds.
func WithDeviceProvider(gpucontext.DeviceProvider) Option { return func() {} }

// WithRange is ignored in nogpu builds.
func WithRange(float64) Option { return func() {} }

// Available reports whether this build includes the GPU backends.
func Available() bool { return false }

// Probes returns nil; the engine uses the software backend.
func Probes(...Option) []ink.Probe { return nil }
