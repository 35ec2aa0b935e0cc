//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/ink"
)

// Probe opens one GPU backend variant. A nil provider opens a private
// Vulkan device on every Open.
type Probe struct {
	kind     ink.BackendKind
	provider any
	rng      float64
	log      *slog.Logger
}

// NewProbe returns a probe for kind, which must be ink.GPUAdvanced or
// ink.GPUBaseline. provider, when non-nil, supplies a shared device.
func NewProbe(kind ink.BackendKind, provider any, rng float64) *Probe {
	if rng <= 0 {
		rng = ink.DefaultRange
	}
	return &Probe{kind: kind, provider: provider, rng: rng, log: ink.Logger()}
}

// SetLogger sets the logger handed to the devices and backends this
// probe opens. Nil restores ink.Logger().
func (p *Probe) SetLogger(l *slog.Logger) {
	if l == nil {
		l = ink.Logger()
	}
	p.log = l
}

// Kind returns the variant the probe opens.
func (p *Probe) Kind() ink.BackendKind { return p.kind }

// Name returns the variant name.
func (p *Probe) Name() string { return p.kind.String() }

// Open creates the backend for a width x height canvas.
func (p *Probe) Open(width, height int) (ink.Backend, error) {
	if p.kind != ink.GPUAdvanced && p.kind != ink.GPUBaseline {
		return nil, fmt.Errorf("gpu: no %s variant: %w", p.kind, ink.ErrCapabilityUnavailable)
	}
	var (
		dev *Device
		err error
	)
	if p.provider != nil {
		dev, err = SharedDevice(p.provider)
	} else {
		dev, err = OpenDevice(p.log)
	}
	if err != nil {
		return nil, err
	}
	dev.SetLogger(p.log)
	if width > int(dev.maxTextureDim) || height > int(dev.maxTextureDim) {
		dev.Close()
		return nil, fmt.Errorf("gpu: canvas %dx%d exceeds max texture size %d: %w",
			width, height, dev.maxTextureDim, ink.ErrCapabilityUnavailable)
	}

	var b *Backend
	if p.kind == ink.GPUAdvanced {
		b, err = NewAdvanced(dev, p.rng)
	} else {
		b, err = NewBaseline(dev, p.rng)
	}
	if err != nil {
		dev.Close()
		return nil, err
	}
	b.SetLogger(p.log)
	p.log.Debug("gpu backend opened", "kind", p.kind, "adapter", dev.Name(), "width", width, "height", height)
	return b, nil
}
