package ink

import (
	"context"
	"errors"
	"log/slog"
	"sort"
)

// BackendKind identifies one of the fixed backend variants. Higher kinds
// are preferred during selection.
type BackendKind uint8

const (
	// CPUFallback rasterizes on the CPU. It is always available.
	CPUFallback BackendKind = iota

	// GPUBaseline draws the stroke triangles with a render pipeline and no
	// distance smoothing.
	GPUBaseline

	// GPUAdvanced runs the jump-flood distance field on the GPU.
	GPUAdvanced
)

// String returns the backend kind name.
func (k BackendKind) String() string {
	switch k {
	case GPUAdvanced:
		return "gpu-advanced"
	case GPUBaseline:
		return "gpu-baseline"
	default:
		return "cpu"
	}
}

// Readback is the completion value of Backend.ReadRegion.
type Readback struct {
	// Pixels holds a pixel-exact copy of Rect.
	Pixels *Pixmap

	// Rect is the requested region clipped to the layer.
	Rect Rect

	Err error
}

// Backend is the primitive drawing surface used by the engine. All
// coordinates are layer-local. Every drawing call returns the rectangle
// it touched, which is never smaller than the set of changed pixels.
//
// Layer buffers are the authoritative pixel store. GPU backends read their
// results back into them, so device loss never loses layer content.
//
// Backends are not safe for concurrent use.
type Backend interface {
	// Kind returns the variant of this backend.
	Kind() BackendKind

	// Name returns a human readable identifier, e.g. the adapter name.
	Name() string

	// DrawStroke rasterizes a finalized stroke into the layer: source-over
	// for paint, destination-out for erasers.
	DrawStroke(l *Layer, s *Stroke) (Rect, error)

	// FillRegion replaces r with a solid color.
	FillRegion(l *Layer, r Rect, c RGBA) (Rect, error)

	// ClearRegion makes r transparent.
	ClearRegion(l *Layer, r Rect) (Rect, error)

	// WriteRegion copies src verbatim into the layer at (x, y). It re-seeds
	// a layer from a snapshot taken with ReadRegion or Pixmap.Region.
	WriteRegion(l *Layer, src *Pixmap, x, y int) (Rect, error)

	// CompositeLayers recomposites dirty (clipped to the frame) from the
	// stack background and every visible layer, bottom to top.
	CompositeLayers(stack *LayerStack, dirty Rect, frame *Pixmap) error

	// ReadRegion delivers a pixel-exact copy of r on the returned channel,
	// which receives exactly one value.
	ReadRegion(ctx context.Context, l *Layer, r Rect) <-chan Readback

	// Restore uploads every layer after the backend was re-created.
	Restore(stack *LayerStack) error

	// Close releases device resources.
	Close()
}

// Probe opens one backend variant if the platform supports it.
type Probe interface {
	Kind() BackendKind
	Name() string

	// Open creates a backend for a canvas of the given size. Missing
	// capabilities are reported with ErrCapabilityUnavailable.
	Open(width, height int) (Backend, error)
}

// CPUProbe opens a SoftwareBackend. It never fails.
type CPUProbe struct {
	// Direct disables distance field smoothing.
	Direct bool

	// Range is the distance field range; zero means DefaultRange.
	Range float64

	// Workers bounds CPU parallelism; see SoftwareBackend.Workers.
	Workers int
}

func (CPUProbe) Kind() BackendKind { return CPUFallback }
func (CPUProbe) Name() string      { return "software" }

// Open returns a new SoftwareBackend.
func (p CPUProbe) Open(width, height int) (Backend, error) {
	b := NewSoftwareBackend()
	b.Direct = p.Direct
	b.Workers = p.Workers
	if p.Range > 0 {
		b.Range = p.Range
	}
	return b, nil
}

// SelectBackend tries probes from the most to the least capable kind and
// returns the first backend that opens. A CPU backend is used when every
// probe fails. Failures are logged once each as warnings.
func SelectBackend(width, height int, probes ...Probe) Backend {
	return selectBackend(Logger(), width, height, probes, CPUProbe{})
}

func selectBackend(log *slog.Logger, width, height int, probes []Probe, fallback CPUProbe) Backend {
	ordered := make([]Probe, 0, len(probes))
	for _, p := range probes {
		if p != nil {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind() > ordered[j].Kind()
	})
	for _, p := range ordered {
		propagateLogger(p, log)
		b, err := p.Open(width, height)
		if err != nil || b == nil {
			if errors.Is(err, ErrCapabilityUnavailable) {
				log.Warn("backend unavailable", "probe", p.Name(), "kind", p.Kind(), "err", err)
			} else {
				log.Warn("backend failed to open", "probe", p.Name(), "kind", p.Kind(), "err", err)
			}
			continue
		}
		propagateLogger(b, log)
		log.Info("backend selected", "name", b.Name(), "kind", b.Kind())
		return b
	}
	b, _ := fallback.Open(width, height)
	propagateLogger(b, log)
	log.Info("backend selected", "name", b.Name(), "kind", b.Kind())
	return b
}
