package ink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/ink/internal/blend"
	"github.com/gogpu/ink/internal/parallel"
)

// compositeBand is the smallest row band composited on its own worker.
const compositeBand = 32

// SoftwareBackend is the CPU fallback. It runs the same jump-flood
// distance field as the GPU path, or direct triangle coverage when
// Direct is set.
type SoftwareBackend struct {
	// Range is the distance field range in pixels.
	Range float64

	// Direct skips the distance field and fills the triangulated
	// outline with hard edges.
	Direct bool

	// Workers bounds the goroutines used for distance fields and
	// compositing: 0 means GOMAXPROCS, 1 runs everything inline.
	Workers int

	log  *slog.Logger
	pool *parallel.WorkerPool
}

// NewSoftwareBackend creates a CPU backend with the default range.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{Range: DefaultRange, log: Logger()}
}

// SetLogger sets the logger used by the backend.
func (b *SoftwareBackend) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	b.log = l
}

// workers returns the pool, starting it on first use. It is nil when
// Workers is 1.
func (b *SoftwareBackend) workers() *parallel.WorkerPool {
	if b.pool == nil && b.Workers != 1 {
		b.pool = parallel.NewWorkerPool(b.Workers)
	}
	return b.pool
}

func (b *SoftwareBackend) Kind() BackendKind { return CPUFallback }
func (b *SoftwareBackend) Name() string      { return "software" }

// Rasterize returns the coverage of s over a canvas of the given bounds.
func (b *SoftwareBackend) Rasterize(s *Stroke, bounds Rect) Coverage {
	rng := b.Range
	if rng <= 0 {
		rng = DefaultRange
	}
	if b.Direct {
		return DirectCoverage(s, bounds, rng)
	}
	return distanceCoverage(s, bounds, rng, b.workers())
}

// DrawStroke rasterizes s into the layer buffer.
func (b *SoftwareBackend) DrawStroke(l *Layer, s *Stroke) (Rect, error) {
	if s == nil {
		return EmptyRect(), ErrNoStroke
	}
	s.Finalize()
	cov := b.Rasterize(s, l.buffer.Rect())
	if cov.Empty() {
		b.log.Debug("stroke produced no coverage", "stroke", s.ID)
		return EmptyRect(), nil
	}
	PaintCoverage(l.buffer, cov, s.Brush)
	return cov.Rect, nil
}

// PaintCoverage blends the brush color into dst under cov: source-over
// for paint, destination-out for erasers. Pixels with zero coverage are
// left untouched.
func PaintCoverage(dst *Pixmap, cov Coverage, brush Brush) {
	mode, color := blend.SourceOver, brush.Color.Premul(1)
	if brush.Eraser {
		mode, color = blend.DestinationOut, [4]byte{0, 0, 0, 255}
	}
	r := cov.Rect.Intersect(dst.Rect())
	w := cov.Rect.Dx()
	for y := r.MinY; y < r.MaxY; y++ {
		o := (y-cov.Rect.MinY)*w + (r.MinX - cov.Rect.MinX)
		blend.Coverage(dst.Row(y, r.MinX, r.MaxX), cov.Mask[o:o+r.Dx()], color, mode)
	}
}

// FillRegion replaces r with c.
func (b *SoftwareBackend) FillRegion(l *Layer, r Rect, c RGBA) (Rect, error) {
	r = r.Intersect(l.buffer.Rect())
	l.buffer.Fill(r, c.Premul(1))
	return r, nil
}

// ClearRegion makes r transparent.
func (b *SoftwareBackend) ClearRegion(l *Layer, r Rect) (Rect, error) {
	r = r.Intersect(l.buffer.Rect())
	l.buffer.Fill(r, [4]uint8{})
	return r, nil
}

// WriteRegion pastes src into the layer at (x, y).
func (b *SoftwareBackend) WriteRegion(l *Layer, src *Pixmap, x, y int) (Rect, error) {
	r := XYWH(x, y, src.Width(), src.Height()).Intersect(l.buffer.Rect())
	l.buffer.Paste(src, x, y)
	return r, nil
}

// CompositeLayers rebuilds dirty in frame from the background and every
// visible layer.
func (b *SoftwareBackend) CompositeLayers(stack *LayerStack, dirty Rect, frame *Pixmap) error {
	if frame.Width() != stack.Width() || frame.Height() != stack.Height() {
		return fmt.Errorf("ink: frame is %dx%d, canvas is %dx%d",
			frame.Width(), frame.Height(), stack.Width(), stack.Height())
	}
	compositeRows(stack, dirty.Intersect(frame.Rect()), frame, b.workers())
	return nil
}

// CompositeRows blends r of every visible layer over the background into
// frame, row by row.
func CompositeRows(stack *LayerStack, r Rect, frame *Pixmap) {
	compositeRows(stack, r, frame, nil)
}

func compositeRows(stack *LayerStack, r Rect, frame *Pixmap, pool *parallel.WorkerPool) {
	if r.Empty() {
		return
	}
	bg := stack.Background.Premul(1)
	type src struct {
		buf     *Pixmap
		mode    blend.Mode
		opacity byte
	}
	srcs := make([]src, 0, stack.Len())
	for _, l := range stack.layers {
		if !l.visible {
			continue
		}
		op := blend.FromFloat(l.Opacity)
		if op == 0 {
			continue
		}
		srcs = append(srcs, src{l.buffer, l.Blend.mode(), op})
	}
	pool.Bands(r.Dy(), compositeBand, func(lo, hi int) {
		for y := r.MinY + lo; y < r.MinY+hi; y++ {
			row := frame.Row(y, r.MinX, r.MaxX)
			blend.Fill(row, bg)
			for _, s := range srcs {
				blend.Row(row, s.buf.Row(y, r.MinX, r.MaxX), s.mode, s.opacity)
			}
		}
	})
}

// ReadRegion snapshots r and delivers it on the returned channel.
func (b *SoftwareBackend) ReadRegion(ctx context.Context, l *Layer, r Rect) <-chan Readback {
	ch := make(chan Readback, 1)
	if err := ctx.Err(); err != nil {
		ch <- Readback{Rect: r, Err: err}
		return ch
	}
	r = r.Intersect(l.buffer.Rect())
	ch <- Readback{Pixels: l.buffer.Region(r), Rect: r}
	return ch
}

// Restore is a no-op: layer buffers are the only pixel store.
func (b *SoftwareBackend) Restore(*LayerStack) error { return nil }

// Close stops the worker pool. The backend stays usable and restarts
// the pool on demand.
func (b *SoftwareBackend) Close() {
	b.pool.Close()
	b.pool = nil
}
