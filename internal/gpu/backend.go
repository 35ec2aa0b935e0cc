//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/internal/jfa"
	"github.com/gogpu/ink/internal/raster"
)

var (
	errOutOfMemory = errors.New("gpu: out of device memory")
	errTooLarge    = errors.New("gpu: stroke window exceeds device limits")
	errUnsupported = errors.New("gpu: brush not supported by this backend")
)

// Stats counts how strokes were rendered since the backend opened.
type Stats struct {
	GPUStrokes      int
	FallbackStrokes int
}

// Backend draws strokes on the GPU and leaves region operations and
// compositing to the embedded software backend. Each stroke uploads its
// window of the layer buffer, renders it on the device and copies the
// result back, so layer buffers stay authoritative.
//
// A stroke the device cannot handle (window too large, allocation
// failure, unsupported brush) is drawn by the software backend instead.
// Submission and readback failures mark the backend lost and surface as
// ink.ErrDeviceLost; the engine then reopens a backend and retries.
type Backend struct {
	*ink.SoftwareBackend

	kind  ink.BackendKind
	dev   *Device
	flood *FloodPass
	tris  *TrianglePass
	log   *slog.Logger
	lost  bool
	stats Stats
}

// NewAdvanced creates the jump-flood backend on dev.
func NewAdvanced(dev *Device, rng float64) (*Backend, error) {
	fp, err := NewFloodPass(dev)
	if err != nil {
		return nil, fmt.Errorf("gpu: flood pipelines: %w: %w", ink.ErrCapabilityUnavailable, err)
	}
	b := newBackend(ink.GPUAdvanced, dev, rng)
	b.flood = fp
	return b, nil
}

// NewBaseline creates the triangle backend on dev. Its software
// fallback rasterizes without distance smoothing to match the GPU
// output.
func NewBaseline(dev *Device, rng float64) (*Backend, error) {
	tp, err := NewTrianglePass(dev)
	if err != nil {
		return nil, fmt.Errorf("gpu: triangle pipelines: %w: %w", ink.ErrCapabilityUnavailable, err)
	}
	b := newBackend(ink.GPUBaseline, dev, rng)
	b.tris = tp
	b.Direct = true
	return b, nil
}

func newBackend(kind ink.BackendKind, dev *Device, rng float64) *Backend {
	sw := ink.NewSoftwareBackend()
	if rng > 0 {
		sw.Range = rng
	}
	return &Backend{SoftwareBackend: sw, kind: kind, dev: dev, log: dev.log}
}

// Kind returns the backend variant.
func (b *Backend) Kind() ink.BackendKind { return b.kind }

// Name returns the variant and adapter name.
func (b *Backend) Name() string {
	return fmt.Sprintf("%s (%s)", b.kind, b.dev.Name())
}

// Stats returns the stroke counters.
func (b *Backend) Stats() Stats { return b.stats }

// SetLogger sets the logger of the backend, its device and its software
// fallback. Nil restores ink.Logger().
func (b *Backend) SetLogger(l *slog.Logger) {
	b.dev.SetLogger(l)
	b.log = b.dev.log
	b.SoftwareBackend.SetLogger(b.log)
}

// DrawStroke renders s into the layer buffer.
func (b *Backend) DrawStroke(l *ink.Layer, s *ink.Stroke) (ink.Rect, error) {
	if s == nil {
		return ink.EmptyRect(), ink.ErrNoStroke
	}
	if b.lost {
		return ink.EmptyRect(), fmt.Errorf("gpu: %s: %w", b.kind, ink.ErrDeviceLost)
	}
	s.Finalize()

	var (
		r   ink.Rect
		err error
	)
	if b.kind == ink.GPUAdvanced {
		r, err = b.drawDistance(l, s)
	} else {
		r, err = b.drawTriangles(l, s)
	}
	switch {
	case err == nil:
		b.stats.GPUStrokes++
		return r, nil
	case errors.Is(err, ink.ErrDeviceLost):
		b.lost = true
		b.log.Error("gpu device lost", "backend", b.kind, "stroke", s.ID, "err", err)
		return ink.EmptyRect(), err
	default:
		b.stats.FallbackStrokes++
		b.log.Debug("gpu stroke fell back to software", "backend", b.kind, "stroke", s.ID, "err", err)
		return b.SoftwareBackend.DrawStroke(l, s)
	}
}

// window returns the stroke footprint clipped to the layer.
func (b *Backend) window(l *ink.Layer, s *ink.Stroke) ink.Rect {
	return s.Footprint(b.Range).Intersect(l.Buffer().Rect())
}

func (b *Backend) drawDistance(l *ink.Layer, s *ink.Stroke) (ink.Rect, error) {
	if s.Brush.MultiChannel {
		return ink.EmptyRect(), errUnsupported
	}
	r := b.window(l, s)
	if r.Empty() {
		return r, nil
	}
	w, h := r.Dx(), r.Dy()
	if !b.flood.fits(w, h) {
		return ink.EmptyRect(), errTooLarge
	}
	win := raster.Window{X: r.MinX, Y: r.MinY, W: w, H: h}
	inside := raster.Contours(flatten(s.Contours()), win)
	segs := jfa.Boundary(ink.Segments(s, float64(r.MinX), float64(r.MinY)), inside, w, h)
	if len(segs) == 0 {
		return ink.EmptyRect(), nil
	}

	buf := l.Buffer()
	pixels := packPixels(func(y int) []byte { return buf.Row(r.MinY+y, r.MinX, r.MaxX) }, w, h)
	job := floodJob{
		w: w, h: h,
		segs:   segs,
		ids:    jfa.Seed(segs, nil, w, h),
		inside: inside,
		pixels: pixels,
		paint:  paintFor(s.Brush, b.Range),
	}
	if err := b.flood.Run(job); err != nil {
		return ink.EmptyRect(), err
	}
	unpackPixels(job.pixels, 4*w, func(y int) []byte { return buf.Row(r.MinY+y, r.MinX, r.MaxX) }, w, h)
	return r, nil
}

func (b *Backend) drawTriangles(l *ink.Layer, s *ink.Stroke) (ink.Rect, error) {
	// Overlapping contours would blend twice without a stencil.
	if len(s.Contours()) > 1 && s.Brush.Opacity < 1 {
		return ink.EmptyRect(), errUnsupported
	}
	r := b.window(l, s)
	if r.Empty() || s.Mesh.Empty() {
		return ink.EmptyRect(), nil
	}
	w, h := r.Dx(), r.Dy()
	if !b.tris.fits(w, h) {
		return ink.EmptyRect(), errTooLarge
	}
	verts, count := packTriangles(s.Mesh.Vertices, s.Mesh.Indices)
	if count == 0 {
		return ink.EmptyRect(), nil
	}

	buf := l.Buffer()
	p := paintFor(s.Brush, b.Range)
	job := triangleJob{
		x: r.MinX, y: r.MinY, w: w, h: h,
		vertices: verts,
		count:    count,
		erase:    p.erase,
		pixels:   packPixels(func(y int) []byte { return buf.Row(r.MinY+y, r.MinX, r.MaxX) }, w, h),
	}
	for i, c := range p.color {
		job.color[i] = c * p.opacity
	}
	if err := b.tris.Draw(job); err != nil {
		return ink.EmptyRect(), err
	}
	unpackPixels(job.pixels, 4*w, func(y int) []byte { return buf.Row(r.MinY+y, r.MinX, r.MaxX) }, w, h)
	return r, nil
}

// Restore checks that the device is usable again. Layer buffers are
// the only pixel store, so nothing needs uploading.
func (b *Backend) Restore(*ink.LayerStack) error {
	if b.dev == nil || b.dev.device == nil {
		return fmt.Errorf("gpu: restore on closed device: %w", ink.ErrDeviceLost)
	}
	b.lost = false
	return nil
}

// Close releases the pipelines and the device.
func (b *Backend) Close() {
	b.SoftwareBackend.Close()
	if b.flood != nil {
		b.flood.Destroy()
		b.flood = nil
	}
	if b.tris != nil {
		b.tris.Destroy()
		b.tris = nil
	}
	if b.dev != nil {
		b.dev.Close()
	}
}

// paintFor converts a brush to shader parameters. The color is
// premultiplied without opacity; erasers paint opaque black.
func paintFor(brush ink.Brush, rng float64) paintParams {
	p := paintParams{
		rng:     float32(rng),
		feather: float32(brush.Feather(rng)),
		opacity: float32(brush.Opacity),
		erase:   brush.Eraser,
	}
	if brush.Eraser {
		p.color = [4]float32{0, 0, 0, 1}
		return p
	}
	a := clampUnit(float32(brush.Color.A))
	p.color = [4]float32{
		clampUnit(float32(brush.Color.R)) * a,
		clampUnit(float32(brush.Color.G)) * a,
		clampUnit(float32(brush.Color.B)) * a,
		a,
	}
	return p
}

func flatten(contours [][]ink.Point) [][]float64 {
	out := make([][]float64, len(contours))
	for i, c := range contours {
		f := make([]float64, 0, 2*len(c))
		for _, p := range c {
			f = append(f, p.X, p.Y)
		}
		out[i] = f
	}
	return out
}
