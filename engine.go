package ink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Engine turns pointer input into strokes on a layer stack and keeps the
// display frame and undo history in sync. It owns one backend, selected
// at creation and replaced only after device loss.
//
// Engine is not safe for concurrent use. Drive it from a single render
// loop goroutine; only ReadRegion completes asynchronously.
type Engine struct {
	log     *slog.Logger
	bus     Bus
	probes  []Probe
	cpu     CPUProbe
	rng     float64
	backend Backend
	stack   *LayerStack
	comp    *Compositor
	history *History
	capture *Capture
	brush   Brush
	subs    []func()

	// Brush and target of the stroke in flight, fixed at PointerDown.
	strokeBrush Brush
	strokeLayer *Layer

	closed  bool
}

// NewEngine creates an engine for a width x height canvas with one empty
// layer.
func NewEngine(width, height int, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	stack, err := NewLayerStack(width, height)
	if err != nil {
		return nil, err
	}
	stack.Background = o.background

	log := o.logger
	if log == nil {
		log = Logger()
	}
	e := &Engine{
		log:     log,
		bus:     o.bus,
		probes:  o.probes,
		cpu:     CPUProbe{Direct: o.direct, Range: o.rng, Workers: o.workers},
		rng:     o.rng,
		stack:   stack,
		brush:   o.brush.normalized(),
		capture: NewCapture(o.capture),
	}
	e.capture.log = log

	e.backend = o.backend
	if e.backend == nil {
		e.backend = selectBackend(log, width, height, e.probes, e.cpu)
	} else {
		propagateLogger(e.backend, log)
	}
	e.comp = NewCompositor(e.backend, width, height, e.bus)
	e.comp.log = log
	e.history = NewHistory(o.history, e.bus)
	e.history.log = log
	e.attach()
	return e, nil
}

// attach subscribes to the events the engine consumes.
func (e *Engine) attach() {
	e.subs = append(e.subs,
		e.bus.Subscribe(TopicToolChanged, func(ev Event) {
			if tc, ok := ev.Payload.(ToolChanged); ok {
				e.SetBrush(tc.Brush)
			}
		}),
		e.bus.Subscribe(TopicLayerSwitchActive, func(ev Event) {
			sw, ok := ev.Payload.(LayerSwitchActive)
			if !ok {
				return
			}
			if err := e.SetActiveLayer(sw.LayerID); err != nil {
				e.log.Warn("cannot switch active layer", "layer", sw.LayerID, "err", err)
			}
		}),
	)
}

// Width returns the canvas width.
func (e *Engine) Width() int { return e.stack.Width() }

// Height returns the canvas height.
func (e *Engine) Height() int { return e.stack.Height() }

// Backend returns the current backend.
func (e *Engine) Backend() Backend { return e.backend }

// Layers returns the layer stack. Change it through Engine methods so the
// changes are recorded in history.
func (e *Engine) Layers() *LayerStack { return e.stack }

// History returns the undo history.
func (e *Engine) History() *History { return e.history }

// Compositor returns the frame compositor.
func (e *Engine) Compositor() *Compositor { return e.comp }

// Brush returns the brush used for new strokes.
func (e *Engine) Brush() Brush { return e.brush }

// SetBrush sets the brush for the next stroke. A stroke in flight keeps
// the brush it started with.
func (e *Engine) SetBrush(b Brush) { e.brush = b.normalized() }

// Capture returns the input capture, e.g. to preview the stroke in flight.
func (e *Engine) Capture() *Capture { return e.capture }

// PointerDown starts a stroke on the active layer. The stroke keeps that
// layer and the current brush until PointerUp or PointerCancel.
func (e *Engine) PointerDown(s Sample) error {
	if e.capture.Active() {
		return ErrStrokeInProgress
	}
	l := e.stack.Active()
	if !l.Editable() {
		return ErrNoEditableLayer
	}
	if err := e.capture.Begin(s); err != nil {
		return err
	}
	if e.capture.Active() {
		e.strokeBrush, e.strokeLayer = e.brush, l
	}
	return nil
}

// PointerMove adds a sample to the stroke in flight.
func (e *Engine) PointerMove(s Sample) error {
	return e.capture.Append(s)
}

// PointerUp finishes the stroke with a final sample and commits it as one
// history entry.
func (e *Engine) PointerUp(s Sample) (*Stroke, error) {
	if err := e.capture.Append(s); err != nil {
		return nil, err
	}
	out, err := e.capture.End()
	if err != nil {
		return nil, err
	}
	brush, l := e.strokeBrush, e.strokeLayer
	e.strokeLayer = nil
	st := NewStroke(out.Points, brush)
	st.SingleDot = out.SingleDot
	if err := e.commit(l, st); err != nil {
		return nil, err
	}
	return st, nil
}

// PointerCancel discards the stroke in flight without touching any layer.
func (e *Engine) PointerCancel() {
	e.capture.Abort()
	e.strokeLayer = nil
}

// Commit draws a stroke on the active layer and records it in history.
// Strokes with a preset Outline skip outline generation. It is rejected
// while a pointer stroke is in flight.
func (e *Engine) Commit(s *Stroke) error {
	if err := e.idle(); err != nil {
		return err
	}
	return e.commit(e.stack.Active(), s)
}

// idle reports ErrStrokeInProgress while a pointer stroke is in flight.
// Operations that change history, layer order or editability call it so
// the stroke lands on the layer it started on.
func (e *Engine) idle() error {
	if e.capture.Active() {
		return ErrStrokeInProgress
	}
	return nil
}

func (e *Engine) commit(l *Layer, s *Stroke) error {
	if s == nil {
		return ErrNoStroke
	}
	if l == nil || e.stack.Index(l.ID) < 0 || !l.Editable() {
		return ErrNoEditableLayer
	}
	s.Finalize()
	if err := e.execute(newStrokeCommand(e, l, s)); err != nil {
		return err
	}
	e.bus.Publish(Event{Topic: TopicStrokeCommitted, Payload: StrokeCommitted{LayerID: l.ID, StrokeID: s.ID}})
	return nil
}

// Undo reverts the last command. It reports false when there is nothing
// to undo.
func (e *Engine) Undo() (bool, error) {
	if err := e.idle(); err != nil {
		return false, err
	}
	var ok bool
	err := e.withRecovery(func() error {
		var err error
		ok, err = e.history.Undo()
		return err
	})
	return ok, err
}

// Redo re-applies the last undone command. It reports false when there is
// nothing to redo.
func (e *Engine) Redo() (bool, error) {
	if err := e.idle(); err != nil {
		return false, err
	}
	var ok bool
	err := e.withRecovery(func() error {
		var err error
		ok, err = e.history.Redo()
		return err
	})
	return ok, err
}

// CanUndo reports whether Undo would revert a command.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would re-apply a command.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// Frame composites the dirty region and returns the display frame. The
// frame is reused by later calls.
func (e *Engine) Frame() (*Pixmap, error) {
	var f *Pixmap
	err := e.withRecovery(func() error {
		var err error
		f, err = e.comp.Composite(e.stack)
		return err
	})
	return f, err
}

// ReadRegion reads a pixel-exact copy of r from a layer. The result
// arrives on the returned channel.
func (e *Engine) ReadRegion(ctx context.Context, layerID string, r Rect) (<-chan Readback, error) {
	l, err := e.stack.Layer(layerID)
	if err != nil {
		return nil, err
	}
	return e.backend.ReadRegion(ctx, l, r), nil
}

// Close releases the backend and event subscriptions.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	for _, cancel := range e.subs {
		cancel()
	}
	e.subs = nil
	e.capture.Abort()
	e.strokeLayer = nil
	e.backend.Close()
}

// execute records cmd in history, recovering once from device loss.
func (e *Engine) execute(cmd Command) error {
	return e.withRecovery(func() error { return e.history.Execute(cmd) })
}

// writePatch pastes a saved region back into a layer.
func (e *Engine) writePatch(l *Layer, p *Pixmap, r Rect) error {
	if r.Empty() {
		return nil
	}
	touched, err := e.backend.WriteRegion(l, p, r.MinX, r.MinY)
	if err != nil {
		return err
	}
	e.comp.MarkDirty(l, touched)
	return nil
}

// withRecovery runs op and, if the device was lost, replaces the backend
// and runs op once more.
func (e *Engine) withRecovery(op func() error) error {
	err := op()
	if !errors.Is(err, ErrDeviceLost) {
		return err
	}
	if rerr := e.recoverDevice(err); rerr != nil {
		return rerr
	}
	return op()
}

// recoverDevice re-runs backend selection and restores every layer from
// its CPU buffer.
func (e *Engine) recoverDevice(cause error) error {
	e.log.Warn("device lost, reselecting backend", "backend", e.backend.Name(), "err", cause)
	e.backend.Close()
	b := selectBackend(e.log, e.Width(), e.Height(), e.probes, e.cpu)
	if err := b.Restore(e.stack); err != nil {
		b.Close()
		return fmt.Errorf("ink: restore layers after device loss: %w", errors.Join(cause, err))
	}
	e.backend = b
	e.comp.SetBackend(b)
	e.log.Info("device recovered", "backend", b.Name(), "kind", b.Kind())
	return nil
}
