package ink

import "log/slog"

// Compositor merges a LayerStack into a display frame, recompositing only
// what changed since the last call.
type Compositor struct {
	backend Backend
	bus     Bus
	log     *slog.Logger
	frame   *Pixmap
	full    bool
}

// NewCompositor creates a compositor with a frame of the given size. The
// first Composite renders the full frame.
func NewCompositor(b Backend, width, height int, bus Bus) *Compositor {
	if bus == nil {
		bus = NopBus{}
	}
	return &Compositor{
		backend: b,
		bus:     bus,
		log:     Logger(),
		frame:   NewPixmap(width, height),
		full:    true,
	}
}

// SetBackend switches the backend used for compositing and forces a full
// recomposite.
func (c *Compositor) SetBackend(b Backend) {
	c.backend = b
	c.full = true
}

// MarkDirty records that r changed on l.
func (c *Compositor) MarkDirty(l *Layer, r Rect) {
	if r.Empty() {
		return
	}
	l.dirty = l.dirty.Union(r)
	c.bus.Publish(Event{Topic: TopicLayerDirty, Payload: LayerDirty{LayerID: l.ID, Rect: r}})
}

// Invalidate forces the next Composite to redraw the full frame. Call it
// after structural changes: layers added, removed or reordered, or
// visibility, opacity or blend mode changed.
func (c *Compositor) Invalidate() { c.full = true }

// Dirty returns the region the next Composite will redraw.
func (c *Compositor) Dirty(stack *LayerStack) Rect {
	if c.full {
		return c.frame.Rect()
	}
	r := EmptyRect()
	for _, l := range stack.layers {
		r = r.Union(l.dirty)
	}
	return r.Intersect(c.frame.Rect())
}

// Composite recomposites the dirty region and clears every dirty rect.
// With nothing dirty the frame is returned unchanged. The frame is owned
// by the compositor and stays valid until the next call.
func (c *Compositor) Composite(stack *LayerStack) (*Pixmap, error) {
	r := c.Dirty(stack)
	if !r.Empty() {
		if err := c.backend.CompositeLayers(stack, r, c.frame); err != nil {
			return c.frame, err
		}
		c.log.Debug("composite", "x", r.MinX, "y", r.MinY, "w", r.Dx(), "h", r.Dy(), "full", c.full)
	}
	c.full = false
	for _, l := range stack.layers {
		l.dirty = EmptyRect()
	}
	return c.frame, nil
}

// Frame returns the last composited frame.
func (c *Compositor) Frame() *Pixmap { return c.frame }
