package ink

// patchCommand applies a pixel operation to one layer region and keeps
// the region before and after, so undo and redo are exact pastes.
type patchCommand struct {
	e      *Engine
	layer  *Layer
	label  string
	rect   Rect
	before *Pixmap
	after  *Pixmap
	apply  func() (Rect, error)
}

func (c *patchCommand) Label() string { return c.label }

// Do runs the operation the first time and pastes the result afterwards.
func (c *patchCommand) Do() error {
	if c.after != nil {
		return c.e.writePatch(c.layer, c.after, c.rect)
	}
	c.rect = c.rect.Intersect(c.layer.buffer.Rect())
	c.before = c.layer.buffer.Region(c.rect)
	touched, err := c.apply()
	if err != nil {
		return err
	}
	if !c.rect.Contains(touched) {
		c.e.log.Warn("draw touched pixels outside its footprint", "op", c.label,
			"footprint", c.rect, "touched", touched)
	}
	c.e.comp.MarkDirty(c.layer, touched)
	c.after = c.layer.buffer.Region(c.rect)
	c.apply = nil
	return nil
}

// Undo pastes the saved region back.
func (c *patchCommand) Undo() error {
	return c.e.writePatch(c.layer, c.before, c.rect)
}

// Size returns the bytes held by both snapshots.
func (c *patchCommand) Size() int {
	n := 0
	if c.before != nil {
		n += len(c.before.Data())
	}
	if c.after != nil {
		n += len(c.after.Data())
	}
	return n
}

// StrokeCommand commits one stroke to a layer.
type StrokeCommand struct {
	patchCommand
	stroke *Stroke
}

func newStrokeCommand(e *Engine, l *Layer, s *Stroke) *StrokeCommand {
	label := "stroke"
	if s.Brush.Eraser {
		label = "erase"
	}
	return &StrokeCommand{
		patchCommand: patchCommand{
			e:     e,
			layer: l,
			label: label,
			rect:  s.Footprint(e.rng),
			apply: func() (Rect, error) { return e.backend.DrawStroke(l, s) },
		},
		stroke: s,
	}
}

// Stroke returns the committed stroke.
func (c *StrokeCommand) Stroke() *Stroke { return c.stroke }

// Layer returns the layer the stroke was committed to.
func (c *StrokeCommand) Layer() *Layer { return c.layer }

func (c *StrokeCommand) Do() error {
	if err := c.patchCommand.Do(); err != nil {
		return err
	}
	c.layer.pushStroke(c.stroke)
	return nil
}

func (c *StrokeCommand) Undo() error {
	if err := c.patchCommand.Undo(); err != nil {
		return err
	}
	c.layer.popStroke(c.stroke)
	return nil
}

// layerCommand is a structural or property change of the layer stack.
// Both directions force a full recomposite.
type layerCommand struct {
	e     *Engine
	label string
	do    func() error
	undo  func() error
}

func (c *layerCommand) Label() string { return c.label }

func (c *layerCommand) Do() error {
	if err := c.do(); err != nil {
		return err
	}
	c.e.comp.Invalidate()
	return nil
}

func (c *layerCommand) Undo() error {
	if err := c.undo(); err != nil {
		return err
	}
	c.e.comp.Invalidate()
	return nil
}
