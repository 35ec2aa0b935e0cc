package ink

import "fmt"

// AddLayer inserts a new layer above the active one and makes it active.
func (e *Engine) AddLayer(name string) (*Layer, error) {
	if err := e.idle(); err != nil {
		return nil, err
	}
	l := e.stack.newLayer(name)
	idx := e.stack.ActiveIndex() + 1
	prev := e.stack.Active().ID
	err := e.execute(&layerCommand{
		e:     e,
		label: "add layer",
		do: func() error {
			e.stack.insert(idx, l)
			return nil
		},
		undo: func() error {
			if _, err := e.stack.remove(e.stack.Index(l.ID)); err != nil {
				return err
			}
			_ = e.stack.SetActive(prev)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// RemoveLayer deletes a layer. The last layer, or the last editable
// one, cannot be removed.
func (e *Engine) RemoveLayer(id string) error {
	if err := e.idle(); err != nil {
		return err
	}
	idx := e.stack.Index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	l := e.stack.At(idx)
	prev := e.stack.Active().ID
	return e.execute(&layerCommand{
		e:     e,
		label: "remove layer",
		do: func() error {
			_, err := e.stack.remove(e.stack.Index(l.ID))
			return err
		},
		undo: func() error {
			e.stack.insert(idx, l)
			_ = e.stack.SetActive(prev)
			return nil
		},
	})
}

// MoveLayer moves a layer to index to, counted bottom first.
func (e *Engine) MoveLayer(id string, to int) error {
	if err := e.idle(); err != nil {
		return err
	}
	from := e.stack.Index(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if to < 0 || to >= e.stack.Len() {
		return fmt.Errorf("%w: index %d", ErrLayerNotFound, to)
	}
	if from == to {
		return nil
	}
	return e.execute(&layerCommand{
		e:     e,
		label: "move layer",
		do:    func() error { return e.stack.move(from, to) },
		undo:  func() error { return e.stack.move(to, from) },
	})
}

// SetActiveLayer makes a visible, unlocked layer the drawing target. It
// is not recorded in history.
func (e *Engine) SetActiveLayer(id string) error {
	if err := e.idle(); err != nil {
		return err
	}
	return e.stack.SetActive(id)
}

// SetLayerVisible shows or hides a layer. Hiding the active layer moves
// the active layer to the nearest editable one.
func (e *Engine) SetLayerVisible(id string, visible bool) error {
	if err := e.idle(); err != nil {
		return err
	}
	l, err := e.stack.Layer(id)
	if err != nil {
		return err
	}
	if l.visible == visible {
		return nil
	}
	label := "hide layer"
	if visible {
		label = "show layer"
	}
	return e.editableCommand(l, label, visible, l.locked)
}

// SetLayerLocked locks or unlocks a layer against drawing.
func (e *Engine) SetLayerLocked(id string, locked bool) error {
	if err := e.idle(); err != nil {
		return err
	}
	l, err := e.stack.Layer(id)
	if err != nil {
		return err
	}
	if l.locked == locked {
		return nil
	}
	label := "unlock layer"
	if locked {
		label = "lock layer"
	}
	return e.editableCommand(l, label, l.visible, locked)
}

func (e *Engine) editableCommand(l *Layer, label string, visible, locked bool) error {
	oldV, oldL := l.visible, l.locked
	prev := e.stack.Active().ID
	return e.execute(&layerCommand{
		e:     e,
		label: label,
		do: func() error {
			return e.stack.setEditable(e.stack.Index(l.ID), visible, locked)
		},
		undo: func() error {
			if err := e.stack.setEditable(e.stack.Index(l.ID), oldV, oldL); err != nil {
				return err
			}
			_ = e.stack.SetActive(prev)
			return nil
		},
	})
}

// SetLayerOpacity sets a layer's opacity, clamped to [0, 1].
func (e *Engine) SetLayerOpacity(id string, opacity float64) error {
	l, err := e.stack.Layer(id)
	if err != nil {
		return err
	}
	old, opacity := l.Opacity, clamp01(opacity)
	return e.execute(&layerCommand{
		e:     e,
		label: "layer opacity",
		do:    func() error { l.Opacity = opacity; return nil },
		undo:  func() error { l.Opacity = old; return nil },
	})
}

// SetLayerBlend sets a layer's blend mode.
func (e *Engine) SetLayerBlend(id string, m BlendMode) error {
	l, err := e.stack.Layer(id)
	if err != nil {
		return err
	}
	if int(m) >= len(blendNames) {
		return fmt.Errorf("ink: invalid blend mode %d", m)
	}
	old := l.Blend
	return e.execute(&layerCommand{
		e:     e,
		label: "layer blend mode",
		do:    func() error { l.Blend = m; return nil },
		undo:  func() error { l.Blend = old; return nil },
	})
}

// RenameLayer changes a layer's name.
func (e *Engine) RenameLayer(id, name string) error {
	l, err := e.stack.Layer(id)
	if err != nil {
		return err
	}
	old := l.Name
	return e.execute(&layerCommand{
		e:     e,
		label: "rename layer",
		do:    func() error { l.Name = name; return nil },
		undo:  func() error { l.Name = old; return nil },
	})
}

// ClearLayer makes every pixel of a layer transparent.
func (e *Engine) ClearLayer(id string) error {
	if err := e.idle(); err != nil {
		return err
	}
	l, err := e.stack.Layer(id)
	if err != nil {
		return err
	}
	if l.locked {
		return fmt.Errorf("%w: %s is locked", ErrNoEditableLayer, l.Name)
	}
	return e.execute(&patchCommand{
		e:     e,
		layer: l,
		label: "clear layer",
		rect:  l.buffer.Rect(),
		apply: func() (Rect, error) { return e.backend.ClearRegion(l, l.buffer.Rect()) },
	})
}

// FillRegion fills r of a layer with a solid color.
func (e *Engine) FillRegion(id string, r Rect, c RGBA) error {
	if err := e.idle(); err != nil {
		return err
	}
	l, err := e.stack.Layer(id)
	if err != nil {
		return err
	}
	if l.locked {
		return fmt.Errorf("%w: %s is locked", ErrNoEditableLayer, l.Name)
	}
	return e.execute(&patchCommand{
		e:     e,
		layer: l,
		label: "fill region",
		rect:  r,
		apply: func() (Rect, error) { return e.backend.FillRegion(l, r, c) },
	})
}
