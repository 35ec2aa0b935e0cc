package ink

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gogpu/ink/internal/blend"
)

// BlendMode selects how a layer merges into the layers below it.
type BlendMode uint8

const (
	Normal BlendMode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Add
)

var blendNames = [...]string{
	Normal:     "normal",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	Darken:     "darken",
	Lighten:    "lighten",
	ColorDodge: "color-dodge",
	ColorBurn:  "color-burn",
	HardLight:  "hard-light",
	SoftLight:  "soft-light",
	Difference: "difference",
	Exclusion:  "exclusion",
	Add:        "add",
}

// String returns the CSS-style name of the mode.
func (m BlendMode) String() string {
	if int(m) < len(blendNames) {
		return blendNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", m)
}

// ParseBlendMode parses a name returned by BlendMode.String.
func ParseBlendMode(s string) (BlendMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range blendNames {
		if n == s {
			return BlendMode(i), nil
		}
	}
	return Normal, fmt.Errorf("ink: unknown blend mode %q", s)
}

// mode maps the layer blend mode to the pixel blend function.
func (m BlendMode) mode() blend.Mode {
	switch m {
	case Multiply:
		return blend.Multiply
	case Screen:
		return blend.Screen
	case Overlay:
		return blend.Overlay
	case Darken:
		return blend.Darken
	case Lighten:
		return blend.Lighten
	case ColorDodge:
		return blend.ColorDodge
	case ColorBurn:
		return blend.ColorBurn
	case HardLight:
		return blend.HardLight
	case SoftLight:
		return blend.SoftLight
	case Difference:
		return blend.Difference
	case Exclusion:
		return blend.Exclusion
	case Add:
		return blend.Plus
	default:
		return blend.SourceOver
	}
}

// Layer is one canvas-sized pixel buffer in a LayerStack.
type Layer struct {
	ID      string
	Name    string
	Opacity float64
	Blend   BlendMode

	// Visibility and locking decide which layer may be active, so they
	// change only through LayerStack and Engine methods.
	visible bool
	locked  bool

	buffer  *Pixmap
	strokes []*Stroke
	dirty   Rect
}

func newLayer(name string, width, height int) *Layer {
	return &Layer{
		ID:      uuid.NewString(),
		Name:    name,
		Opacity: 1,
		visible: true,
		buffer:  NewPixmap(width, height),
		dirty:   EmptyRect(),
	}
}

// Buffer returns the premultiplied pixels of the layer. Mutate it only
// through a Backend so dirty tracking and GPU copies stay in sync.
func (l *Layer) Buffer() *Pixmap { return l.buffer }

// Strokes returns the strokes committed to the layer, oldest first.
func (l *Layer) Strokes() []*Stroke {
	return append([]*Stroke(nil), l.strokes...)
}

// Dirty returns the region changed since the last composite.
func (l *Layer) Dirty() Rect { return l.dirty }

// Editable reports whether strokes may be drawn on the layer.
func (l *Layer) Editable() bool { return l.visible && !l.locked }

// Visible reports whether the layer is composited.
func (l *Layer) Visible() bool { return l.visible }

// Locked reports whether the layer rejects drawing.
func (l *Layer) Locked() bool { return l.locked }

func (l *Layer) pushStroke(s *Stroke) { l.strokes = append(l.strokes, s) }

func (l *Layer) popStroke(s *Stroke) {
	for i := len(l.strokes) - 1; i >= 0; i-- {
		if l.strokes[i] == s {
			l.strokes = append(l.strokes[:i], l.strokes[i+1:]...)
			return
		}
	}
}

// LayerStack is the bottom-to-top list of layers with one active layer.
// The stack is never empty and the active layer is always visible and
// unlocked. LayerStack is not safe for concurrent use.
type LayerStack struct {
	// Background is painted below the bottom layer in composites.
	Background RGBA

	width, height int
	layers        []*Layer
	active        int
}

// NewLayerStack creates a stack with a single empty layer.
func NewLayerStack(width, height int) (*LayerStack, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s := &LayerStack{width: width, height: height}
	s.layers = []*Layer{newLayer("Layer 1", width, height)}
	return s, nil
}

// Width returns the canvas width.
func (s *LayerStack) Width() int { return s.width }

// Height returns the canvas height.
func (s *LayerStack) Height() int { return s.height }

// Bounds returns the canvas rectangle.
func (s *LayerStack) Bounds() Rect { return Rect{0, 0, s.width, s.height} }

// Len returns the number of layers.
func (s *LayerStack) Len() int { return len(s.layers) }

// At returns the layer at index i, bottom first.
func (s *LayerStack) At(i int) *Layer { return s.layers[i] }

// Layers returns the layers bottom to top.
func (s *LayerStack) Layers() []*Layer { return append([]*Layer(nil), s.layers...) }

// Active returns the layer new strokes are drawn on.
func (s *LayerStack) Active() *Layer { return s.layers[s.active] }

// ActiveIndex returns the index of the active layer.
func (s *LayerStack) ActiveIndex() int { return s.active }

// Index returns the position of the layer with the given ID, or -1.
func (s *LayerStack) Index(id string) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Layer returns the layer with the given ID.
func (s *LayerStack) Layer(id string) (*Layer, error) {
	i := s.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	return s.layers[i], nil
}

// SetActive makes the layer with the given ID active.
func (s *LayerStack) SetActive(id string) error {
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if !s.layers[i].Editable() {
		return fmt.Errorf("%w: %s is hidden or locked", ErrNoEditableLayer, s.layers[i].Name)
	}
	s.active = i
	return nil
}

// newLayer creates a detached layer sized to the stack.
func (s *LayerStack) newLayer(name string) *Layer {
	if name == "" {
		name = fmt.Sprintf("Layer %d", len(s.layers)+1)
	}
	return newLayer(name, s.width, s.height)
}

// insert places l at index i (clamped) and makes it active if editable.
func (s *LayerStack) insert(i int, l *Layer) {
	i = max(0, min(i, len(s.layers)))
	s.layers = append(s.layers, nil)
	copy(s.layers[i+1:], s.layers[i:])
	s.layers[i] = l
	switch {
	case l.Editable():
		s.active = i
	case s.active >= i:
		s.active++
	}
}

// remove detaches the layer at index i. The active layer moves to the
// nearest editable layer.
func (s *LayerStack) remove(i int) (*Layer, error) {
	if i < 0 || i >= len(s.layers) {
		return nil, ErrLayerNotFound
	}
	if len(s.layers) == 1 {
		return nil, ErrLastLayer
	}
	rest := make([]*Layer, 0, len(s.layers)-1)
	rest = append(rest, s.layers[:i]...)
	rest = append(rest, s.layers[i+1:]...)
	active := s.active
	switch {
	case active == i:
		active = nearestEditable(rest, min(i, len(rest)-1))
	case active > i:
		active--
	}
	if active < 0 {
		return nil, ErrNoEditableLayer
	}
	l := s.layers[i]
	s.layers, s.active = rest, active
	return l, nil
}

// move reorders the layer at index from to index to.
func (s *LayerStack) move(from, to int) error {
	if from < 0 || from >= len(s.layers) || to < 0 || to >= len(s.layers) {
		return ErrLayerNotFound
	}
	activeLayer := s.layers[s.active]
	l := s.layers[from]
	s.layers = append(s.layers[:from], s.layers[from+1:]...)
	s.layers = append(s.layers, nil)
	copy(s.layers[to+1:], s.layers[to:])
	s.layers[to] = l
	s.active = s.Index(activeLayer.ID)
	return nil
}

// setEditable updates the visible and locked flags of the layer at i,
// moving the active layer away from it when it stops being editable.
func (s *LayerStack) setEditable(i int, visible, locked bool) error {
	if i < 0 || i >= len(s.layers) {
		return ErrLayerNotFound
	}
	l := s.layers[i]
	oldV, oldL := l.visible, l.locked
	l.visible, l.locked = visible, locked
	if s.layers[s.active].Editable() {
		return nil
	}
	a := nearestEditable(s.layers, s.active)
	if a < 0 {
		l.visible, l.locked = oldV, oldL
		return ErrNoEditableLayer
	}
	s.active = a
	return nil
}

// nearestEditable returns the editable layer closest to i, preferring
// the one below on ties, or -1.
func nearestEditable(layers []*Layer, i int) int {
	for d := 0; d < len(layers); d++ {
		if j := i - d; j >= 0 && j < len(layers) && layers[j].Editable() {
			return j
		}
		if j := i + d; j >= 0 && j < len(layers) && layers[j].Editable() {
			return j
		}
	}
	return -1
}
