package ink

import (
	"errors"
	"testing"
)

func TestLayerStackNeverEmpty(t *testing.T) {
	s, err := NewLayerStack(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || !s.Active().Editable() {
		t.Fatal("new stack should hold one editable layer")
	}
	if _, err := s.remove(0); !errors.Is(err, ErrLastLayer) {
		t.Errorf("remove last = %v, want ErrLastLayer", err)
	}
}

func TestLayerStackActiveFollowsEditability(t *testing.T) {
	s, _ := NewLayerStack(10, 10)
	a := s.Active()
	b := s.newLayer("")
	s.insert(1, b)
	c := s.newLayer("")
	s.insert(2, c)
	if s.Active() != c {
		t.Fatal("inserted layer should become active")
	}

	// Hiding the active layer moves to the nearest editable one, below
	// first.
	if err := s.setEditable(2, false, false); err != nil {
		t.Fatal(err)
	}
	if s.Active() != b {
		t.Errorf("active = %s, want %s", s.Active().Name, b.Name)
	}
	if err := s.setEditable(1, true, true); err != nil {
		t.Fatal(err)
	}
	if s.Active() != a {
		t.Errorf("active = %s, want %s", s.Active().Name, a.Name)
	}

	// The last editable layer cannot be hidden.
	if err := s.setEditable(0, false, false); !errors.Is(err, ErrNoEditableLayer) {
		t.Errorf("hide last editable = %v, want ErrNoEditableLayer", err)
	}
	if !a.Visible() {
		t.Error("rejected change was applied")
	}
	if err := s.SetActive(c.ID); !errors.Is(err, ErrNoEditableLayer) {
		t.Errorf("SetActive(hidden) = %v, want ErrNoEditableLayer", err)
	}
	if _, err := s.remove(0); !errors.Is(err, ErrNoEditableLayer) {
		t.Errorf("remove last editable = %v, want ErrNoEditableLayer", err)
	}
	if err := s.SetActive("nope"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("SetActive(unknown) = %v, want ErrLayerNotFound", err)
	}
}

func TestLayerStackMoveKeepsActive(t *testing.T) {
	s, _ := NewLayerStack(4, 4)
	a := s.Active()
	b := s.newLayer("b")
	s.insert(1, b)
	c := s.newLayer("c")
	s.insert(2, c)
	_ = s.SetActive(a.ID)

	if err := s.move(0, 2); err != nil {
		t.Fatal(err)
	}
	if s.At(0) != b || s.At(1) != c || s.At(2) != a {
		t.Errorf("order = %s %s %s", s.At(0).Name, s.At(1).Name, s.At(2).Name)
	}
	if s.Active() != a {
		t.Error("move lost the active layer")
	}
	if err := s.move(0, 3); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("move out of range = %v", err)
	}
}

func TestEngineLayerCommandsUndo(t *testing.T) {
	e := newTestEngine(t, 8, 8)
	base := e.Layers().Active()

	l, err := e.AddLayer("ink")
	if err != nil {
		t.Fatal(err)
	}
	if e.Layers().Len() != 2 || e.Layers().Active() != l {
		t.Fatal("AddLayer did not add an active layer")
	}
	if err := e.RenameLayer(l.ID, "renamed"); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveLayer(l.ID, 0); err != nil {
		t.Fatal(err)
	}
	if e.Layers().At(0) != l {
		t.Fatal("MoveLayer did not move")
	}
	if err := e.RemoveLayer(base.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveLayer(l.ID); !errors.Is(err, ErrLastLayer) {
		t.Errorf("RemoveLayer(last) = %v, want ErrLastLayer", err)
	}
	if err := e.RemoveLayer("missing"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("RemoveLayer(missing) = %v, want ErrLayerNotFound", err)
	}

	want := []string{"add layer", "rename layer", "move layer", "remove layer"}
	got := e.History().Labels()
	if len(got) != len(want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels = %v, want %v", got, want)
		}
	}

	for range 4 {
		if _, err := e.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	if e.Layers().Len() != 1 || e.Layers().Active() != base {
		t.Error("undo did not restore the original stack")
	}
	if l.Name != "ink" {
		t.Errorf("rename not undone: %q", l.Name)
	}
	for range 4 {
		if _, err := e.Redo(); err != nil {
			t.Fatal(err)
		}
	}
	if e.Layers().Len() != 1 || e.Layers().At(0) != l || l.Name != "renamed" {
		t.Error("redo did not replay the layer commands")
	}
}

func TestEngineLockedLayer(t *testing.T) {
	e := newTestEngine(t, 8, 8)
	base := e.Layers().Active()
	top, _ := e.AddLayer("top")

	if err := e.SetLayerLocked(top.ID, true); err != nil {
		t.Fatal(err)
	}
	if e.Layers().Active() != base {
		t.Error("locking the active layer should move the active layer")
	}
	if err := e.FillRegion(top.ID, XYWH(0, 0, 2, 2), Black); !errors.Is(err, ErrNoEditableLayer) {
		t.Errorf("FillRegion(locked) = %v", err)
	}
	if err := e.SetLayerLocked(base.ID, true); !errors.Is(err, ErrNoEditableLayer) {
		t.Errorf("locking the last editable layer = %v", err)
	}
}

func TestParseBlendMode(t *testing.T) {
	for m := Normal; m <= Add; m++ {
		got, err := ParseBlendMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseBlendMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseBlendMode("dissolve"); err == nil {
		t.Error("ParseBlendMode(dissolve) should fail")
	}
}

func TestEngineLayerFlagGetters(t *testing.T) {
	e := newTestEngine(t, 8, 8)
	base := e.Layers().Active()
	top, _ := e.AddLayer("top")
	if !top.Visible() || top.Locked() {
		t.Fatalf("new layer visible=%v locked=%v", top.Visible(), top.Locked())
	}

	if err := e.SetLayerVisible(top.ID, false); err != nil {
		t.Fatal(err)
	}
	if top.Visible() {
		t.Error("Visible() after hiding = true")
	}
	if err := e.SetLayerLocked(base.ID, true); !errors.Is(err, ErrNoEditableLayer) {
		t.Errorf("locking the last editable layer = %v", err)
	}
	if base.Locked() {
		t.Error("rejected lock was applied")
	}
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if !top.Visible() {
		t.Error("undo did not restore visibility")
	}
	if err := e.SetLayerLocked(top.ID, true); err != nil {
		t.Fatal(err)
	}
	if !top.Locked() || top.Editable() {
		t.Errorf("locked layer: Locked()=%v Editable()=%v", top.Locked(), top.Editable())
	}
}
