package ink

import (
	"errors"
	"testing"
)

// counterCommand adds delta to a shared value.
type counterCommand struct {
	v     *int
	delta int
	size  int
	fail  bool
}

func (c *counterCommand) Do() error {
	if c.fail {
		return errors.New("boom")
	}
	*c.v += c.delta
	return nil
}

func (c *counterCommand) Undo() error {
	*c.v -= c.delta
	return nil
}

func (c *counterCommand) Label() string { return "add" }
func (c *counterCommand) Size() int     { return c.size }

func TestHistoryCursor(t *testing.T) {
	v := 0
	h := NewHistory(HistoryConfig{}, nil)
	for i := 1; i <= 3; i++ {
		if err := h.Execute(&counterCommand{v: &v, delta: i}); err != nil {
			t.Fatal(err)
		}
	}
	if v != 6 || h.Pos() != 3 || h.Len() != 3 {
		t.Fatalf("v=%d pos=%d len=%d", v, h.Pos(), h.Len())
	}

	_, _ = h.Undo()
	_, _ = h.Undo()
	if v != 1 || !h.CanUndo() || !h.CanRedo() {
		t.Fatalf("after two undos v=%d", v)
	}

	// Executing truncates the redo tail.
	_ = h.Execute(&counterCommand{v: &v, delta: 10})
	if v != 11 || h.Len() != 2 || h.CanRedo() {
		t.Fatalf("after execute v=%d len=%d canRedo=%v", v, h.Len(), h.CanRedo())
	}

	for range 5 {
		_, _ = h.Undo()
	}
	if v != 0 || h.Pos() != 0 {
		t.Fatalf("undo past start: v=%d pos=%d", v, h.Pos())
	}
	for range 5 {
		_, _ = h.Redo()
	}
	if v != 11 || h.Pos() != 2 {
		t.Fatalf("redo past end: v=%d pos=%d", v, h.Pos())
	}
}

func TestHistoryFailedDo(t *testing.T) {
	v := 0
	h := NewHistory(HistoryConfig{}, nil)
	_ = h.Execute(&counterCommand{v: &v, delta: 1})
	err := h.Execute(&counterCommand{v: &v, delta: 5, fail: true})
	if err == nil {
		t.Fatal("Execute should report the Do error")
	}
	if h.Len() != 1 || h.Pos() != 1 || v != 1 {
		t.Errorf("failed command changed history: len=%d pos=%d v=%d", h.Len(), h.Pos(), v)
	}
}

func TestHistoryCaps(t *testing.T) {
	v := 0
	h := NewHistory(HistoryConfig{MaxDepth: 3, MaxBytes: 1000}, nil)
	for range 5 {
		_ = h.Execute(&counterCommand{v: &v, delta: 1, size: 100})
	}
	if h.Len() != 3 || h.Pos() != 3 || h.Bytes() != 300 {
		t.Errorf("depth cap: len=%d pos=%d bytes=%d", h.Len(), h.Pos(), h.Bytes())
	}

	_ = h.Execute(&counterCommand{v: &v, delta: 1, size: 900})
	if h.Len() != 1 || h.Bytes() != 900 {
		t.Errorf("byte cap: len=%d bytes=%d", h.Len(), h.Bytes())
	}

	// A single oversized command is still kept.
	_ = h.Execute(&counterCommand{v: &v, delta: 1, size: 5000})
	if h.Len() != 1 || !h.CanUndo() {
		t.Errorf("oversized command dropped: len=%d", h.Len())
	}

	h.Clear()
	if h.Len() != 0 || h.CanUndo() || h.Bytes() != 0 {
		t.Error("Clear left commands behind")
	}
}

func TestHistoryPublishesChanges(t *testing.T) {
	bus := NewLocalBus()
	var got []HistoryChanged
	bus.Subscribe(TopicHistoryChanged, func(ev Event) {
		got = append(got, ev.Payload.(HistoryChanged))
	})

	v := 0
	h := NewHistory(HistoryConfig{}, bus)
	_ = h.Execute(&counterCommand{v: &v, delta: 1})
	_, _ = h.Undo()
	_, _ = h.Redo()

	want := []HistoryChanged{{true, false}, {false, true}, {true, false}}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStrokeCommandSize(t *testing.T) {
	e := newTestEngine(t, 100, 100)
	s := NewShapeStroke(square(10, 10, 20), solidBrush())
	if err := e.Commit(s); err != nil {
		t.Fatal(err)
	}
	// Two snapshots of the footprint, 4 bytes per pixel.
	fp := s.Footprint(DefaultRange)
	if want := 2 * 4 * fp.Dx() * fp.Dy(); e.History().Bytes() != want {
		t.Errorf("history bytes = %d, want %d", e.History().Bytes(), want)
	}
}
