package ink

import (
	"fmt"
	"log/slog"
)

// Command is one reversible history entry. Do must be repeatable after
// Undo (redo), and Undo must restore the exact prior state.
type Command interface {
	Do() error
	Undo() error
	Label() string
}

// sizer is implemented by commands that retain pixel data.
type sizer interface {
	Size() int
}

// HistoryConfig bounds the memory held by undo history.
type HistoryConfig struct {
	// MaxDepth is the maximum number of commands kept.
	MaxDepth int `yaml:"max_depth"`

	// MaxBytes caps the pixel data retained by commands. The newest
	// command is always kept, even when it alone exceeds the cap.
	MaxBytes int `yaml:"max_bytes"`
}

// DefaultHistoryConfig returns the default history bounds.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{MaxDepth: 200, MaxBytes: 256 << 20}
}

// History is a linear undo/redo stack with a cursor. Commands before the
// cursor are applied; commands after it were undone and can be redone.
type History struct {
	cfg   HistoryConfig
	bus   Bus
	log   *slog.Logger
	cmds  []Command
	pos   int
	bytes int
}

// NewHistory creates an empty history. Zero config fields take defaults.
func NewHistory(cfg HistoryConfig, bus Bus) *History {
	d := DefaultHistoryConfig()
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = d.MaxDepth
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = d.MaxBytes
	}
	if bus == nil {
		bus = NopBus{}
	}
	return &History{cfg: cfg, bus: bus, log: Logger()}
}

// Execute runs cmd and records it, discarding any redo tail. If Do fails
// the history is unchanged.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Do(); err != nil {
		return fmt.Errorf("ink: %s: %w", cmd.Label(), err)
	}
	for _, c := range h.cmds[h.pos:] {
		h.bytes -= size(c)
	}
	clear(h.cmds[h.pos:])
	h.cmds = append(h.cmds[:h.pos], cmd)
	h.pos++
	h.bytes += size(cmd)
	h.trim()
	h.changed()
	return nil
}

// Undo reverts the command before the cursor. It reports false at the
// start of history.
func (h *History) Undo() (bool, error) {
	if h.pos == 0 {
		return false, nil
	}
	cmd := h.cmds[h.pos-1]
	if err := cmd.Undo(); err != nil {
		return false, fmt.Errorf("ink: undo %s: %w", cmd.Label(), err)
	}
	h.pos--
	h.changed()
	return true, nil
}

// Redo re-applies the command at the cursor. It reports false at the end
// of history.
func (h *History) Redo() (bool, error) {
	if h.pos == len(h.cmds) {
		return false, nil
	}
	cmd := h.cmds[h.pos]
	if err := cmd.Do(); err != nil {
		return false, fmt.Errorf("ink: redo %s: %w", cmd.Label(), err)
	}
	h.pos++
	h.changed()
	return true, nil
}

// CanUndo reports whether Undo would revert a command.
func (h *History) CanUndo() bool { return h.pos > 0 }

// CanRedo reports whether Redo would re-apply a command.
func (h *History) CanRedo() bool { return h.pos < len(h.cmds) }

// Len returns the number of recorded commands.
func (h *History) Len() int { return len(h.cmds) }

// Pos returns the cursor.
func (h *History) Pos() int { return h.pos }

// Bytes returns the pixel data retained by recorded commands.
func (h *History) Bytes() int { return h.bytes }

// Labels returns the labels of every recorded command, oldest first.
func (h *History) Labels() []string {
	out := make([]string, len(h.cmds))
	for i, c := range h.cmds {
		out[i] = c.Label()
	}
	return out
}

// Clear drops every command without touching layer state.
func (h *History) Clear() {
	h.cmds, h.pos, h.bytes = nil, 0, 0
	h.changed()
}

// trim drops the oldest commands until both caps hold.
func (h *History) trim() {
	drop := 0
	for len(h.cmds)-drop > 1 && (len(h.cmds)-drop > h.cfg.MaxDepth || h.bytes > h.cfg.MaxBytes) {
		h.bytes -= size(h.cmds[drop])
		drop++
	}
	if drop == 0 {
		return
	}
	h.log.Debug("history trimmed", "dropped", drop, "bytes", h.bytes)
	clear(h.cmds[:drop])
	h.cmds = h.cmds[drop:]
	h.pos -= drop
}

func (h *History) changed() {
	h.bus.Publish(Event{Topic: TopicHistoryChanged, Payload: HistoryChanged{CanUndo: h.CanUndo(), CanRedo: h.CanRedo()}})
}

func size(c Command) int {
	if s, ok := c.(sizer); ok {
		return s.Size()
	}
	return 0
}
