package ink

import "errors"

var (
	// ErrCapabilityUnavailable reports that a backend probe found the
	// device lacking a required feature. Backend selection absorbs it.
	ErrCapabilityUnavailable = errors.New("ink: capability unavailable")

	// ErrGeometryDegenerate reports an empty or invalid outline or
	// triangulation. Backends recover with disc or fan fallbacks.
	ErrGeometryDegenerate = errors.New("ink: degenerate geometry")

	// ErrDeviceLost reports that the GPU context was invalidated. The
	// engine re-selects a backend and restores layers from CPU memory.
	ErrDeviceLost = errors.New("ink: device lost")

	// ErrStrokeInProgress is returned when a stroke begins while another
	// one is still being captured.
	ErrStrokeInProgress = errors.New("ink: stroke already in progress")

	// ErrNoStroke is returned when samples arrive without an active stroke.
	ErrNoStroke = errors.New("ink: no stroke in progress")

	// ErrNoEditableLayer is returned when a change would leave the stack
	// without a visible, unlocked layer to draw on.
	ErrNoEditableLayer = errors.New("ink: no visible unlocked layer")

	// ErrLayerNotFound is returned for unknown layer IDs or indices.
	ErrLayerNotFound = errors.New("ink: layer not found")

	// ErrLastLayer is returned when removing the only layer.
	ErrLastLayer = errors.New("ink: cannot remove the last layer")

	// ErrInvalidSize is returned for non-positive canvas dimensions.
	ErrInvalidSize = errors.New("ink: invalid canvas size")
)
