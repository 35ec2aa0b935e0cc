// Package ink is a stroke rendering and layer compositing engine.
//
// # Overview
//
// ink turns pointer samples into anti-aliased, pressure-sensitive strokes,
// rasterizes them into layer buffers through a GPU or CPU backend, merges
// the layer stack into a display frame with dirty-rectangle tracking, and
// records every mutation as a reversible command.
//
// # Quick Start
//
//	eng, err := ink.NewEngine(1024, 768)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	eng.PointerDown(ink.Sample{X: 10, Y: 10, Pressure: 0.4, Pointer: ink.Pen})
//	eng.PointerMove(ink.Sample{X: 80, Y: 40, Pressure: 0.7, Pointer: ink.Pen})
//	if _, err := eng.PointerUp(ink.Sample{X: 120, Y: 60, Pressure: 0.3, Pointer: ink.Pen}); err != nil {
//	    log.Fatal(err)
//	}
//
//	frame, _ := eng.Frame()
//	_ = frame.SavePNG("out.png")
//
// # Pipeline
//
// Samples flow through these stages:
//   - Capture: pressure calibration and distance-adaptive smoothing
//   - Outline: variable-width polygon with round caps and joins
//   - Tessellate: ear clipping with a fan fallback
//   - Rasterize: jump-flood distance field, or direct triangles
//   - Composite: per-layer opacity and blend mode over dirty rectangles
//
// # Backends
//
// A Backend is chosen once per engine from probes in priority order:
// GPUAdvanced (compute distance field), GPUBaseline (triangle pipeline),
// CPUFallback. The GPU probes live in github.com/gogpu/ink/gpu:
//
//	eng, err := ink.NewEngine(w, h, ink.WithProbes(gpu.Probes()...))
//
// Layer pixels always live in CPU memory, so a lost device is recovered
// by selecting a new backend.
//
// # Coordinate System
//
// Layer-local pixels, origin at top-left, X right, Y down. Pixel (x, y)
// covers [x, x+1) x [y, y+1); its center is (x+0.5, y+0.5).
//
// # Concurrency
//
// An Engine and everything it owns must be driven from one goroutine.
// ReadRegion is the only asynchronous operation.
package ink
