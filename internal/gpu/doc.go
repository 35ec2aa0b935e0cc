//go:build !nogpu

// Package gpu implements the GPU stroke backends on gogpu/wgpu HAL.
//
// Two variants share one device wrapper:
//
//   - GPUAdvanced seeds the jump flood on the CPU, runs every flood step
//     and the coverage pass as compute passes (shaders/jfa.wgsl), then
//     merges the coverage with a render pass (shaders/merge.wgsl).
//   - GPUBaseline draws the stroke triangles (shaders/stroke.wgsl).
//
// Both choose source-over or destination-out by binding one of two
// pipelines per draw; the blend state does the compositing.
//
// Both work on the stroke window only: the window of the layer buffer is
// uploaded, rendered and read back in a single submission. Layer buffers
// stay authoritative, so compositing and region operations run on the
// embedded software backend and device loss loses no pixels.
//
// Loggers are per instance: a Probe hands its logger to the Device and
// Backend it opens.
//
// The shaders avoid loops; naga currently lowers some loops so that only
// the first iteration runs, and the flood neighbourhood is unrolled.
package gpu
