//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink/internal/jfa"
)

//go:embed shaders/jfa.wgsl
var jfaShaderSource string

//go:embed shaders/merge.wgsl
var mergeShaderSource string

// floodJob is one stroke window for FloodPass.Run. ids holds the seeded
// edge per texel (jfa.None when unseeded) and pixels the premultiplied
// RGBA8 window, which Run updates in place.
type floodJob struct {
	w, h   int
	segs   []jfa.Segment
	ids    []int32
	inside []byte
	pixels []byte
	paint  paintParams
}

// FloodPass runs the jump flood and the coverage pass as compute passes,
// then merges the coverage into the window with a render pass. Every
// flood step is its own pass in one command encoder; the passes
// ping-pong between two id buffers. The merge binds the source-over or
// destination-out pipeline per stroke.
type FloodPass struct {
	dev *Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	flood      hal.ComputePipeline
	paint      hal.ComputePipeline

	mergeShader     hal.ShaderModule
	mergeLayout     hal.BindGroupLayout
	mergePipeLayout hal.PipelineLayout
	merge           blendPipelines

	// lastBlend is the blend mode of the most recent merge.
	lastBlend string
}

// NewFloodPass compiles the flood, coverage and merge pipelines.
func NewFloodPass(dev *Device) (*FloodPass, error) {
	p := &FloodPass{dev: dev}
	if err := p.createPipelines(); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.createMergePipelines(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *FloodPass) createPipelines() error {
	if jfaShaderSource == "" {
		return fmt.Errorf("jfa shader source is empty")
	}
	device := p.dev.device
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "jfa",
		Source: hal.ShaderSource{WGSL: jfaShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile jfa shader: %w", err)
	}
	p.shader = shader

	storage := func(binding uint32, readOnly bool) gputypes.BindGroupLayoutEntry {
		t := gputypes.BufferBindingTypeStorage
		if readOnly {
			t = gputypes.BufferBindingTypeReadOnlyStorage
		}
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: t},
		}
	}
	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "jfa_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			storage(1, true),  // segments
			storage(2, true),  // src ids
			storage(3, false), // dst ids
			storage(4, true),  // inside
			storage(5, false), // coverage
		},
	})
	if err != nil {
		return fmt.Errorf("create jfa bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "jfa_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create jfa pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	p.flood, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "jfa_flood", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "flood"},
	})
	if err != nil {
		return fmt.Errorf("create flood pipeline: %w", err)
	}
	p.paint, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "jfa_paint", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "paint"},
	})
	if err != nil {
		return fmt.Errorf("create paint pipeline: %w", err)
	}
	return nil
}

func (p *FloodPass) createMergePipelines() error {
	if mergeShaderSource == "" {
		return fmt.Errorf("merge shader source is empty")
	}
	device := p.dev.device
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "jfa_merge",
		Source: hal.ShaderSource{WGSL: mergeShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile merge shader: %w", err)
	}
	p.mergeShader = shader

	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "jfa_merge_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create merge bind group layout: %w", err)
	}
	p.mergeLayout = layout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "jfa_merge_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.mergeLayout},
	})
	if err != nil {
		return fmt.Errorf("create merge pipeline layout: %w", err)
	}
	p.mergePipeLayout = pipeLayout

	return p.merge.create("jfa_merge", func(label string, blend *gputypes.BlendState) (hal.RenderPipeline, error) {
		pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  label,
			Layout: p.mergePipeLayout,
			Vertex: hal.VertexState{
				Module:     p.mergeShader,
				EntryPoint: "vs_main",
				Buffers: []gputypes.VertexBufferLayout{{
					ArrayStride: 8,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes: []gputypes.VertexAttribute{
						{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					},
				}},
			},
			Fragment: &hal.FragmentState{
				Module:     p.mergeShader,
				EntryPoint: "fs_main",
				Targets: []gputypes.ColorTargetState{{
					Format:    strokeFormat,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				}},
			},
			Primitive: gputypes.PrimitiveState{
				Topology: gputypes.PrimitiveTopologyTriangleList,
				CullMode: gputypes.CullModeNone,
			},
			Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		})
		if err != nil {
			return nil, fmt.Errorf("create %s pipeline: %w", label, err)
		}
		return pipeline, nil
	})
}

// Destroy releases the pipelines. Safe to call more than once.
func (p *FloodPass) Destroy() {
	device := p.dev.device
	if device == nil {
		return
	}
	p.merge.destroy(device)
	if p.mergePipeLayout != nil {
		device.DestroyPipelineLayout(p.mergePipeLayout)
		p.mergePipeLayout = nil
	}
	if p.mergeLayout != nil {
		device.DestroyBindGroupLayout(p.mergeLayout)
		p.mergeLayout = nil
	}
	if p.mergeShader != nil {
		device.DestroyShaderModule(p.mergeShader)
		p.mergeShader = nil
	}
	if p.paint != nil {
		device.DestroyComputePipeline(p.paint)
		p.paint = nil
	}
	if p.flood != nil {
		device.DestroyComputePipeline(p.flood)
		p.flood = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// fits reports whether a w*h window stays within the device limits.
func (p *FloodPass) fits(w, h int) bool {
	limit := int(p.dev.maxTextureDim)
	return w <= limit && h <= limit && uint64(w)*uint64(h)*4 <= p.dev.maxBufferSize
}

// floodResources are the buffers and bind groups of one Run.
type floodResources struct {
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
}

func (r *floodResources) destroy(device hal.Device) {
	for _, bg := range r.bindGroups {
		device.DestroyBindGroup(bg)
	}
	for _, b := range r.buffers {
		device.DestroyBuffer(b)
	}
}

// Run floods job.ids, computes coverage, merges the brush into
// job.pixels and reads the pixels back. One submission and one fence
// wait per stroke.
func (p *FloodPass) Run(job floodJob) error { //nolint:funlen // one encoder from upload to readback
	dev := p.dev
	w, h := uint32(job.w), uint32(job.h) //nolint:gosec // window dimensions fit uint32
	steps := jfa.Steps(job.w, job.h)
	covSize := uint64(4 * job.w * job.h)
	idSize := uint64(4 * len(job.ids))
	segBytes := packSegments(job.segs)
	insideBytes := packInside(job.inside)
	quad, quadCount := packQuad(job.w, job.h)

	var res floodResources
	defer res.destroy(dev.device)
	mk := func(label string, size uint64, usage gputypes.BufferUsage, data []byte) hal.Buffer {
		if size == 0 {
			return nil
		}
		b, err := dev.buffer(label, size, usage, data)
		if err != nil {
			dev.log.Warn("gpu: buffer allocation failed", "label", label, "size", size, "err", err)
			return nil
		}
		res.buffers = append(res.buffers, b)
		return b
	}

	storageIn := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	segBuf := mk("jfa_segments", uint64(len(segBytes)), storageIn, segBytes)
	ids := [2]hal.Buffer{
		mk("jfa_ids_a", idSize, storageIn, packIDs(job.ids)),
		mk("jfa_ids_b", idSize, storageIn, nil),
	}
	insideBuf := mk("jfa_inside", uint64(len(insideBytes)), storageIn, insideBytes)
	covBuf := mk("jfa_coverage", covSize, gputypes.BufferUsageStorage, nil)
	quadBuf := mk("jfa_quad", uint64(len(quad)), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, quad)
	mergeBuf := mk("jfa_merge_uniform", mergeUniformSize, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst,
		packMergeUniform(w, h, job.paint.color))
	if segBuf == nil || ids[0] == nil || ids[1] == nil || insideBuf == nil || covBuf == nil || quadBuf == nil || mergeBuf == nil {
		return errOutOfMemory
	}

	bind := func(step int, src, dst hal.Buffer) (hal.BindGroup, error) {
		params := packFloodParams(w, h, int32(step), uint32(len(job.segs)), job.paint) //nolint:gosec // sizes fit
		ub := mk("jfa_params", floodParamsSize, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, params)
		if ub == nil {
			return nil, errOutOfMemory
		}
		bg, err := dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: "jfa_bind", Layout: p.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: floodParamsSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: segBuf.NativeHandle(), Offset: 0, Size: uint64(len(segBytes))}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: src.NativeHandle(), Offset: 0, Size: idSize}},
				{Binding: 3, Resource: gputypes.BufferBinding{Buffer: dst.NativeHandle(), Offset: 0, Size: idSize}},
				{Binding: 4, Resource: gputypes.BufferBinding{Buffer: insideBuf.NativeHandle(), Offset: 0, Size: uint64(len(insideBytes))}},
				{Binding: 5, Resource: gputypes.BufferBinding{Buffer: covBuf.NativeHandle(), Offset: 0, Size: covSize}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create jfa bind group: %w", err)
		}
		res.bindGroups = append(res.bindGroups, bg)
		return bg, nil
	}

	groups := make([]hal.BindGroup, 0, len(steps)+1)
	cur := 0
	for _, k := range steps {
		bg, err := bind(k, ids[cur], ids[1-cur])
		if err != nil {
			return err
		}
		groups = append(groups, bg)
		cur = 1 - cur
	}
	paintGroup, err := bind(0, ids[cur], ids[1-cur])
	if err != nil {
		return err
	}
	mergeGroup, err := dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "jfa_merge_bind", Layout: p.mergeLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: mergeBuf.NativeHandle(), Offset: 0, Size: mergeUniformSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: covBuf.NativeHandle(), Offset: 0, Size: covSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create merge bind group: %w", err)
	}
	res.bindGroups = append(res.bindGroups, mergeGroup)

	win, err := dev.newWindow("jfa_window", job.w, job.h, job.pixels)
	if err != nil {
		return err
	}
	defer win.destroy()

	encoder, err := dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "jfa_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("jfa"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	gx, gy := (w+7)/8, (h+7)/8
	for _, bg := range groups {
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "jfa_flood_pass"})
		pass.SetPipeline(p.flood)
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(gx, gy, 1)
		pass.End()
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "jfa_coverage_pass"})
	pass.SetPipeline(p.paint)
	pass.SetBindGroup(0, paintGroup, nil)
	pass.Dispatch(gx, gy, 1)
	pass.End()

	pipeline, mode := p.merge.pick(job.paint.erase)
	rp := win.beginPass(encoder, "jfa_merge_pass")
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, mergeGroup, nil)
	rp.SetVertexBuffer(0, quadBuf, 0)
	rp.Draw(quadCount, 1, 0, 0)
	rp.End()
	p.lastBlend = mode
	win.copyOut(encoder)

	if err := dev.submit(encoder); err != nil {
		return err
	}
	return win.read(job.pixels)
}
