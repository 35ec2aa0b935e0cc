//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/stroke.wgsl
var strokeShaderSource string

// triangleJob is one stroke window for TrianglePass.Draw.
type triangleJob struct {
	x, y, w, h int
	vertices   []byte // float32 x,y triangle list in layer space
	count      uint32
	color      [4]float32 // premultiplied, opacity applied
	erase      bool
	pixels     []byte // premultiplied RGBA8 window, updated in place
}

// TrianglePass fills stroke meshes with a render pipeline and no
// anti-aliasing. Paint uses premultiplied source-over blending and erase
// uses destination-out, so the GPU blend unit does the compositing.
type TrianglePass struct {
	dev *Device

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	blend         blendPipelines

	// lastBlend is the blend mode of the most recent draw.
	lastBlend string
}

// NewTrianglePass compiles the paint and erase pipelines.
func NewTrianglePass(dev *Device) (*TrianglePass, error) {
	p := &TrianglePass{dev: dev}
	if err := p.createPipelines(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *TrianglePass) createPipelines() error {
	if strokeShaderSource == "" {
		return fmt.Errorf("stroke shader source is empty")
	}
	device := p.dev.device
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "stroke_shader",
		Source: hal.ShaderSource{WGSL: strokeShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile stroke shader: %w", err)
	}
	p.shader = shader

	uniformLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "stroke_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create stroke uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "stroke_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create stroke pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	return p.blend.create("stroke", p.createPipeline)
}

func (p *TrianglePass) createPipeline(label string, blend *gputypes.BlendState) (hal.RenderPipeline, error) {
	pipeline, err := p.dev.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
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
			Module:     p.shader,
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
}

// Destroy releases the pipelines. Safe to call more than once.
func (p *TrianglePass) Destroy() {
	device := p.dev.device
	if device == nil {
		return
	}
	p.blend.destroy(device)
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// fits reports whether a w*h window stays within the device limits.
func (p *TrianglePass) fits(w, h int) bool {
	limit := int(p.dev.maxTextureDim)
	return w <= limit && h <= limit
}

// Draw uploads the window, draws the triangles over it and reads the
// result back into job.pixels.
func (p *TrianglePass) Draw(job triangleJob) error {
	if job.count == 0 {
		return nil
	}
	dev := p.dev
	device := dev.device

	win, err := dev.newWindow("stroke_window", job.w, job.h, job.pixels)
	if err != nil {
		return err
	}
	defer win.destroy()

	vertBuf, err := dev.buffer("stroke_vertices", uint64(len(job.vertices)),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, job.vertices)
	if err != nil {
		return err
	}
	defer device.DestroyBuffer(vertBuf)

	uniform := packStrokeUniform(float32(job.x), float32(job.y), float32(job.w), float32(job.h), job.color)
	uniformBuf, err := dev.buffer("stroke_uniform", strokeUniformSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, uniform)
	if err != nil {
		return err
	}
	defer device.DestroyBuffer(uniformBuf)

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "stroke_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: strokeUniformSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create stroke bind group: %w", err)
	}
	defer device.DestroyBindGroup(bindGroup)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "stroke_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("stroke"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	pipeline, mode := p.blend.pick(job.erase)
	rp := win.beginPass(encoder, "stroke_pass")
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.Draw(job.count, 1, 0, 0)
	rp.End()
	p.lastBlend = mode
	win.copyOut(encoder)

	if err := dev.submit(encoder); err != nil {
		return err
	}
	return win.read(job.pixels)
}
