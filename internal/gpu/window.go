//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// strokeFormat is the format of the window texture strokes draw into.
// It matches the RGBA byte order of layer buffers, so uploads and
// readbacks need no swizzle.
const strokeFormat = gputypes.TextureFormatRGBA8Unorm

// Blend modes a stroke can be merged with. The name doubles as the
// pipeline label suffix.
const (
	blendSourceOver     = "source-over"
	blendDestinationOut = "destination-out"
)

// blendPipelines holds one render pipeline per stroke blend mode. The
// mode is chosen per draw call by binding a pipeline; no shader branches
// on it.
type blendPipelines struct {
	paint hal.RenderPipeline
	erase hal.RenderPipeline
}

// eraseBlend keeps dst scaled by (1 - src alpha): destination-out.
func eraseBlend() gputypes.BlendState {
	c := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorZero,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: c, Alpha: c}
}

// create builds both pipelines with build, which receives the label and
// blend state of each.
func (b *blendPipelines) create(prefix string, build func(label string, blend *gputypes.BlendState) (hal.RenderPipeline, error)) error {
	var err error
	paint := gputypes.BlendStatePremultiplied()
	if b.paint, err = build(prefix+"_"+blendSourceOver, &paint); err != nil {
		return err
	}
	erase := eraseBlend()
	if b.erase, err = build(prefix+"_"+blendDestinationOut, &erase); err != nil {
		return err
	}
	return nil
}

// pick returns the pipeline and blend mode name for a draw.
func (b *blendPipelines) pick(erase bool) (hal.RenderPipeline, string) {
	if erase {
		return b.erase, blendDestinationOut
	}
	return b.paint, blendSourceOver
}

func (b *blendPipelines) ready() bool { return b.paint != nil && b.erase != nil }

func (b *blendPipelines) destroy(device hal.Device) {
	for _, rp := range []*hal.RenderPipeline{&b.erase, &b.paint} {
		if *rp != nil {
			device.DestroyRenderPipeline(*rp)
			*rp = nil
		}
	}
}

// window is a render target holding one stroke window of a layer buffer
// and the staging buffer its result is read back through.
type window struct {
	dev     *Device
	w, h    uint32
	pitch   uint32
	tex     hal.Texture
	view    hal.TextureView
	staging hal.Buffer
}

// newWindow creates the target and uploads pixels, a tight premultiplied
// RGBA8 w*h window.
func (d *Device) newWindow(label string, w, h int, pixels []byte) (*window, error) {
	device := d.device
	t := &window{dev: d, w: uint32(w), h: uint32(h)} //nolint:gosec // window dimensions fit uint32
	t.pitch = alignedRow(t.w)
	size := hal.Extent3D{Width: t.w, Height: t.h, DepthOrArrayLayers: 1}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        strokeFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create window texture: %w", errOutOfMemory, err)
	}
	t.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        strokeFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.destroy()
		return nil, fmt.Errorf("create window view: %w", err)
	}
	t.view = view

	staging, err := d.buffer(label+"_staging", uint64(t.pitch)*uint64(t.h),
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst, nil)
	if err != nil {
		t.destroy()
		return nil, fmt.Errorf("%w: %w", errOutOfMemory, err)
	}
	t.staging = staging

	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: t.w * 4, RowsPerImage: t.h},
		&size,
	)
	return t, nil
}

func (t *window) destroy() {
	device := t.dev.device
	if t.staging != nil {
		device.DestroyBuffer(t.staging)
		t.staging = nil
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// beginPass opens a render pass that blends over the uploaded pixels.
func (t *window) beginPass(encoder hal.CommandEncoder, label string) hal.RenderPassEncoder {
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	return encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    t.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
}

// copyOut records the copy of the rendered window into staging.
func (t *window) copyOut(encoder hal.CommandEncoder) {
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, t.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: t.pitch, RowsPerImage: t.h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.w, Height: t.h, DepthOrArrayLayers: 1},
	}})
}

// read copies the staging buffer into pixels after submission.
func (t *window) read(pixels []byte) error {
	readback := make([]byte, uint64(t.pitch)*uint64(t.h))
	if err := t.dev.read(t.staging, readback); err != nil {
		return err
	}
	w, h := int(t.w), int(t.h)
	rowBytes := 4 * w
	unpackPixels(readback, int(t.pitch), func(y int) []byte {
		return pixels[rowBytes*y : rowBytes*(y+1)]
	}, w, h)
	return nil
}
