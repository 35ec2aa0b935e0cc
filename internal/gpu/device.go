//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/ink"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// fenceTimeout bounds the wait for one submission. A GPU that does not
// signal within it is treated as lost.
const fenceTimeout = 5 * time.Second

// copyPitchAlignment is the BytesPerRow alignment of texture copies.
const copyPitchAlignment = 256

// Device is an opened or shared HAL device with its queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string

	// external devices belong to the provider and are not destroyed.
	external bool

	maxTextureDim uint32
	maxBufferSize uint64

	log *slog.Logger
}

// OpenDevice opens the first discrete or integrated Vulkan adapter, or
// the first adapter of any type. A nil log uses ink.Logger().
func OpenDevice(log *slog.Logger) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("gpu: vulkan backend not available: %w", ink.ErrCapabilityUnavailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w: %w", ink.ErrCapabilityUnavailable, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: no adapters found: %w", ink.ErrCapabilityUnavailable)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	d := NewDevice(openDev.Device, openDev.Queue, selected.Info.Name)
	d.instance = instance
	d.external = false
	d.SetLogger(log)
	d.log.Info("gpu device opened", "adapter", selected.Info.Name, "type", selected.Info.DeviceType)
	return d, nil
}

// SharedDevice wraps the device of an external provider, e.g. a gogpu
// window. The provider must expose HalDevice() and HalQueue() returning
// hal.Device and hal.Queue. Closing the result leaves the device alive.
func SharedDevice(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types: %w", ink.ErrCapabilityUnavailable)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("gpu: provider HalQueue is not hal.Queue")
	}
	return NewDevice(device, queue, "shared"), nil
}

// NewDevice wraps an already opened device. The caller keeps ownership.
func NewDevice(device hal.Device, queue hal.Queue, name string) *Device {
	lim := gputypes.DefaultLimits()
	return &Device{
		device:        device,
		queue:         queue,
		name:          name,
		external:      true,
		maxTextureDim: uint32(lim.MaxTextureDimension2D),
		maxBufferSize: uint64(lim.MaxBufferSize),
		log:           ink.Logger(),
	}
}

// SetLogger sets the logger used for device and pass diagnostics. Nil
// restores ink.Logger().
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = ink.Logger()
	}
	d.log = l
}

// Name returns the adapter name.
func (d *Device) Name() string { return d.name }

// Close destroys the device unless it is shared.
func (d *Device) Close() {
	if d.external {
		d.device, d.queue = nil, nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}

// submit ends encoding, submits and waits for completion. Failures after
// encoding mean the device can no longer be trusted and are reported as
// ink.ErrDeviceLost.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w: %w", ink.ErrDeviceLost, err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w: %w", ink.ErrDeviceLost, err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w: %w", ink.ErrDeviceLost, err)
	}
	if !ok {
		return fmt.Errorf("wait for GPU: timed out after %v: %w", fenceTimeout, ink.ErrDeviceLost)
	}
	return nil
}

// read copies a mapped staging buffer into dst.
func (d *Device) read(buf hal.Buffer, dst []byte) error {
	if err := d.queue.ReadBuffer(buf, 0, dst); err != nil {
		return fmt.Errorf("readback: %w: %w", ink.ErrDeviceLost, err)
	}
	return nil
}

// buffer creates a buffer and uploads data when non-nil.
func (d *Device) buffer(label string, size uint64, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	if data != nil {
		d.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

// alignedRow returns the padded bytes per row for a texture copy.
func alignedRow(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}
