//go:build windows

// Package webgpu implements the WebGPU device adapter. Device memory is
// a GPU storage buffer with a host staging mirror: loads upload through
// a mapped copy buffer, readbacks stage through a MapRead buffer.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU
// bindings.
package webgpu

import (
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/strand-hpc/strand/internal/array"
	"github.com/strand-hpc/strand/internal/device"
)

// Tag identifies the WebGPU adapter.
type Tag struct{}

// DeviceName returns the adapter name.
func (Tag) DeviceName() string { return "WebGPU" }

const bufferUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// Backend holds the shared WebGPU objects: one instance, adapter,
// device, and queue for the whole process, plus the buffer pool.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	bufferPool *BufferPool
}

var (
	backendOnce sync.Once
	backend     *Backend
	backendErr  error
)

// sharedBackend initializes the process-wide backend on first use.
func sharedBackend() (b *Backend, err error) {
	backendOnce.Do(func() {
		backend, backendErr = newBackend()
	})
	return backend, backendErr
}

// newBackend brings up instance, adapter, device and queue.
// Returns an error if WebGPU is not available or initialization fails.
func newBackend() (b *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = errors.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, errors.Wrap(adapterErr, "webgpu: failed to request adapter")
	}

	gpu, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(deviceErr, "webgpu: failed to request device")
	}

	queue := gpu.GetQueue()
	if queue == nil {
		gpu.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.New("webgpu: failed to get queue")
	}

	return &Backend{
		instance:   instance,
		adapter:    adapter,
		device:     gpu,
		queue:      queue,
		bufferPool: NewBufferPool(gpu),
	}, nil
}

// Available reports whether a WebGPU device could be initialized.
func Available() bool {
	_, err := sharedBackend()
	return err == nil
}

func init() {
	device.Register(Tag{}, func() (device.Memory, error) {
		b, err := sharedBackend()
		if err != nil {
			return nil, err
		}
		return &memory{b: b}, nil
	})
}

// memory is one array's worth of device memory: a GPU storage buffer
// plus a host staging mirror. Portals operate on the mirror; Flush and
// Invalidate keep the two sides coherent. deviceDirty is set by kernel
// layers through MarkDeviceWritten when a GPU pass writes the buffer,
// so Invalidate knows a readback is needed.
type memory struct {
	b       *Backend
	staging []byte
	buf     *wgpu.Buffer
	size    uint64

	deviceDirty bool
}

func (m *memory) Allocate(byteSize int) error {
	if byteSize < 0 {
		return errors.Errorf("webgpu: cannot allocate %d bytes", byteSize)
	}
	m.Release()
	size := uint64(byteSize)
	buf := m.b.bufferPool.Acquire(size, bufferUsage)
	if buf == nil && byteSize > 0 {
		return errors.Wrapf(array.ErrOutOfMemory,
			"webgpu: allocating %s device buffer", humanize.Bytes(size))
	}
	m.buf = buf
	m.size = size
	m.staging = make([]byte, byteSize)
	m.deviceDirty = false
	klog.V(2).Infof("webgpu: allocated %s device buffer", humanize.Bytes(size))
	return nil
}

func (m *memory) HostBytes() ([]byte, error) {
	return m.staging, nil
}

// Flush uploads the staging mirror to the device buffer through a
// mapped copy buffer.
func (m *memory) Flush(byteSize int) error {
	if byteSize == 0 {
		return nil
	}
	if m.buf == nil || byteSize < 0 || byteSize > len(m.staging) {
		return errors.Errorf("webgpu: flush of %d bytes outside allocation", byteSize)
	}
	size := uint64(byteSize)
	upload := m.b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	if upload == nil {
		return errors.Wrap(array.ErrOutOfMemory, "webgpu: allocating upload buffer")
	}
	defer upload.Release()

	mappedPtr := upload.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mapped, m.staging[:byteSize])
	upload.Unmap()

	encoder := m.b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(upload, 0, m.buf, 0, size)
	cmdBuffer := encoder.Finish(nil)
	m.b.queue.Submit(cmdBuffer)
	return nil
}

// Invalidate reads the device buffer back into the staging mirror, if a
// GPU pass has written it since the last readback.
func (m *memory) Invalidate(byteSize int) error {
	if !m.deviceDirty || byteSize == 0 {
		return nil
	}
	if m.buf == nil || byteSize < 0 || byteSize > len(m.staging) {
		return errors.Errorf("webgpu: readback of %d bytes outside allocation", byteSize)
	}
	size := uint64(byteSize)

	// Storage buffers cannot be mapped directly; stage through a
	// MapRead buffer.
	stagingBuffer := m.b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if stagingBuffer == nil {
		return errors.Wrap(array.ErrOutOfMemory, "webgpu: allocating readback buffer")
	}
	defer stagingBuffer.Release()

	encoder := m.b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(m.buf, 0, stagingBuffer, 0, size)
	cmdBuffer := encoder.Finish(nil)
	m.b.queue.Submit(cmdBuffer)

	if err := stagingBuffer.MapAsync(m.b.device, wgpu.MapModeRead, 0, size); err != nil {
		return errors.Wrap(err, "webgpu: failed to map readback buffer")
	}
	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	copy(m.staging[:byteSize], mapped)
	stagingBuffer.Unmap()

	m.deviceDirty = false
	return nil
}

func (m *memory) Shrink(byteSize int) error {
	if byteSize < 0 || byteSize > len(m.staging) {
		return errors.Errorf("webgpu: cannot shrink %d bytes to %d", len(m.staging), byteSize)
	}
	// The device buffer keeps its allocation; only the logical size
	// changes.
	m.staging = m.staging[:byteSize]
	return nil
}

func (m *memory) Release() {
	if m.buf != nil {
		m.b.bufferPool.Release(m.buf, m.size, bufferUsage)
		m.buf = nil
		m.size = 0
	}
	m.staging = nil
	m.deviceDirty = false
}

func (m *memory) Shared() bool { return false }

// GPUBuffer flushes pending host writes and returns the device buffer
// for kernel dispatch. Kernel layers that write it must call
// MarkDeviceWritten so later readbacks see the result.
func (m *memory) GPUBuffer() (*wgpu.Buffer, error) {
	if err := m.Flush(len(m.staging)); err != nil {
		return nil, err
	}
	return m.buf, nil
}

// MarkDeviceWritten records that a GPU pass wrote the buffer, making
// the staging mirror stale until the next Invalidate.
func (m *memory) MarkDeviceWritten() {
	m.deviceDirty = true
}

var _ device.Memory = (*memory)(nil)
