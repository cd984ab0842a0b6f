//go:build windows

package webgpu

import (
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"
)

const maxPooledBuffers = 64

// pooledBuffer wraps a GPU buffer with the metadata needed for reuse.
type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// BufferPool reuses GPU buffers across array allocations to reduce
// driver round trips. Arrays release their buffers here instead of
// destroying them; the next allocation of a compatible size takes one
// from the free list.
type BufferPool struct {
	device *wgpu.Device

	mu   sync.Mutex
	free []*pooledBuffer

	// Statistics.
	totalAllocated uint64
	totalBytes     uint64
	poolHits       uint64
	poolMisses     uint64
}

// NewBufferPool creates a pool allocating from the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		free:   make([]*pooledBuffer, 0, maxPooledBuffers),
	}
}

// Acquire returns a buffer of at least size bytes with the requested
// usage, reusing a pooled buffer when one fits.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Best fit: the smallest pooled buffer that satisfies the request.
	best := -1
	for i, pb := range p.free {
		if pb.size >= size && pb.usage&usage == usage {
			if best < 0 || pb.size < p.free[best].size {
				best = i
			}
		}
	}
	if best >= 0 {
		buffer := p.free[best].buffer
		p.free = append(p.free[:best], p.free[best+1:]...)
		p.poolHits++
		return buffer
	}

	p.poolMisses++
	p.totalAllocated++
	p.totalBytes += size

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool. A full pool destroys the buffer
// instead.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) >= maxPooledBuffers {
		buffer.Release()
		return
	}
	p.free = append(p.free, &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear destroys all pooled buffers. Called when the backend shuts
// down.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pb := range p.free {
		pb.buffer.Release()
	}
	p.free = p.free[:0]
	klog.V(1).Infof("webgpu: buffer pool cleared (%d allocations, %s total, %d hits, %d misses)",
		p.totalAllocated, humanize.Bytes(p.totalBytes), p.poolHits, p.poolMisses)
}

// Stats returns pool usage counters.
func (p *BufferPool) Stats() (allocated, hits, misses uint64, pooledCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalAllocated, p.poolHits, p.poolMisses, len(p.free)
}
