// Package pool implements the thread-pool device adapter. Workers run
// in the control address space, but the adapter keeps a private
// execution buffer so host-side mutation cannot race in-flight workers;
// transfers therefore copy, chunked across the pool.
package pool

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/strand-hpc/strand/internal/device"
	"github.com/strand-hpc/strand/internal/parallel"
)

// Tag identifies the thread-pool adapter.
type Tag struct{}

// DeviceName returns the adapter name.
func (Tag) DeviceName() string { return "ThreadPool" }

var (
	configMu sync.RWMutex
	config   = parallel.DefaultConfig()
)

// Configure sets the worker configuration used for transfer copies.
// Affects memories created afterwards.
func Configure(cfg parallel.Config) {
	configMu.Lock()
	defer configMu.Unlock()
	config = cfg
}

func init() {
	device.Register(Tag{}, func() (device.Memory, error) {
		configMu.RLock()
		defer configMu.RUnlock()
		return &memory{cfg: config}, nil
	})
}

// memory is the adapter's private execution buffer.
type memory struct {
	buf []byte
	cfg parallel.Config
}

func (m *memory) Allocate(byteSize int) error {
	if byteSize < 0 {
		return errors.Errorf("pool: cannot allocate %d bytes", byteSize)
	}
	if byteSize <= cap(m.buf) {
		m.buf = m.buf[:byteSize]
		return nil
	}
	m.buf = make([]byte, byteSize)
	return nil
}

func (m *memory) HostBytes() ([]byte, error) {
	return m.buf, nil
}

// Copy moves bytes between the domains, chunked across the worker pool
// for large transfers.
func (m *memory) Copy(dst, src []byte) {
	parallel.Chunks(min(len(dst), len(src)), func(start, end int) {
		copy(dst[start:end], src[start:end])
	}, m.cfg)
}

func (m *memory) Flush(int) error      { return nil }
func (m *memory) Invalidate(int) error { return nil }

func (m *memory) Shrink(byteSize int) error {
	if byteSize < 0 || byteSize > len(m.buf) {
		return errors.Errorf("pool: cannot shrink %d bytes to %d", len(m.buf), byteSize)
	}
	m.buf = m.buf[:byteSize]
	return nil
}

func (m *memory) Release() {
	m.buf = nil
}

// Shared reports false: the buffer lives in host memory, but it is
// private to the adapter and never aliases control storage.
func (m *memory) Shared() bool { return false }

var _ device.Memory = (*memory)(nil)
var _ device.Copier = (*memory)(nil)
