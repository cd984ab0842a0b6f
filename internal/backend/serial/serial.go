// Package serial implements the serial device adapter. Execution runs
// in the control address space, so device memory is ordinary host
// memory and loads alias the control buffer instead of copying it.
package serial

import (
	"github.com/pkg/errors"

	"github.com/strand-hpc/strand/internal/device"
)

// Tag identifies the serial adapter.
type Tag struct{}

// DeviceName returns the adapter name.
func (Tag) DeviceName() string { return "Serial" }

func init() {
	device.Register(Tag{}, func() (device.Memory, error) {
		return &memory{}, nil
	})
}

// memory is execution memory for the serial adapter: a host buffer, or
// an alias of control memory when the source is contiguous.
type memory struct {
	buf []byte
}

func (m *memory) Allocate(byteSize int) error {
	if byteSize < 0 {
		return errors.Errorf("serial: cannot allocate %d bytes", byteSize)
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

// Alias adopts host memory directly; the serial adapter always shares
// the control address space.
func (m *memory) Alias(host []byte) bool {
	m.buf = host
	return true
}

func (m *memory) Flush(int) error      { return nil }
func (m *memory) Invalidate(int) error { return nil }

func (m *memory) Shrink(byteSize int) error {
	if byteSize < 0 || byteSize > len(m.buf) {
		return errors.Errorf("serial: cannot shrink %d bytes to %d", len(m.buf), byteSize)
	}
	m.buf = m.buf[:byteSize]
	return nil
}

func (m *memory) Release() {
	m.buf = nil
}

func (m *memory) Shared() bool { return true }

var _ device.Memory = (*memory)(nil)
var _ device.Aliaser = (*memory)(nil)
