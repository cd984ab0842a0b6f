package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-hpc/strand/internal/backend/pool"
	"github.com/strand-hpc/strand/internal/backend/serial"
	"github.com/strand-hpc/strand/internal/device"
)

// Every registered always-available adapter; device-portable behavior
// must hold for all of them.
var testTags = []device.Tag{serial.Tag{}, pool.Tag{}}

// unknownTag is a tag no backend ever registers.
type unknownTag struct{}

func (unknownTag) DeviceName() string { return "NoSuchDevice" }

// checkSingleAuthority asserts the user and control sources are never
// simultaneously authoritative.
func checkSingleAuthority[T ValueType](t *testing.T, h *Handle[T]) {
	t.Helper()
	require.False(t, h.s.userValid && h.s.controlValid,
		"user portal and control storage must never both be valid")
}

func TestEmptyHandle(t *testing.T) {
	h := New[float32]()
	assert.Equal(t, 0, h.Len())

	_, err := h.PortalControl()
	require.ErrorIs(t, err, ErrBadValue)

	_, err = h.PortalConstControl()
	require.ErrorIs(t, err, ErrBadValue)

	for _, tag := range testTags {
		_, err = h.PrepareForInput(tag)
		require.ErrorIs(t, err, ErrBadValue)

		_, err = h.PrepareForInPlace(tag)
		require.ErrorIs(t, err, ErrBadValue)
	}
	checkSingleAuthority(t, h)
}

func TestFromValuesRoundTrip(t *testing.T) {
	values := []int32{3, 1, 4, 1, 5, 9, 2, 6}
	for _, tag := range testTags {
		t.Run(tag.DeviceName(), func(t *testing.T) {
			h := FromValues(values)
			require.Equal(t, len(values), h.Len())

			in, err := h.PrepareForInput(tag)
			require.NoError(t, err)
			require.Equal(t, len(values), in.Len())
			for i, want := range values {
				assert.Equal(t, want, in.Get(i))
			}

			// Reading back through the control portal must see the
			// same values.
			out, err := h.PortalConstControl()
			require.NoError(t, err)
			for i, want := range values {
				assert.Equal(t, want, out.Get(i))
			}
			checkSingleAuthority(t, h)
		})
	}
}

func TestPrepareForInputFastPath(t *testing.T) {
	h := FromValues([]float64{1, 2, 3})
	_, err := h.PrepareForInput(pool.Tag{})
	require.NoError(t, err)
	manager := h.s.execution

	// Same device again: no rebind, no reload.
	_, err = h.PrepareForInput(pool.Tag{})
	require.NoError(t, err)
	assert.Same(t, manager, h.s.execution)
	assert.True(t, h.s.executionValid)
}

func TestPrepareForOutput(t *testing.T) {
	const n = 100
	for _, tag := range testTags {
		t.Run(tag.DeviceName(), func(t *testing.T) {
			h := New[int64]()
			out, err := h.PrepareForOutput(n, tag)
			require.NoError(t, err)
			require.Equal(t, n, out.Len())

			for i := 0; i < n; i++ {
				out.Set(i, int64(i))
			}

			require.Equal(t, n, h.Len())
			in, err := h.PortalConstControl()
			require.NoError(t, err)
			for i := 0; i < n; i++ {
				assert.Equal(t, int64(i), in.Get(i))
			}
			checkSingleAuthority(t, h)
		})
	}
}

func TestPrepareForOutputDiscardsOldData(t *testing.T) {
	h := FromValues([]int32{7, 7, 7})
	out, err := h.PrepareForOutput(2, serial.Tag{})
	require.NoError(t, err)
	out.Set(0, 1)
	out.Set(1, 2)

	require.Equal(t, 2, h.Len())
	in, err := h.PortalConstControl()
	require.NoError(t, err)
	assert.Equal(t, int32(1), in.Get(0))
	assert.Equal(t, int32(2), in.Get(1))
}

func TestPrepareForInPlace(t *testing.T) {
	for _, tag := range testTags {
		t.Run(tag.DeviceName(), func(t *testing.T) {
			h := FromValues([]int32{1, 2, 3, 4})
			p, err := h.PrepareForInPlace(tag)
			require.NoError(t, err)

			for i := 0; i < p.Len(); i++ {
				p.Set(i, p.Get(i)*10)
			}

			// The control copy was invalidated; reading back must
			// resynchronize and see the mutated values.
			assert.False(t, h.s.controlValid)
			out, err := h.PortalConstControl()
			require.NoError(t, err)
			for i, want := range []int32{10, 20, 30, 40} {
				assert.Equal(t, want, out.Get(i))
			}
			checkSingleAuthority(t, h)
		})
	}
}

func TestReadOnlyHandleEnforcement(t *testing.T) {
	caller := []float32{1, 2, 3}
	h := FromSlice(caller)

	_, err := h.PortalControl()
	require.ErrorIs(t, err, ErrBadValue)

	for _, tag := range testTags {
		_, err = h.PrepareForInPlace(tag)
		require.ErrorIs(t, err, ErrBadValue)
	}

	err = h.Shrink(1)
	require.ErrorIs(t, err, ErrBadValue)

	// Read-only use is fine.
	in, err := h.PrepareForInput(serial.Tag{})
	require.NoError(t, err)
	assert.Equal(t, float32(2), in.Get(1))
	checkSingleAuthority(t, h)
}

func TestShrink(t *testing.T) {
	h := FromValues([]int32{3, 1, 4, 1, 5})

	require.NoError(t, h.Shrink(5)) // no-op
	assert.Equal(t, 5, h.Len())

	require.NoError(t, h.Shrink(3))
	assert.Equal(t, 3, h.Len())
	out, err := h.PortalConstControl()
	require.NoError(t, err)
	for i, want := range []int32{3, 1, 4} {
		assert.Equal(t, want, out.Get(i))
	}

	err = h.Shrink(4)
	require.ErrorIs(t, err, ErrBadValue)
}

func TestShrinkKeepsDomainsInStep(t *testing.T) {
	h := FromValues([]int64{0, 1, 2, 3, 4, 5})
	_, err := h.PrepareForInPlace(pool.Tag{})
	require.NoError(t, err)

	// Execution is now the sole valid source; shrinking must apply to
	// the device copy.
	require.NoError(t, h.Shrink(4))
	assert.Equal(t, 4, h.Len())

	out, err := h.PortalConstControl()
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())
	for i := 0; i < 4; i++ {
		assert.Equal(t, int64(i), out.Get(i))
	}
}

func TestRebindPreservesData(t *testing.T) {
	values := []float32{2.5, -1, 0, 42}
	h := FromValues(values)

	_, err := h.PrepareForInput(serial.Tag{})
	require.NoError(t, err)

	// Rebinding to a different adapter must flush the device copy to
	// control storage first, so nothing is lost.
	in, err := h.PrepareForInput(pool.Tag{})
	require.NoError(t, err)
	require.Equal(t, len(values), in.Len())
	for i, want := range values {
		assert.Equal(t, want, in.Get(i))
	}

	out, err := h.PortalConstControl()
	require.NoError(t, err)
	for i, want := range values {
		assert.Equal(t, want, out.Get(i))
	}
	checkSingleAuthority(t, h)
}

func TestRebindAfterDeviceWrites(t *testing.T) {
	h := New[int32]()
	out, err := h.PrepareForOutput(3, pool.Tag{})
	require.NoError(t, err)
	out.Set(0, 10)
	out.Set(1, 20)
	out.Set(2, 30)

	// The device copy is the only valid source; rebinding must carry
	// the written values over.
	in, err := h.PrepareForInput(serial.Tag{})
	require.NoError(t, err)
	for i, want := range []int32{10, 20, 30} {
		assert.Equal(t, want, in.Get(i))
	}
}

func TestReleaseExecution(t *testing.T) {
	h := FromValues([]int32{1, 2, 3})
	_, err := h.PrepareForInput(pool.Tag{})
	require.NoError(t, err)
	require.True(t, h.s.executionValid)

	h.ReleaseExecution()
	assert.False(t, h.s.executionValid)
	h.ReleaseExecution() // idempotent

	// Control data survives.
	assert.Equal(t, 3, h.Len())
	out, err := h.PortalConstControl()
	require.NoError(t, err)
	assert.Equal(t, int32(2), out.Get(1))
}

func TestRelease(t *testing.T) {
	h := FromValues([]int32{1, 2, 3})
	_, err := h.PrepareForInput(serial.Tag{})
	require.NoError(t, err)

	h.Release()
	assert.Equal(t, 0, h.Len())
	_, err = h.PortalConstControl()
	require.ErrorIs(t, err, ErrBadValue)
	checkSingleAuthority(t, h)
}

func TestHandleCopiesShareState(t *testing.T) {
	h := FromValues([]int32{1, 2, 3})
	h2 := *h // copies share the underlying array

	p, err := h2.PortalControl()
	require.NoError(t, err)
	p.Set(0, 99)

	out, err := h.PortalConstControl()
	require.NoError(t, err)
	assert.Equal(t, int32(99), out.Get(0))
}

func TestPortalControlReleasesExecution(t *testing.T) {
	h := FromValues([]float32{1, 2})
	_, err := h.PrepareForInput(pool.Tag{})
	require.NoError(t, err)
	require.True(t, h.s.executionValid)

	// A mutable control portal invalidates the device copy.
	_, err = h.PortalControl()
	require.NoError(t, err)
	assert.False(t, h.s.executionValid)

	// A read-only control portal does not.
	_, err = h.PrepareForInput(pool.Tag{})
	require.NoError(t, err)
	_, err = h.PortalConstControl()
	require.NoError(t, err)
	assert.True(t, h.s.executionValid)
}

func TestImplicitHandleOnDevice(t *testing.T) {
	h := FromStorage[float32](NewImplicit[float32](NewIndexPortal[float32](6)))

	for _, tag := range testTags {
		in, err := h.PrepareForInput(tag)
		require.NoError(t, err)
		for i := 0; i < 6; i++ {
			assert.Equal(t, float32(i), in.Get(i))
		}
	}

	// Computed values cannot be mutated in place.
	_, err := h.PrepareForInPlace(serial.Tag{})
	require.ErrorIs(t, err, ErrBadValue)
}

func TestFloat16HandleOnDevice(t *testing.T) {
	h := FromStorage[float32](NewFloat16FromSlice([]float32{1, 2, 3}))

	in, err := h.PrepareForInput(pool.Tag{})
	require.NoError(t, err)
	for i, want := range []float32{1, 2, 3} {
		assert.Equal(t, want, in.Get(i))
	}
}

func TestUnknownDeviceTag(t *testing.T) {
	h := FromValues([]int32{1})
	_, err := h.PrepareForInput(unknownTag{})
	require.ErrorIs(t, err, ErrBadValue)
}

// The concrete end-to-end scenario: shrink, device round trip, release.
func TestHandleLifecycleScenario(t *testing.T) {
	h := FromValues([]int32{3, 1, 4, 1, 5})

	require.NoError(t, h.Shrink(3))
	require.Equal(t, 3, h.Len())

	in, err := h.PrepareForInput(serial.Tag{})
	require.NoError(t, err)
	for i, want := range []int32{3, 1, 4} {
		assert.Equal(t, want, in.Get(i))
	}

	h.Release()
	assert.Equal(t, 0, h.Len())
	_, err = h.PortalConstControl()
	require.ErrorIs(t, err, ErrBadValue)
	_, err = h.PrepareForInput(serial.Tag{})
	require.ErrorIs(t, err, ErrBadValue)
}
