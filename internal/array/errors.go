package array

import (
	"github.com/pkg/errors"
)

// Error kinds raised by the array container layer. All conditions are
// synchronous and raised at the point of violation; nothing is retried.
// Match with errors.Is.
var (
	// ErrBadValue signals misuse of a handle: no data where data is
	// required, mutation of caller-owned memory, or growing via Shrink.
	ErrBadValue = errors.New("bad value")

	// ErrOutOfMemory signals an allocation failure in control or
	// execution storage.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrInternal signals an inconsistency inside the container layer
	// itself. Seeing it means a bug in the coordinator, not user error.
	ErrInternal = errors.New("internal inconsistency")
)

func badValuef(format string, args ...any) error {
	return errors.Wrapf(ErrBadValue, format, args...)
}

func internalf(format string, args ...any) error {
	return errors.Wrapf(ErrInternal, format, args...)
}
