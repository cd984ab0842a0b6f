// Copyright 2025 Strand HPC. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import (
	iarray "github.com/strand-hpc/strand/internal/array"
)

// Error kinds surfaced by handles and storages. Match with errors.Is.
var (
	// ErrBadValue signals misuse: no data where data is required,
	// mutation of caller-owned memory, or growing via Shrink.
	ErrBadValue = iarray.ErrBadValue

	// ErrOutOfMemory signals an allocation failure in control or
	// execution storage.
	ErrOutOfMemory = iarray.ErrOutOfMemory

	// ErrInternal signals a bug inside the container layer itself.
	ErrInternal = iarray.ErrInternal
)
