// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package errs

import "errors"

var (
	// ErrUnmappable is returned when a host path cannot be placed in the guest
	// namespace
	ErrUnmappable = errors.New("unmappable host path")

	// ErrUnsupported is returned when a declared runtime has no known base image
	ErrUnsupported = errors.New("unsupported")

	// ErrConflict is returned when two different host files would occupy the
	// same guest path
	ErrConflict = errors.New("conflict")

	// ErrIO is returned when the persisted manifest or its inputs cannot be
	// read, written or stat'ed
	ErrIO = errors.New("manifest i/o")

	// ErrBuild is returned when the external image builder exits non-zero
	ErrBuild = errors.New("image build failed")
)

func IsUnmappableError(err error) bool {
	return errors.Is(err, ErrUnmappable)
}

func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}

func IsBuildError(err error) bool {
	return errors.Is(err, ErrBuild)
}
