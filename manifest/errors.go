// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"fmt"

	"osvcapsule.sh/internal/errs"
)

// UnsupportedRuntimeVersionError is returned when the declared Java version
// has no known base image.
type UnsupportedRuntimeVersionError struct {
	Version string
	Err     error
}

func (e *UnsupportedRuntimeVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no known OSv image for Java version %s: %v", e.Version, e.Err)
	}

	return fmt.Sprintf("no known OSv image for Java version %s", e.Version)
}

func (e *UnsupportedRuntimeVersionError) Unwrap() error {
	return e.Err
}

func (e *UnsupportedRuntimeVersionError) Is(target error) bool {
	return target == errs.ErrUnsupported
}

// ManifestIOError is returned when the persisted manifest or the timestamps
// of its inputs cannot be accessed.
type ManifestIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *ManifestIOError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ManifestIOError) Unwrap() error {
	return e.Err
}

func (e *ManifestIOError) Is(target error) bool {
	return target == errs.ErrIO
}

// GuestPathCollisionError is returned when two different host files would be
// copied to the same guest location.
type GuestPathCollisionError struct {
	Guest string
	Hosts [2]string
}

func (e *GuestPathCollisionError) Error() string {
	return fmt.Sprintf("both %s and %s map to %s", e.Hosts[0], e.Hosts[1], e.Guest)
}

func (e *GuestPathCollisionError) Is(target error) bool {
	return target == errs.ErrConflict
}
