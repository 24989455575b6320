// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package remap

import (
	"fmt"

	"osvcapsule.sh/internal/errs"
)

// UnmappableHostPathError is returned when a host path lies under none of
// the known roots and therefore has no place in the guest filesystem.
type UnmappableHostPathError struct {
	Path string
}

func (e *UnmappableHostPathError) Error() string {
	return fmt.Sprintf("unexpected file %s: no guest location known", e.Path)
}

func (e *UnmappableHostPathError) Is(target error) bool {
	return target == errs.ErrUnmappable
}
