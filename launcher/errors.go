// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher

import (
	"fmt"

	"osvcapsule.sh/internal/errs"
)

// ExternalBuildFailure is returned when the image tool fails to build the
// image.  ExitCode is -1 when the tool could not be started.
type ExternalBuildFailure struct {
	ExitCode int
	Err      error
}

func (e *ExternalBuildFailure) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("image build failed: %v", e.Err)
	}

	return fmt.Sprintf("image build failed with exit code %d", e.ExitCode)
}

func (e *ExternalBuildFailure) Unwrap() error {
	return e.Err
}

func (e *ExternalBuildFailure) Is(target error) bool {
	return target == errs.ErrBuild
}
