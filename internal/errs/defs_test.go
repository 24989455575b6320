// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package errs_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"osvcapsule.sh/internal/errs"
)

func TestKinds(t *testing.T) {
	wrapped := fmt.Errorf("preparing launch: %w", errs.ErrBuild)

	assert.True(t, errs.IsBuildError(wrapped))
	assert.False(t, errs.IsIOError(wrapped))
	assert.False(t, errs.IsUnmappableError(wrapped))
	assert.False(t, errs.IsUnsupportedError(wrapped))
	assert.False(t, errs.IsConflictError(wrapped))
	assert.False(t, errs.IsBuildError(nil))
}
