// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"osvcapsule.sh/manifest"
)

func TestDependencySet(t *testing.T) {
	ds := manifest.NewDependencySet(
		"/repo/z/z.jar",
		"/repo/a/a.jar",
	)

	assert.True(t, ds.Add("/repo/m/m.jar"))
	assert.False(t, ds.Add("/repo/a/./a.jar"), "cleaned duplicate")
	assert.False(t, ds.Add(""))

	assert.Equal(t, 3, ds.Len())
	assert.True(t, ds.Contains("/repo/z/z.jar"))
	assert.False(t, ds.Contains("/repo/q.jar"))
	assert.Equal(t, []string{
		"/repo/a/a.jar",
		"/repo/m/m.jar",
		"/repo/z/z.jar",
	}, ds.Paths())
}

func TestDependencySetZeroValue(t *testing.T) {
	var ds manifest.DependencySet

	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, ds.Paths())
	assert.True(t, ds.Add("/x"))
}
