// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher

import (
	"os"
	"path/filepath"
	"sync"
)

// ownArtifact is resolved at most once per process.
var ownArtifact = sync.OnceValues(func() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(exe)
})

// OwnArtifact returns the location of the running launcher binary with
// symbolic links evaluated.
func OwnArtifact() (string, error) {
	return ownArtifact()
}
