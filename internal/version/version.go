// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package version

import (
	"fmt"
	"runtime"
)

// Set at link time with -ldflags "-X osvcapsule.sh/internal/version.version=...".
var (
	version   = "No version provided"
	commit    = "No commit provided"
	buildTime = "No build timestamp provided"
)

// Version returns the osvcapsule version string.
func Version() string {
	return version
}

// Commit returns the HEAD Git commit SHA the binary was built from.
func Commit() string {
	return commit
}

// BuildTime returns the time in which the package or binary was built.
func BuildTime() string {
	return buildTime
}

// String returns all version information.
func String() string {
	return fmt.Sprintf("%s (%s) %s %s\n",
		version,
		commit,
		runtime.Version(),
		buildTime,
	)
}
