// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package initrd exports the guest filesystem described by a manifest as a
// cpio archive.
package initrd

import "context"

// Initrd is a guest filesystem which can be serialized.
type Initrd interface {
	// Build serializes the filesystem and returns the path of the archive.
	Build(context.Context) (string, error)

	// Files returns the guest paths of the archived files.
	Files() []string
}
