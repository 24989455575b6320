// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package remap

// Role identifies which known host-side root a path was classified under.
type Role uint

const (
	Unclassified Role = iota
	AlreadyGuestRooted
	JavaExecutable
	ApplicationJar
	OwnWrapperJar
	AppCacheTree
	DependencyRepoRoot
	NativeLibraryRoot
	JavaRuntimeRoot
)

func (r Role) String() string {
	switch r {
	case AlreadyGuestRooted:
		return "guest"
	case JavaExecutable:
		return "java-executable"
	case ApplicationJar:
		return "jar"
	case OwnWrapperJar:
		return "wrapper"
	case AppCacheTree:
		return "app"
	case DependencyRepoRoot:
		return "dep"
	case NativeLibraryRoot:
		return "native"
	case JavaRuntimeRoot:
		return "java-home"
	default:
		return "unclassified"
	}
}
