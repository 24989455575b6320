// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package launcher turns the launch configuration of a Java application into
// a unikernel image manifest, rebuilds the image when the manifest is stale
// and prepares the process that boots it.
package launcher

// Application is what the launcher needs to know about the application being
// launched.
type Application interface {
	// JarFile is the application jar.
	JarFile() string

	// AppDir is the extracted application directory, empty if there is none.
	AppDir() string

	// AppID identifies the application and its image.
	AppID() string

	// JavaExecutable is the host JVM launcher.
	JavaExecutable() string

	// Command is the host JVM command line, starting with the executable.
	Command() []string

	// Dependencies are the resolved dependency artifacts.
	Dependencies() []string

	// Attribute returns a declared attribute.
	Attribute(name string) (string, bool)
}

// LocalRepositoryProvider is implemented by applications which know the root
// of the local dependency repository.
type LocalRepositoryProvider interface {
	LocalRepository() (string, error)
}

// WrapperProvider is implemented by applications launched through a wrapper.
// An empty path with ok set designates the running launcher itself.
type WrapperProvider interface {
	WrapperJar() (path string, ok bool)
}

// JavaHomeProvider is implemented by applications which pin a runtime home.
type JavaHomeProvider interface {
	JavaHome() string
}
