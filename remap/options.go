// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package remap

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultNativeLibraryPath lists the native library directories which are
// expected to be pre-installed in the guest base image.
const DefaultNativeLibraryPath = "/usr/java/packages/lib/amd64:/usr/lib64:/lib64:/lib:/usr/lib"

type RemapperOption func(*Remapper) error

// absolute normalizes a configured root.  Empty values stay empty so that
// the associated rule is disabled.
func absolute(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not resolve absolute path of %s: %w", path, err)
	}

	return abs, nil
}

// WithJavaExecutable sets the host JVM launcher which is substituted by the
// guest's native entry point.
func WithJavaExecutable(path string) RemapperOption {
	return func(r *Remapper) (err error) {
		r.javaExecutable, err = absolute(path)
		return err
	}
}

// WithJar sets the application jar.
func WithJar(path string) RemapperOption {
	return func(r *Remapper) (err error) {
		r.jar, err = absolute(path)
		return err
	}
}

// WithWrapperJar sets the packaging artifact of a delegating launcher.
func WithWrapperJar(path string) RemapperOption {
	return func(r *Remapper) (err error) {
		r.wrapper, err = absolute(path)
		return err
	}
}

// WithAppDir sets the extracted application cache directory.
func WithAppDir(path string) RemapperOption {
	return func(r *Remapper) (err error) {
		r.appDir, err = absolute(path)
		return err
	}
}

// WithLocalRepository sets the root of the local dependency repository.
func WithLocalRepository(path string) RemapperOption {
	return func(r *Remapper) (err error) {
		r.localRepo, err = absolute(path)
		return err
	}
}

// WithJavaHome sets the runtime home whose contents are passed through.
func WithJavaHome(path string) RemapperOption {
	return func(r *Remapper) (err error) {
		r.javaHome, err = absolute(path)
		return err
	}
}

// WithNativeLibraryPath sets the native library search directories from a
// colon-separated list.
func WithNativeLibraryPath(list string) RemapperOption {
	return WithNativeLibraryDirs(filepath.SplitList(list)...)
}

func WithNativeLibraryDirs(dirs ...string) RemapperOption {
	return func(r *Remapper) error {
		r.nativeLibs = make([]string, 0, len(dirs))

		for _, dir := range dirs {
			dir = strings.TrimSpace(dir)
			if dir == "" {
				continue
			}

			r.nativeLibs = append(r.nativeLibs, filepath.Clean(dir))
		}

		return nil
	}
}
