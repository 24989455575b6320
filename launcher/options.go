// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// DefaultTool is the image builder and launcher executable.
const DefaultTool = "capstan"

type LauncherOption func(*Launcher) error

// WithTool sets the image tool executable.
func WithTool(tool string) LauncherOption {
	return func(l *Launcher) error {
		if tool == "" {
			return fmt.Errorf("image tool cannot be empty")
		}

		l.tool = tool
		return nil
	}
}

// WithHypervisor sets the hypervisor selector forwarded to the image tool.
func WithHypervisor(hypervisor string) LauncherOption {
	return func(l *Launcher) error {
		l.hypervisor = hypervisor
		return nil
	}
}

// WithConfDir overrides the per-application configuration directory.
func WithConfDir(dir string) LauncherOption {
	return func(l *Launcher) error {
		l.confDir = dir
		return nil
	}
}

// WithLocalRepository sets the dependency repository root used when the
// application does not provide one.
func WithLocalRepository(dir string) LauncherOption {
	return func(l *Launcher) error {
		l.localRepo = dir
		return nil
	}
}

// WithNativeLibraryPath replaces the native library directories which are
// passed through unchanged.
func WithNativeLibraryPath(list string) LauncherOption {
	return func(l *Launcher) error {
		l.nativeLibraryPath = list
		return nil
	}
}

// WithPattern restricts the application directory files listed in the
// manifest.
func WithPattern(pattern string) LauncherOption {
	return func(l *Launcher) error {
		l.pattern = pattern
		return nil
	}
}

// WithFs sets the filesystem the manifest is generated from and persisted to.
func WithFs(fs afero.Fs) LauncherOption {
	return func(l *Launcher) error {
		l.fs = fs
		return nil
	}
}

func WithStdout(stdout io.Writer) LauncherOption {
	return func(l *Launcher) error {
		l.stdout = stdout
		return nil
	}
}

func WithStderr(stderr io.Writer) LauncherOption {
	return func(l *Launcher) error {
		l.stderr = stderr
		return nil
	}
}

func WithStdin(stdin io.Reader) LauncherOption {
	return func(l *Launcher) error {
		l.stdin = stdin
		return nil
	}
}
