// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cli

import (
	"context"
	"os"

	"osvcapsule.sh/config"
	"osvcapsule.sh/launcher"
	"osvcapsule.sh/log"
)

// NewLauncher loads the descriptor at path and prepares a launcher for it,
// configured from the configuration in ctx.
func NewLauncher(ctx context.Context, path string, opts ...launcher.LauncherOption) (*launcher.Launcher, error) {
	d, err := launcher.LoadDescriptor(path)
	if err != nil {
		return nil, err
	}

	c := *config.G(ctx)
	if err := c.ExpandPaths(); err != nil {
		return nil, err
	}

	log.G(ctx).
		WithField("app", d.AppID()).
		WithField("jar", d.JarFile()).
		Debug("loaded descriptor")

	lopts := []launcher.LauncherOption{
		launcher.WithTool(c.Tool),
		launcher.WithHypervisor(c.Hypervisor),
		launcher.WithConfDir(c.ConfDir),
		launcher.WithLocalRepository(c.LocalRepository),
		launcher.WithNativeLibraryPath(c.NativeLibraryPath),
		launcher.WithPattern(c.Pattern),
		launcher.WithStdout(os.Stdout),
		launcher.WithStderr(os.Stderr),
		launcher.WithStdin(os.Stdin),
	}

	return launcher.New(d, append(lopts, opts...)...)
}
