// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/config"
)

func setup(t *testing.T) (context.Context, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.jar"), []byte("jar"), 0o644))

	descriptor := filepath.Join(dir, "hello.yaml")
	require.NoError(t, os.WriteFile(descriptor, []byte("jar: hello.jar\n"), 0o644))

	c, err := config.NewDefaultConfig()
	require.NoError(t, err)

	c.ConfDir = filepath.Join(dir, "conf")
	c.LocalRepository = filepath.Join(dir, "m2")

	ctx := config.WithConfigManager(context.Background(), &config.ConfigManager{Config: c})

	return ctx, descriptor
}

func TestRunPrintsManifest(t *testing.T) {
	ctx, descriptor := setup(t)

	var out bytes.Buffer
	opts := &ManifestOptions{out: &out}

	require.NoError(t, opts.Run(ctx, []string{descriptor}))
	assert.Contains(t, out.String(), "/java.so")
	assert.Contains(t, out.String(), "/hello.jar")
}

func TestRunCheckStale(t *testing.T) {
	ctx, descriptor := setup(t)

	var out bytes.Buffer
	opts := &ManifestOptions{Check: true, out: &out}

	err := opts.Run(ctx, []string{descriptor})

	var exit *cmdfactory.ExitCodeError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
	assert.Equal(t, "stale\n", out.String())
}

func TestRunMissingDescriptor(t *testing.T) {
	ctx, _ := setup(t)

	opts := &ManifestOptions{out: &bytes.Buffer{}}
	assert.Error(t, opts.Run(ctx, []string{filepath.Join(t.TempDir(), "missing.yaml")}))
}
