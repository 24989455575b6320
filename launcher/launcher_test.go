// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osvcapsule.sh/config"
	"osvcapsule.sh/internal/errs"
	"osvcapsule.sh/launcher"
	"osvcapsule.sh/manifest"
	"osvcapsule.sh/remap"
)

type testApp struct {
	jar   string
	dir   string
	repo  string
	cmd   []string
	deps  []string
	attrs map[string]string
}

func (a *testApp) JarFile() string        { return a.jar }
func (a *testApp) AppDir() string         { return a.dir }
func (a *testApp) AppID() string          { return "hello" }
func (a *testApp) JavaExecutable() string { return "/opt/jdk/bin/java" }
func (a *testApp) Command() []string      { return a.cmd }
func (a *testApp) Dependencies() []string { return a.deps }

func (a *testApp) Attribute(name string) (string, bool) {
	v, ok := a.attrs[name]
	return v, ok
}

func (a *testApp) LocalRepository() (string, error) { return a.repo, nil }

type wrappedApp struct{ *testApp }

func (a wrappedApp) WrapperJar() (string, bool) { return "", true }

type fixture struct {
	root string
	app  *testApp
	dep  string
	log  string
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	f := &fixture{
		root: root,
		dep:  filepath.Join(root, "m2", "org", "lib", "1.0", "lib-1.0.jar"),
		log:  filepath.Join(root, "tool.log"),
	}

	f.app = &testApp{
		jar:   filepath.Join(root, "hello.jar"),
		dir:   filepath.Join(root, "apps", "hello"),
		repo:  filepath.Join(root, "m2"),
		attrs: map[string]string{},
	}
	f.app.deps = []string{f.dep}
	f.app.cmd = []string{"/opt/jdk/bin/java", "-server", "-cp", f.app.jar + ":" + f.dep, "Hello"}

	writeFile(t, f.app.jar, "jar", 0o644)
	writeFile(t, f.dep, "lib", 0o644)
	writeFile(t, filepath.Join(f.app.dir, "a.txt"), "a", 0o644)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(f.app.jar, past, past))

	return f
}

// tool writes an image tool stand-in which records its invocations.
func (f *fixture) tool(t *testing.T, buildExit, runExit int) string {
	t.Helper()

	path := filepath.Join(f.root, "bin", "tool")
	writeFile(t, path, fmt.Sprintf(
		"#!/bin/sh\necho \"$*\" >> %q\ncase \"$1\" in\n  build) exit %d ;;\n  run) exit %d ;;\nesac\n",
		f.log, buildExit, runExit,
	), 0o755)

	return path
}

func (f *fixture) invocations(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(f.log)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestPrelaunchBuildsOnlyWhenStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tool := f.tool(t, 0, 0)

	f.app.attrs[launcher.AttrPortForward] = "8080:80"

	l, err := launcher.New(f.app, launcher.WithTool(tool), launcher.WithHypervisor("qemu"))
	require.NoError(t, err)

	p, err := l.Prelaunch(ctx)
	require.NoError(t, err)

	confDir := filepath.Join(f.app.dir, "osv")
	assert.Equal(t, confDir, p.Dir())
	assert.Equal(t, []string{tool, "run", "-p", "qemu", "-f", "8080:80"}, p.Argv())
	assert.Equal(t, []string{"build"}, f.invocations(t))

	m, err := manifest.Read(afero.NewOsFs(), filepath.Join(confDir, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, "/java.so -cp /hello.jar:/capsule/dep/lib-1.0.jar Hello", m.Cmdline)
	assert.Equal(t, []manifest.FileMapping{
		{Guest: "/hello.jar", Host: f.app.jar},
		{Guest: "/capsule/app/a.txt", Host: filepath.Join(f.app.dir, "a.txt")},
		{Guest: "/capsule/dep/lib-1.0.jar", Host: f.dep},
	}, m.Files)

	// Unchanged inputs reuse the image.
	l, err = launcher.New(f.app, launcher.WithTool(tool))
	require.NoError(t, err)

	_, err = l.Prelaunch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, f.invocations(t))

	// A newer jar rebuilds it.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(f.app.jar, future, future))

	_, err = l.Prelaunch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "build"}, f.invocations(t))
}

func TestPrelaunchBuildFailure(t *testing.T) {
	f := newFixture(t)

	l, err := launcher.New(f.app, launcher.WithTool(f.tool(t, 2, 0)))
	require.NoError(t, err)

	_, err = l.Prelaunch(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsBuildError(err))

	var failure *launcher.ExternalBuildFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 2, failure.ExitCode)
}

func TestPrelaunchMissingTool(t *testing.T) {
	f := newFixture(t)

	l, err := launcher.New(f.app, launcher.WithTool(filepath.Join(f.root, "missing")))
	require.NoError(t, err)

	_, err = l.Prelaunch(context.Background())

	var failure *launcher.ExternalBuildFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, -1, failure.ExitCode)
}

func TestPrelaunchImageOnly(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, 0, 0)

	f.app.attrs[launcher.AttrImageOnly] = "true"

	l, err := launcher.New(f.app, launcher.WithTool(tool))
	require.NoError(t, err)

	p, err := l.Prelaunch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.invocations(t))
	assert.Equal(t, []string{tool, "build", "hello"}, p.Argv())
	assert.FileExists(t, filepath.Join(f.app.dir, "osv", manifest.FileName))
}

func TestPrelaunchUnsupportedVersion(t *testing.T) {
	f := newFixture(t)
	f.app.attrs[launcher.AttrJavaVersion] = "11"

	l, err := launcher.New(f.app, launcher.WithTool(f.tool(t, 0, 0)))
	require.NoError(t, err)

	_, err = l.Prelaunch(context.Background())
	assert.True(t, errs.IsUnsupportedError(err))
	assert.Empty(t, f.invocations(t))
	assert.NoDirExists(t, filepath.Join(f.app.dir, "osv"))
}

func TestLaunchReturnsExitCode(t *testing.T) {
	f := newFixture(t)

	l, err := launcher.New(f.app, launcher.WithTool(f.tool(t, 0, 7)))
	require.NoError(t, err)

	code, err := l.Launch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, code)
	assert.Equal(t, []string{"build", "run"}, f.invocations(t))
}

func TestNewInvalidImageOnly(t *testing.T) {
	f := newFixture(t)
	f.app.attrs[launcher.AttrImageOnly] = "perhaps"

	_, err := launcher.New(f.app)
	assert.Error(t, err)
}

func TestNewWrappedUsesOwnArtifact(t *testing.T) {
	f := newFixture(t)

	l, err := launcher.New(wrappedApp{f.app})
	require.NoError(t, err)

	own, err := launcher.OwnArtifact()
	require.NoError(t, err)

	role, err := l.Remapper().Classify(own)
	require.NoError(t, err)
	assert.Equal(t, remap.OwnWrapperJar, role)
}

func TestResolveRecordsDependencies(t *testing.T) {
	f := newFixture(t)

	l, err := launcher.New(f.app)
	require.NoError(t, err)

	guest, err := l.Resolve(f.dep)
	require.NoError(t, err)
	assert.Equal(t, "/capsule/dep/lib-1.0.jar", guest)
	assert.True(t, l.Dependencies().Contains(f.dep))

	guest, err = l.Resolve(filepath.Join(f.app.dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "/capsule/app/a.txt", guest)
	assert.Equal(t, 1, l.Dependencies().Len())
}

func TestResolveCommand(t *testing.T) {
	f := newFixture(t)

	agent := filepath.Join(f.app.dir, "agent.jar")
	props := filepath.Join(f.app.dir, "conf", "app.properties")
	writeFile(t, agent, "agent", 0o644)
	writeFile(t, props, "p", 0o644)

	l, err := launcher.New(f.app)
	require.NoError(t, err)

	got, err := l.ResolveCommand([]string{
		"/opt/jdk/bin/java",
		"-server",
		"-Dconfig=" + props,
		"-Dendpoint=/api/v1",
		"-Djava.io.tmpdir=" + f.root,
		"-Dsearch=" + props + ":" + f.root,
		"-javaagent:" + agent + "=verbose",
		"-Xbootclasspath/a:" + f.dep,
		"--add-opens", "java.base/java.lang=ALL-UNNAMED",
		"-cp", f.app.jar + ":lib/*",
		"Hello",
		props,
		"/not/on/this/host",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/java.so",
		"-server",
		"-Dconfig=/capsule/app/conf/app.properties",
		"-Dendpoint=/api/v1",
		"-Djava.io.tmpdir=" + f.root,
		"-Dsearch=/capsule/app/conf/app.properties:" + f.root,
		"-javaagent:/capsule/app/agent.jar=verbose",
		"-Xbootclasspath/a:/capsule/dep/lib-1.0.jar",
		"--add-opens", "java.base/java.lang=ALL-UNNAMED",
		"-cp", "/hello.jar:lib/*",
		"Hello",
		props,
		"/not/on/this/host",
	}, got)
	assert.True(t, l.Dependencies().Contains(f.dep))
}

func TestResolveCommandKeepsApplicationArguments(t *testing.T) {
	f := newFixture(t)

	outside := filepath.Join(f.root, "outside.txt")
	writeFile(t, outside, "x", 0o644)

	l, err := launcher.New(f.app)
	require.NoError(t, err)

	got, err := l.ResolveCommand([]string{
		"/opt/jdk/bin/java",
		"-Dlog.dir=" + f.root,
		"-jar", f.app.jar,
		outside,
		"-cp", "/etc/hostname",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/java.so",
		"-Dlog.dir=" + f.root,
		"-jar", "/hello.jar",
		outside,
		"-cp", "/etc/hostname",
	}, got)

	got, err = l.ResolveCommand([]string{"/opt/jdk/bin/java", "Hello", outside, f.app.jar})
	require.NoError(t, err)
	assert.Equal(t, []string{"/java.so", "Hello", outside, f.app.jar}, got)
}

func TestResolveCommandUnmappable(t *testing.T) {
	f := newFixture(t)

	l, err := launcher.New(f.app)
	require.NoError(t, err)

	_, err = l.ResolveCommand([]string{"java", "-cp", filepath.Join(f.root, "elsewhere", "x.jar"), "Hello"})
	require.Error(t, err)
	assert.True(t, errs.IsUnmappableError(err))
}

func TestConfDir(t *testing.T) {
	f := newFixture(t)

	l, err := launcher.New(f.app)
	require.NoError(t, err)

	dir, err := l.ConfDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.app.dir, "osv"), dir)

	override := filepath.Join(f.root, "conf")
	l, err = launcher.New(f.app, launcher.WithConfDir(override))
	require.NoError(t, err)

	dir, err = l.ConfDir()
	require.NoError(t, err)
	assert.Equal(t, override, dir)

	state := filepath.Join(f.root, "state")
	t.Setenv(config.OSVCAPSULE_STATE_DIR, state)

	f.app.dir = ""
	l, err = launcher.New(f.app)
	require.NoError(t, err)

	dir, err = l.ConfDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state, "hello", "osv"), dir)
}

func TestRefreshBuildsImageOnlyApplication(t *testing.T) {
	f := newFixture(t)
	f.app.attrs[launcher.AttrImageOnly] = "yes"

	_, err := launcher.New(f.app)
	require.Error(t, err, "yes is not a boolean")

	f.app.attrs[launcher.AttrImageOnly] = "1"

	l, err := launcher.New(f.app, launcher.WithTool(f.tool(t, 0, 0)))
	require.NoError(t, err)

	stale, err := l.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, []string{"build"}, f.invocations(t))

	stale, err = l.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, []string{"build"}, f.invocations(t))
}
