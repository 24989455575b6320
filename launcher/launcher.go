// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	osexec "os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"osvcapsule.sh/config"
	"osvcapsule.sh/exec"
	"osvcapsule.sh/internal/errs"
	"osvcapsule.sh/log"
	"osvcapsule.sh/manifest"
	"osvcapsule.sh/remap"
)

// ConfDirName is the per-application directory holding the manifest and the
// image tool's state.
const ConfDirName = "osv"

// Launcher prepares a single launch of an application.
type Launcher struct {
	app   Application
	attrs Attributes

	tool              string
	hypervisor        string
	confDir           string
	localRepo         string
	nativeLibraryPath string
	pattern           string
	wrapper           string

	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	remapper *remap.Remapper
	deps     *manifest.DependencySet
}

// runArgs are the flags passed to the image tool.  Unset values are omitted.
type runArgs struct {
	Hypervisor  string `flag:"-p"`
	PortForward string `flag:"-f"`
	NetworkType string `flag:"-n"`
	PhysicalNIC string `flag:"-b"`
}

// New prepares a launcher for app.  The roots used to place files in the
// guest are fixed here: the local repository is taken from the application
// when it provides one and from WithLocalRepository otherwise.
func New(app Application, opts ...LauncherOption) (*Launcher, error) {
	if app == nil {
		return nil, fmt.Errorf("cannot launch without an application")
	}

	l := &Launcher{
		app:  app,
		tool: DefaultTool,
		fs:   afero.NewOsFs(),
		deps: manifest.NewDependencySet(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	var err error
	if l.attrs, err = ParseAttributes(app); err != nil {
		return nil, err
	}

	if p, ok := app.(LocalRepositoryProvider); ok {
		repo, err := p.LocalRepository()
		if err != nil {
			return nil, fmt.Errorf("could not determine local repository: %w", err)
		}

		if repo != "" {
			l.localRepo = repo
		}
	}

	if p, ok := app.(WrapperProvider); ok {
		if path, wrapped := p.WrapperJar(); wrapped {
			if path == "" {
				if path, err = OwnArtifact(); err != nil {
					return nil, fmt.Errorf("could not locate own artifact: %w", err)
				}
			}

			l.wrapper = path
		}
	}

	ropts := []remap.RemapperOption{
		remap.WithJavaExecutable(app.JavaExecutable()),
		remap.WithJar(app.JarFile()),
		remap.WithWrapperJar(l.wrapper),
		remap.WithAppDir(app.AppDir()),
		remap.WithLocalRepository(l.localRepo),
	}

	if p, ok := app.(JavaHomeProvider); ok {
		ropts = append(ropts, remap.WithJavaHome(p.JavaHome()))
	}

	if l.nativeLibraryPath != "" {
		ropts = append(ropts, remap.WithNativeLibraryPath(l.nativeLibraryPath))
	}

	if l.remapper, err = remap.NewRemapper(ropts...); err != nil {
		return nil, err
	}

	return l, nil
}

// Attributes returns the parsed application attributes.
func (l *Launcher) Attributes() Attributes {
	return l.attrs
}

// Remapper returns the remapper configured for the application.
func (l *Launcher) Remapper() *remap.Remapper {
	return l.remapper
}

// Dependencies returns the dependency artifacts recorded so far.
func (l *Launcher) Dependencies() *manifest.DependencySet {
	return l.deps
}

// Resolve returns the guest location of host.  Paths in the local repository
// are recorded so that the manifest lists them.
func (l *Launcher) Resolve(host string) (string, error) {
	if l.remapper.InLocalRepository(host) {
		abs, err := filepath.Abs(host)
		if err != nil {
			return "", err
		}

		l.deps.Add(abs)
	}

	return l.remapper.Remap(host)
}

var pathArgFlags = map[string]bool{
	"-cp":          true,
	"-classpath":   true,
	"--class-path": true,
	"-jar":         true,
}

// valueArgFlags take a separate value which is not a host path.
var valueArgFlags = map[string]bool{
	"-p":                    true,
	"--module-path":         true,
	"--upgrade-module-path": true,
	"--add-modules":         true,
	"--limit-modules":       true,
	"--add-opens":           true,
	"--add-exports":         true,
	"--add-reads":           true,
	"--patch-module":        true,
}

// ResolveCommand rewrites the host JVM command line for the guest.  The
// executable becomes the guest entry point, classpath, agent and boot
// classpath values are resolved entry by entry.  System property values are
// only rewritten when they name an existing path under a known root.  The
// main class, or the jar run with -jar, ends the JVM options and everything
// after it is passed as is.
func (l *Launcher) ResolveCommand(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	out := make([]string, 0, len(tokens))
	out = append(out, remap.GuestJavaExecutable)

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]

		var err error
		switch {
		case !strings.HasPrefix(tok, "-"):
			// Main class followed by the application arguments.
			return append(out, tokens[i:]...), nil

		case (tok == "-m" || tok == "--module") && i+1 < len(tokens):
			return append(out, tokens[i:]...), nil

		case pathArgFlags[tok] && i+1 < len(tokens):
			var list string
			if list, err = l.resolveList(tokens[i+1], true); err != nil {
				return nil, err
			}

			out = append(out, tok, list)
			i++

			if tok == "-jar" {
				return append(out, tokens[i+1:]...), nil
			}

			continue

		case valueArgFlags[tok] && i+1 < len(tokens):
			out = append(out, tok)
			tok = tokens[i+1]
			i++

		case strings.HasPrefix(tok, "-javaagent:"):
			agent, opts, hasOpts := strings.Cut(strings.TrimPrefix(tok, "-javaagent:"), "=")
			if agent, err = l.resolveEntry(agent, true); err != nil {
				return nil, err
			}

			tok = "-javaagent:" + agent
			if hasOpts {
				tok += "=" + opts
			}

		case strings.HasPrefix(tok, "-Xbootclasspath"):
			if flag, list, ok := strings.Cut(tok, ":"); ok {
				if list, err = l.resolveList(list, true); err != nil {
					return nil, err
				}

				tok = flag + ":" + list
			}

		case strings.HasPrefix(tok, "-D"):
			if key, value, ok := strings.Cut(tok, "="); ok {
				if value, err = l.resolveList(value, false); err != nil {
					return nil, err
				}

				tok = key + "=" + value
			}
		}

		out = append(out, tok)
	}

	return out, nil
}

func (l *Launcher) resolveList(list string, strict bool) (string, error) {
	entries := strings.Split(list, ":")

	for i, entry := range entries {
		guest, err := l.resolveEntry(entry, strict)
		if err != nil {
			return "", err
		}

		entries[i] = guest
	}

	return strings.Join(entries, ":"), nil
}

// resolveEntry resolves absolute paths.  Unless strict, paths which do not
// exist on the host or lie outside every known root are left as they are.
func (l *Launcher) resolveEntry(entry string, strict bool) (string, error) {
	if !filepath.IsAbs(entry) {
		return entry, nil
	}

	if strict {
		return l.Resolve(entry)
	}

	if exists, err := afero.Exists(l.fs, entry); err != nil || !exists {
		return entry, nil
	}

	if _, err := l.remapper.Classify(entry); err != nil {
		if errs.IsUnmappableError(err) {
			return entry, nil
		}

		return "", err
	}

	return l.Resolve(entry)
}

// ConfDir returns the directory holding the manifest.  It is the configured
// directory, else a directory inside the application directory, else a
// directory in the state directory named after the application.
func (l *Launcher) ConfDir() (string, error) {
	var dir string

	switch {
	case l.confDir != "":
		dir = l.confDir
	case l.app.AppDir() != "":
		dir = filepath.Join(l.app.AppDir(), ConfDirName)
	default:
		dir = filepath.Join(config.StateDir(), l.app.AppID(), ConfDirName)
	}

	return filepath.Abs(dir)
}

// ConfFile returns the location of the persisted manifest.
func (l *Launcher) ConfFile() (string, error) {
	dir, err := l.ConfDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, manifest.FileName), nil
}

// Manifest resolves the launch inputs and generates the manifest.
func (l *Launcher) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	for _, dep := range l.app.Dependencies() {
		if _, err := l.Resolve(dep); err != nil {
			return nil, err
		}
	}

	command, err := l.ResolveCommand(l.app.Command())
	if err != nil {
		return nil, err
	}

	confDir, err := l.ConfDir()
	if err != nil {
		return nil, err
	}

	gopts := []manifest.GeneratorOption{
		manifest.WithFs(l.fs),
		manifest.WithExclude(confDir),
	}

	if l.pattern != "" {
		gopts = append(gopts, manifest.WithPattern(l.pattern))
	}

	g, err := manifest.NewGenerator(l.remapper, gopts...)
	if err != nil {
		return nil, err
	}

	return g.Generate(ctx, manifest.Inputs{
		Jar:          l.app.JarFile(),
		AppDir:       l.app.AppDir(),
		Dependencies: l.deps,
		Command:      command,
		JavaVersion:  l.attrs.JavaVersion,
	})
}

// IsBuildNeeded reports whether the persisted manifest is stale for m.
func (l *Launcher) IsBuildNeeded(ctx context.Context, m *manifest.Manifest) (bool, error) {
	confFile, err := l.ConfFile()
	if err != nil {
		return false, err
	}

	dopts := []manifest.DetectorOption{manifest.WithDetectorFs(l.fs)}
	if l.wrapper != "" {
		dopts = append(dopts, manifest.WithWrapper(l.wrapper))
	}

	return manifest.NewDetector(confFile, l.app.JarFile(), dopts...).
		IsBuildNeeded(ctx, []byte(m.String()))
}

// Refresh generates the manifest and persists it when the persisted one is
// stale.  With build set the image is then rebuilt.  It reports whether the
// manifest was stale.
func (l *Launcher) Refresh(ctx context.Context, build bool) (bool, error) {
	m, err := l.Manifest(ctx)
	if err != nil {
		return false, err
	}

	needed, err := l.IsBuildNeeded(ctx, m)
	if err != nil || !needed {
		return false, err
	}

	log.G(ctx).Debug("image needs to be re-created")

	confFile, err := l.ConfFile()
	if err != nil {
		return false, err
	}

	if err := manifest.Write(l.fs, confFile, m); err != nil {
		return false, err
	}

	log.G(ctx).Debugf("conf file written: %s", confFile)

	if build {
		if err := l.Build(ctx); err != nil {
			return true, err
		}
	}

	return true, nil
}

// Prelaunch refreshes the manifest and image and returns the unstarted
// process which boots the image.  In image only mode the image is not
// rebuilt here, the returned process builds it instead.
func (l *Launcher) Prelaunch(ctx context.Context) (*exec.Process, error) {
	if _, err := l.Refresh(ctx, !l.attrs.ImageOnly); err != nil {
		return nil, err
	}

	return l.process()
}

// Build invokes the image tool to build the image from the persisted
// manifest.  It blocks until the tool exits.
func (l *Launcher) Build(ctx context.Context) error {
	confDir, err := l.ConfDir()
	if err != nil {
		return err
	}

	log.G(ctx).
		WithField("app", l.app.AppID()).
		Info("re-creating image")

	p, err := exec.NewProcess(l.tool, []string{"build"}, l.execOptions(confDir)...)
	if err != nil {
		return err
	}

	if err := p.StartAndWait(ctx); err != nil {
		return &ExternalBuildFailure{ExitCode: p.ExitCode(), Err: err}
	}

	log.G(ctx).Debug("image re-created")

	return nil
}

// Launch runs Prelaunch and the resulting process, returning its exit code.
func (l *Launcher) Launch(ctx context.Context) (int, error) {
	p, err := l.Prelaunch(ctx)
	if err != nil {
		return -1, err
	}

	if err := p.StartAndWait(ctx); err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			return p.ExitCode(), nil
		}

		return -1, err
	}

	return 0, nil
}

func (l *Launcher) process() (*exec.Process, error) {
	confDir, err := l.ConfDir()
	if err != nil {
		return nil, err
	}

	command := "run"
	if l.attrs.ImageOnly {
		command = "build"
	}

	e, err := exec.NewExecutable(l.tool, runArgs{
		Hypervisor:  l.hypervisor,
		PortForward: l.attrs.PortForward,
		NetworkType: l.attrs.NetworkType,
		PhysicalNIC: l.attrs.PhysicalNIC,
	}, command)
	if err != nil {
		return nil, err
	}

	if l.attrs.ImageOnly {
		e.Append(l.app.AppID())
	}

	return exec.NewProcessFromExecutable(e, l.execOptions(confDir)...)
}

func (l *Launcher) execOptions(dir string) []exec.ExecOption {
	eopts := []exec.ExecOption{exec.WithWorkdir(dir)}

	if l.stdout != nil {
		eopts = append(eopts, exec.WithStdout(l.stdout))
	}
	if l.stderr != nil {
		eopts = append(eopts, exec.WithStderr(l.stderr))
	}
	if l.stdin != nil {
		eopts = append(eopts, exec.WithStdin(l.stdin))
	}

	return eopts
}
