// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"osvcapsule.sh/log"
)

// PathRemapper computes the guest location of a host path.
type PathRemapper interface {
	Remap(host string) (string, error)
}

// Inputs are the resolved launch inputs a manifest is generated from.
type Inputs struct {
	// Jar is the application jar.
	Jar string

	// AppDir is the extracted application cache directory, if any.
	AppDir string

	// Dependencies are the resolved artifacts of the local repository.
	Dependencies *DependencySet

	// Command is the boot command line, already expressed in guest paths.
	Command []string

	// JavaVersion is the declared Java version, empty when not declared.
	JavaVersion string
}

type Generator struct {
	remapper PathRemapper
	fs       afero.Fs
	pattern  glob.Glob
	exclude  []string
}

func NewGenerator(remapper PathRemapper, opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{
		remapper: remapper,
		fs:       afero.NewOsFs(),
	}

	if err := WithPattern(DefaultPattern)(g); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Generate builds the manifest.  Files are listed in a fixed order: the
// application jar, the application directory and finally the dependencies,
// so that identical inputs always render identical text.
func (g *Generator) Generate(ctx context.Context, in Inputs) (*Manifest, error) {
	base, err := BaseImage(in.JavaVersion)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Base:    base,
		Cmdline: BootCommandLine(in.Command),
	}

	seen := map[string]string{}
	add := func(host string) error {
		guest, err := g.remapper.Remap(host)
		if err != nil {
			return err
		}

		if prev, ok := seen[guest]; ok {
			if prev == host {
				return nil
			}

			return &GuestPathCollisionError{Guest: guest, Hosts: [2]string{prev, host}}
		}

		seen[guest] = host
		m.Files = append(m.Files, FileMapping{Guest: guest, Host: host})

		log.G(ctx).
			WithField("guest", guest).
			Trace(host)

		return nil
	}

	if in.Jar != "" {
		jar, err := filepath.Abs(in.Jar)
		if err != nil {
			return nil, err
		}

		if err := add(jar); err != nil {
			return nil, err
		}
	}

	if in.AppDir != "" {
		appDir, err := filepath.Abs(in.AppDir)
		if err != nil {
			return nil, err
		}

		files, err := g.listDir(ctx, appDir)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			if err := add(f); err != nil {
				return nil, err
			}
		}
	}

	if in.Dependencies != nil {
		for _, dep := range in.Dependencies.Paths() {
			if err := add(dep); err != nil {
				return nil, err
			}
		}
	}

	log.G(ctx).
		WithField("base", m.Base).
		Debugf("generated manifest with %d files", len(m.Files))

	return m, nil
}

// listDir returns the regular files beneath root which match the pattern.
// Every directory contributes its own files first, sorted by name, followed
// by the contents of its subdirectories, also sorted by name.
func (g *Generator) listDir(ctx context.Context, root string) ([]string, error) {
	var files []string

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := afero.ReadDir(g.fs, dir)
		if err != nil {
			return &ManifestIOError{Op: "list", Path: dir, Err: err}
		}

		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})

		var dirs []string
		for _, entry := range entries {
			p := filepath.Join(dir, entry.Name())

			// Follow symbolic links when deciding what the entry is.
			fi, err := g.fs.Stat(p)
			if errors.Is(err, fs.ErrNotExist) && g.dangling(p) {
				log.G(ctx).Tracef("skipping dangling link %s", p)
				continue
			} else if err != nil {
				return &ManifestIOError{Op: "stat", Path: p, Err: err}
			}

			if fi.IsDir() {
				if !g.excluded(p) {
					dirs = append(dirs, p)
				}
				continue
			}

			if !fi.Mode().IsRegular() {
				continue
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}

			if g.pattern.Match(filepath.ToSlash(rel)) {
				files = append(files, p)
			}
		}

		for _, d := range dirs {
			if err := walk(d); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}

	return files, nil
}

// dangling reports whether p is a symbolic link whose target is missing.
func (g *Generator) dangling(p string) bool {
	lstater, ok := g.fs.(afero.Lstater)
	if !ok {
		return false
	}

	fi, _, err := lstater.LstatIfPossible(p)
	return err == nil && fi.Mode()&fs.ModeSymlink != 0
}

func (g *Generator) excluded(dir string) bool {
	for _, ex := range g.exclude {
		if dir == ex {
			return true
		}
	}

	return false
}
