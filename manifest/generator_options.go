// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// DefaultPattern selects every regular file of the application directory.
const DefaultPattern = "**"

type GeneratorOption func(*Generator) error

// WithFs sets the filesystem the application directory is read from.
func WithFs(fs afero.Fs) GeneratorOption {
	return func(g *Generator) error {
		g.fs = fs
		return nil
	}
}

// WithPattern restricts the application directory listing to files whose
// slash-separated path relative to the directory matches the glob.
func WithPattern(pattern string) GeneratorOption {
	return func(g *Generator) error {
		if pattern == "" {
			pattern = DefaultPattern
		}

		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return fmt.Errorf("could not compile pattern %q: %w", pattern, err)
		}

		g.pattern = compiled

		return nil
	}
}

// WithExclude skips the provided directories, and everything beneath them,
// while listing the application directory.
func WithExclude(dirs ...string) GeneratorOption {
	return func(g *Generator) error {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}

			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			g.exclude = append(g.exclude, abs)
		}

		return nil
	}
}
