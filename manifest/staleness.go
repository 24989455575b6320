// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"osvcapsule.sh/log"
)

type DetectorOption func(*Detector)

// WithDetectorFs sets the filesystem used to inspect the manifest and its
// inputs.
func WithDetectorFs(fs afero.Fs) DetectorOption {
	return func(d *Detector) {
		d.fs = fs
	}
}

// WithWrapper additionally compares against the modification time of a
// wrapper artifact.
func WithWrapper(path string) DetectorOption {
	return func(d *Detector) {
		d.wrapper = path
	}
}

// Detector decides whether a previously persisted manifest is stale.
type Detector struct {
	fs       afero.Fs
	confFile string
	jar      string
	wrapper  string
}

func NewDetector(confFile, jar string, opts ...DetectorOption) *Detector {
	d := &Detector{
		fs:       afero.NewOsFs(),
		confFile: confFile,
		jar:      jar,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// IsBuildNeeded reports whether the image must be rebuilt for the freshly
// rendered manifest text.  It does if the persisted manifest is missing,
// differs from text, or is older than the application jar (or the wrapper,
// whichever is newer).  Failing to inspect any of these files is an error,
// never an implicit "not needed".
func (d *Detector) IsBuildNeeded(ctx context.Context, text []byte) (bool, error) {
	confInfo, err := d.fs.Stat(d.confFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.G(ctx).Debugf("conf file %s is not present", d.confFile)
		return true, nil
	} else if err != nil {
		return false, &ManifestIOError{Op: "stat", Path: d.confFile, Err: err}
	}

	persisted, err := afero.ReadFile(d.fs, d.confFile)
	if err != nil {
		return false, &ManifestIOError{Op: "read", Path: d.confFile, Err: err}
	}

	if !bytes.Equal(persisted, text) {
		log.G(ctx).Debugf("conf file %s content has changed", d.confFile)
		return true, nil
	}

	inputTime, err := d.inputTime()
	if err != nil {
		return false, err
	}

	if confInfo.ModTime().Before(inputTime) {
		log.G(ctx).Debugf("application %s has changed", d.jar)
		return true, nil
	}

	return false, nil
}

// inputTime returns the newest modification time of the jar and wrapper.
func (d *Detector) inputTime() (time.Time, error) {
	var newest time.Time

	for _, p := range []string{d.jar, d.wrapper} {
		if p == "" {
			continue
		}

		fi, err := d.fs.Stat(p)
		if err != nil {
			return time.Time{}, &ManifestIOError{Op: "stat", Path: p, Err: err}
		}

		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}

	return newest, nil
}

// Write persists the manifest, creating its directory when missing.
func Write(fs afero.Fs, path string, m *Manifest) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ManifestIOError{Op: "create directory for", Path: path, Err: err}
	}

	if err := afero.WriteFile(fs, path, []byte(m.String()), 0o644); err != nil {
		return &ManifestIOError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Read loads a persisted manifest.
func Read(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &ManifestIOError{Op: "read", Path: path, Err: err}
	}

	return Parse(string(data))
}
