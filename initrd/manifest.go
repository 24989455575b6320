// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package initrd

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/cavaliergopher/cpio"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"osvcapsule.sh/log"
	"osvcapsule.sh/manifest"
)

type fromManifest struct {
	opts  InitrdOptions
	m     *manifest.Manifest
	files []string
}

// NewFromManifest returns an Initrd which archives every file mapping of m at
// its guest location.
func NewFromManifest(_ context.Context, m *manifest.Manifest, opts ...InitrdOption) (Initrd, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot archive without a manifest")
	}

	initrd := &fromManifest{
		opts: InitrdOptions{fs: afero.NewOsFs()},
		m:    m,
	}

	for _, opt := range opts {
		if err := opt(&initrd.opts); err != nil {
			return nil, err
		}
	}

	return initrd, nil
}

// Build implements Initrd.
func (initrd *fromManifest) Build(ctx context.Context) (string, error) {
	if initrd.opts.output == "" {
		fi, err := os.CreateTemp("", "osvcapsule-initrd-*.cpio")
		if err != nil {
			return "", fmt.Errorf("could not make temporary file: %w", err)
		}

		initrd.opts.output = fi.Name()
		if err := fi.Close(); err != nil {
			return "", fmt.Errorf("could not close temporary file: %w", err)
		}
	}

	f, err := os.OpenFile(initrd.opts.output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("could not open initramfs file: %w", err)
	}

	if err := initrd.write(ctx, f); err != nil {
		f.Close()
		os.Remove(initrd.opts.output)
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(initrd.opts.output)
		return "", fmt.Errorf("could not close initramfs file: %w", err)
	}

	return initrd.opts.output, nil
}

// write archives the manifest into f.
func (initrd *fromManifest) write(ctx context.Context, f *os.File) error {
	var out io.Writer = f

	var gw *gzip.Writer
	if initrd.opts.compress {
		gw = gzip.NewWriter(f)
		out = gw
	}

	writer := cpio.NewWriter(out)

	initrd.files = nil

	for _, dir := range parentDirs(initrd.m.Files) {
		header := &cpio.Header{
			Name: "." + dir,
			Mode: cpio.FileMode(0o755) | cpio.TypeDir,
		}

		if err := writer.WriteHeader(header); err != nil {
			return fmt.Errorf("could not write CPIO header: %w", err)
		}
	}

	for _, file := range initrd.m.Files {
		if err := initrd.archive(ctx, writer, file); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("could not close CPIO writer: %w", err)
	}

	if gw != nil {
		if err := gw.Close(); err != nil {
			return fmt.Errorf("could not close gzip writer: %w", err)
		}
	}

	if fi, err := f.Stat(); err == nil {
		log.G(ctx).
			WithField("size", humanize.Bytes(uint64(fi.Size()))).
			WithField("files", len(initrd.files)).
			Debug(initrd.opts.output)
	}

	return nil
}

func (initrd *fromManifest) archive(ctx context.Context, writer *cpio.Writer, file manifest.FileMapping) error {
	info, err := initrd.opts.fs.Stat(file.Host)
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", file.Host, err)
	}

	if !info.Mode().IsRegular() {
		log.G(ctx).Warnf("unsupported file: %s", file.Host)
		return nil
	}

	data, err := afero.ReadFile(initrd.opts.fs, file.Host)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	internal := "." + file.Guest

	log.G(ctx).
		WithField("file", internal).
		Trace("archiving")

	header := &cpio.Header{
		Name:    internal,
		Mode:    cpio.FileMode(info.Mode().Perm()) | cpio.TypeReg,
		ModTime: info.ModTime(),
		Size:    int64(len(data)),
	}

	if err := writer.WriteHeader(header); err != nil {
		return fmt.Errorf("writing cpio header for %q: %w", internal, err)
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("could not write CPIO data for %s: %w", internal, err)
	}

	initrd.files = append(initrd.files, file.Guest)

	return nil
}

// Files implements Initrd.
func (initrd *fromManifest) Files() []string {
	return initrd.files
}

// parentDirs returns every directory containing a guest file, parents before
// their children.
func parentDirs(files []manifest.FileMapping) []string {
	seen := map[string]bool{}

	for _, file := range files {
		for dir := path.Dir(file.Guest); dir != "/" && dir != "."; dir = path.Dir(dir) {
			seen[dir] = true
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}

	sort.Slice(dirs, func(i, j int) bool {
		if di, dj := strings.Count(dirs[i], "/"), strings.Count(dirs[j], "/"); di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})

	return dirs
}
