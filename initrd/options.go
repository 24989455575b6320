// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package initrd

import "github.com/spf13/afero"

type InitrdOptions struct {
	output   string
	compress bool
	fs       afero.Fs
}

type InitrdOption func(*InitrdOptions) error

// WithOutput sets the archive location.  A temporary file is used otherwise.
func WithOutput(output string) InitrdOption {
	return func(opts *InitrdOptions) error {
		opts.output = output
		return nil
	}
}

// WithCompress gzips the archive.
func WithCompress(compress bool) InitrdOption {
	return func(opts *InitrdOptions) error {
		opts.compress = compress
		return nil
	}
}

// WithFs sets the filesystem host files are read from.
func WithFs(fs afero.Fs) InitrdOption {
	return func(opts *InitrdOptions) error {
		opts.fs = fs
		return nil
	}
}
