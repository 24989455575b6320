// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/initrd"
	"osvcapsule.sh/internal/cli"
)

type ExportOptions struct {
	Compress bool   `long:"compress" short:"z" usage:"Gzip the archive" local:"true"`
	Output   string `long:"output" short:"o" usage:"Location of the archive" default:"initramfs.cpio" local:"true"`

	out io.Writer
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ExportOptions{out: os.Stdout}, cobra.Command{
		Short: "Export the guest filesystem of an application as a cpio archive",
		Use:   "export [FLAGS] DESCRIPTOR",
		Args:  cmdfactory.ExactArgs(1, "must specify a launch descriptor"),
		Example: heredoc.Doc(`
			# Write the guest filesystem to initramfs.cpio
			$ osvcapsule export hello.yaml

			# Write a compressed archive
			$ osvcapsule export -z -o hello.cpio.gz hello.yaml
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *ExportOptions) Run(ctx context.Context, args []string) error {
	l, err := cli.NewLauncher(ctx, args[0])
	if err != nil {
		return err
	}

	m, err := l.Manifest(ctx)
	if err != nil {
		return err
	}

	ird, err := initrd.NewFromManifest(ctx, m,
		initrd.WithOutput(opts.Output),
		initrd.WithCompress(opts.Compress),
	)
	if err != nil {
		return err
	}

	path, err := ird.Build(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(opts.out, "%s (%d files)\n", path, len(ird.Files()))
	return err
}
