// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/internal/cli"
)

type ManifestOptions struct {
	Check bool `long:"check" short:"c" usage:"Report whether the persisted manifest is stale instead of printing it" local:"true"`

	out io.Writer
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ManifestOptions{out: os.Stdout}, cobra.Command{
		Short: "Print the image manifest of an application",
		Use:   "manifest [FLAGS] DESCRIPTOR",
		Args:  cmdfactory.ExactArgs(1, "must specify a launch descriptor"),
		Example: heredoc.Doc(`
			# Print the manifest which would be passed to the image tool
			$ osvcapsule manifest hello.yaml

			# Exit with code 1 if the image needs to be rebuilt
			$ osvcapsule manifest --check hello.yaml
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *ManifestOptions) Run(ctx context.Context, args []string) error {
	l, err := cli.NewLauncher(ctx, args[0])
	if err != nil {
		return err
	}

	m, err := l.Manifest(ctx)
	if err != nil {
		return err
	}

	if !opts.Check {
		_, err := fmt.Fprint(opts.out, m.String())
		return err
	}

	stale, err := l.IsBuildNeeded(ctx, m)
	if err != nil {
		return err
	}

	if stale {
		fmt.Fprintln(opts.out, "stale")
		return &cmdfactory.ExitCodeError{Code: 1}
	}

	fmt.Fprintln(opts.out, "up to date")

	return nil
}
