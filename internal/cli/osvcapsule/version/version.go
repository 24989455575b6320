// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package version

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/internal/version"
)

type VersionOptions struct {
	out io.Writer
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&VersionOptions{out: os.Stdout}, cobra.Command{
		Short:   "Show osvcapsule version information",
		Use:     "version",
		Aliases: []string{"v"},
		Args:    cmdfactory.NoArgs,
		Example: heredoc.Doc(`
			# Show osvcapsule version information
			$ osvcapsule version
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *VersionOptions) Run(_ context.Context, _ []string) error {
	_, err := fmt.Fprintf(opts.out, "osvcapsule %s", version.String())
	return err
}
