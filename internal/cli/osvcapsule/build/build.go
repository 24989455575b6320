// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package build

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/internal/cli"
	"osvcapsule.sh/log"
)

type BuildOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&BuildOptions{}, cobra.Command{
		Short: "Build the image of an application without booting it",
		Use:   "build [FLAGS] DESCRIPTOR",
		Args:  cmdfactory.ExactArgs(1, "must specify a launch descriptor"),
		Example: heredoc.Doc(`
			# Rebuild the image of an application if it is stale
			$ osvcapsule build hello.yaml
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *BuildOptions) Run(ctx context.Context, args []string) error {
	l, err := cli.NewLauncher(ctx, args[0])
	if err != nil {
		return err
	}

	rebuilt, err := l.Refresh(ctx, true)
	if err != nil {
		return err
	}

	if !rebuilt {
		log.G(ctx).Info("image is up to date")
	}

	return nil
}
