// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launch

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/internal/cli"
	"osvcapsule.sh/log"
)

type LaunchOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&LaunchOptions{}, cobra.Command{
		Short: "Build the image of an application when needed and boot it",
		Use:   "launch [FLAGS] DESCRIPTOR",
		Args:  cmdfactory.ExactArgs(1, "must specify a launch descriptor"),
		Long: heredoc.Doc(`
			Generate the image manifest of the application described by DESCRIPTOR,
			rebuild the image when the manifest or the application changed and boot
			it with the image tool.  The exit code is the one of the image tool.
		`),
		Example: heredoc.Doc(`
			# Boot an application with the default hypervisor
			$ osvcapsule launch hello.yaml

			# Boot an application with VirtualBox
			$ osvcapsule launch --hypervisor vbox hello.yaml
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *LaunchOptions) Run(ctx context.Context, args []string) error {
	l, err := cli.NewLauncher(ctx, args[0])
	if err != nil {
		return err
	}

	code, err := l.Launch(ctx)
	if err != nil {
		return err
	}

	if code != 0 {
		log.G(ctx).Debugf("image tool exited with code %d", code)
		return &cmdfactory.ExitCodeError{Code: code}
	}

	return nil
}
