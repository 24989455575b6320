// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package osvcapsule

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/rancher/wrangler/pkg/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/config"
	"osvcapsule.sh/internal/cli"
	kitversion "osvcapsule.sh/internal/version"
	"osvcapsule.sh/log"

	"osvcapsule.sh/internal/cli/osvcapsule/build"
	"osvcapsule.sh/internal/cli/osvcapsule/export"
	"osvcapsule.sh/internal/cli/osvcapsule/launch"
	"osvcapsule.sh/internal/cli/osvcapsule/manifest"
	"osvcapsule.sh/internal/cli/osvcapsule/version"
)

type OsvcapsuleOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&OsvcapsuleOptions{}, cobra.Command{
		Short: "Run Java applications as OSv unikernels",
		Use:   "osvcapsule [FLAGS] SUBCOMMAND",
		Long: heredoc.Docf(`
			Run Java applications as OSv unikernels.

			The launch configuration of an application is rewritten for the guest
			filesystem, the image manifest is regenerated and the image is rebuilt
			only when it is stale.

			Version: %s`, kitversion.Version()),
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.AddCommand(launch.NewCmd())
	cmd.AddCommand(build.NewCmd())
	cmd.AddCommand(manifest.NewCmd())
	cmd.AddCommand(export.NewCmd())
	cmd.AddCommand(version.NewCmd())

	return cmd
}

// PersistentPre applies the log flags, which are only parsed once the command
// line is.
func (*OsvcapsuleOptions) PersistentPre(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := config.G(ctx).Validate(); err != nil {
		return cmdfactory.FlagErrorWrap(err)
	}

	cli.ConfigureLogger(log.G(ctx), config.G(ctx))

	return nil
}

func (*OsvcapsuleOptions) Run(_ context.Context, _ []string) error {
	return pflag.ErrHelp
}

func Main(args []string) int {
	cmd := NewCmd()
	cmd.SetArgs(args)

	ctx := signals.SetupSignalContext()
	copts := &cli.CliOptions{}

	for _, o := range []cli.CliOption{
		cli.WithDefaultConfigManager(cmd),
		cli.WithDefaultLogger(),
	} {
		if err := o(copts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	ctx = config.WithConfigManager(ctx, copts.ConfigManager)
	ctx = log.WithLogger(ctx, copts.Logger)

	log.G(ctx).Debugf("osvcapsule %s", kitversion.Version())

	return cmdfactory.Main(ctx, cmd)
}
