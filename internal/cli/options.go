// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package cli holds the pieces shared by the osvcapsule commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"osvcapsule.sh/cmdfactory"
	"osvcapsule.sh/config"
	"osvcapsule.sh/log"
)

type CliOptions struct {
	ConfigManager *config.ConfigManager
	Logger        *logrus.Logger
}

type CliOption func(*CliOptions) error

// WithDefaultConfigManager instantiates a configuration manager from the
// default configuration file and the environment, and binds the
// configuration to the persistent flags of cmd.
func WithDefaultConfigManager(cmd *cobra.Command) CliOption {
	return func(copts *CliOptions) error {
		if copts.ConfigManager != nil {
			return nil
		}

		cfgm, err := config.NewConfigManager(
			config.WithDefaultConfigFile(),
			config.WithEnv(),
		)
		if err != nil {
			return err
		}

		// Attribute all configuration flags and command-line argument values
		if err := cmdfactory.AttributeFlags(cmd, cfgm.Config); err != nil {
			return err
		}

		copts.ConfigManager = cfgm

		return nil
	}
}

// WithDefaultLogger sets up the built in logger based on provided config found
// from the ConfigManager.
func WithDefaultLogger() CliOption {
	return func(copts *CliOptions) error {
		if copts.Logger != nil {
			return nil
		}

		if copts.ConfigManager == nil {
			return fmt.Errorf("cannot configure logger without configuration")
		}

		copts.Logger = NewLogger(copts.ConfigManager.Config)

		return nil
	}
}

// NewLogger returns a logger configured by the log section of c.
func NewLogger(c *config.Config) *logrus.Logger {
	logger := logrus.New()
	ConfigureLogger(logger, c)
	return logger
}

// ConfigureLogger applies the log section of c to logger.
func ConfigureLogger(logger *logrus.Logger, c *config.Config) {
	logger.SetOutput(os.Stderr)

	switch log.LoggerTypeFromString(c.Log.Type) {
	case log.QUIET:
		logger.SetOutput(io.Discard)

	case log.BASIC:
		logger.Formatter = &log.TextFormatter{
			DisableColors:    true,
			DisableTimestamp: !c.Log.Timestamps,
		}

	case log.FANCY:
		logger.Formatter = &log.TextFormatter{
			DisableTimestamp: !c.Log.Timestamps,
		}

	case log.JSON:
		logger.Formatter = &logrus.JSONFormatter{
			DisableTimestamp: !c.Log.Timestamps,
		}
	}

	level, ok := log.Levels()[c.Log.Level]
	if !ok {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
}
