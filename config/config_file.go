// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	OSVCAPSULE_CONFIG_DIR = "OSVCAPSULE_CONFIG_DIR"
	OSVCAPSULE_STATE_DIR  = "OSVCAPSULE_STATE_DIR"
	XDG_CONFIG_HOME       = "XDG_CONFIG_HOME"
	XDG_STATE_HOME        = "XDG_STATE_HOME"
)

// ConfigDir returns the directory holding the user's configuration file.
func ConfigDir() string {
	if a := os.Getenv(OSVCAPSULE_CONFIG_DIR); a != "" {
		return a
	}

	if b := os.Getenv(XDG_CONFIG_HOME); b != "" {
		return filepath.Join(b, "osvcapsule")
	}

	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "osvcapsule")
	}

	return filepath.Join(home, ".config", "osvcapsule")
}

// StateDir is where per-application directories are created for applications
// which do not ship an application directory of their own.
func StateDir() string {
	if a := os.Getenv(OSVCAPSULE_STATE_DIR); a != "" {
		return a
	}

	if b := os.Getenv(XDG_STATE_HOME); b != "" {
		return filepath.Join(b, "osvcapsule")
	}

	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "osvcapsule", "state")
	}

	return filepath.Join(home, ".local", "state", "osvcapsule")
}

// DefaultConfigFile returns the path to the configuration file.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
