// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Feeder reads configuration from a source into a **Config and optionally
// writes it back.
type Feeder interface {
	Feed(structure interface{}) error
	Write(structure interface{}, merge bool) error
}

// ConfigManager holds the configuration and the feeders it is read from.
type ConfigManager struct {
	Config     *Config
	ConfigFile string
	Feeders    []Feeder
}

type ConfigManagerOption func(cm *ConfigManager) error

func WithFeeder(feeder Feeder) ConfigManagerOption {
	return func(cm *ConfigManager) error {
		cm.AddFeeder(feeder)
		return nil
	}
}

// WithFile feeds the configuration from a YAML file, writing the defaults to
// it first when it does not exist and forceCreate is set.
func WithFile(file string, forceCreate bool) ConfigManagerOption {
	return func(cm *ConfigManager) error {
		switch ext := strings.TrimPrefix(filepath.Ext(file), "."); ext {
		case "yaml", "yml":
		case "":
			return fmt.Errorf("unknown file extension for config file: %s", file)
		default:
			return fmt.Errorf("unsupported file extension: %s", file)
		}

		yml := YamlFeeder{File: file}

		if _, err := os.Stat(file); os.IsNotExist(err) {
			if !forceCreate {
				return nil
			}

			if err := yml.Write(cm.Config, false); err != nil {
				return fmt.Errorf("could not write initial config: %w", err)
			}
		}

		cm.ConfigFile = file

		return WithFeeder(yml)(cm)
	}
}

func WithDefaultConfigFile() ConfigManagerOption {
	return func(cm *ConfigManager) error {
		return WithFile(DefaultConfigFile(), true)(cm)
	}
}

// WithEnv feeds the configuration from the environment.  It should be the
// last feeder so that the environment takes precedence over files.
func WithEnv() ConfigManagerOption {
	return WithFeeder(EnvFeeder{})
}

func NewConfigManager(opts ...ConfigManagerOption) (*ConfigManager, error) {
	cm := &ConfigManager{}

	c, err := NewDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("could not seed default values for config: %w", err)
	}

	cm.Config = c

	for _, o := range opts {
		if err := o(cm); err != nil {
			return nil, fmt.Errorf("could not apply config manager option: %w", err)
		}
	}

	// Feed the config, pass the manager anyway if this fails, we still have
	// defaults
	if err := cm.Feed(); err != nil {
		return cm, fmt.Errorf("could not feed config: %w", err)
	}

	return cm, nil
}

// AddFeeder adds a feeder that provides configuration data.
func (cm *ConfigManager) AddFeeder(f Feeder) *ConfigManager {
	cm.Feeders = append(cm.Feeders, f)
	return cm
}

// Feed binds configuration data from added feeders, in order.
func (cm *ConfigManager) Feed() error {
	for _, f := range cm.Feeders {
		if err := f.Feed(&cm.Config); err != nil {
			return fmt.Errorf("failed to feed config: %w", err)
		}
	}

	return nil
}

func (cm *ConfigManager) Write(merge bool) error {
	for _, f := range cm.Feeders {
		if err := f.Write(cm.Config, merge); err != nil {
			return err
		}
	}

	return nil
}
