// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package config provides the osvcapsule configuration.
package config

import (
	"fmt"
	"slices"
	"strings"
)

type Config struct {
	Tool              string `yaml:"tool" env:"OSVCAPSULE_TOOL" long:"tool" usage:"Image builder and launcher executable" default:"capstan"`
	Hypervisor        string `yaml:"hypervisor,omitempty" env:"OSVCAPSULE_HYPERVISOR" long:"hypervisor" usage:"Hypervisor passed to the image launcher"`
	ConfDir           string `yaml:"conf_dir,omitempty" env:"OSVCAPSULE_CONF_DIR" long:"conf-dir" usage:"Directory holding the generated manifest and image"`
	LocalRepository   string `yaml:"local_repository" env:"OSVCAPSULE_LOCAL_REPOSITORY" long:"local-repository" usage:"Root of the local dependency repository" default:"~/.m2/repository"`
	NativeLibraryPath string `yaml:"native_library_path" env:"OSVCAPSULE_NATIVE_LIBRARY_PATH" long:"native-library-path" usage:"Native library directories pre-installed in the guest"`
	Pattern           string `yaml:"pattern" env:"OSVCAPSULE_PATTERN" long:"pattern" usage:"Glob selecting application directory files" default:"**"`

	Log struct {
		Level      string `yaml:"level" env:"OSVCAPSULE_LOG_LEVEL" long:"log-level" usage:"Log level verbosity" default:"info"`
		Timestamps bool   `yaml:"timestamps" env:"OSVCAPSULE_LOG_TIMESTAMPS" long:"log-timestamps" usage:"Enable log timestamps"`
		Type       string `yaml:"type" env:"OSVCAPSULE_LOG_TYPE" long:"log-type" usage:"Log type" default:"fancy"`
	} `yaml:"log"`
}

type ConfigDetail struct {
	Key           string
	Description   string
	AllowedValues []string
}

// Descriptions of each configuration parameter as well as valid values
var configDetails = []ConfigDetail{
	{
		Key:         "tool",
		Description: "the image builder executable, invoked with build or run",
	},
	{
		Key:         "hypervisor",
		Description: "the hypervisor selector forwarded to the image launcher",
		AllowedValues: []string{
			"qemu",
			"vbox",
			"vmw",
			"gce",
		},
	},
	{
		Key:         "conf_dir",
		Description: "override the per-application directory for the manifest",
	},
	{
		Key:         "local_repository",
		Description: "the local dependency repository whose artifacts are flattened into the guest",
	},
	{
		Key:         "native_library_path",
		Description: "colon separated native library directories which are passed through unchanged",
	},
	{
		Key:         "log.level",
		Description: "Set the logging verbosity",
		AllowedValues: []string{
			"fatal",
			"error",
			"warn",
			"info",
			"debug",
			"trace",
		},
	},
	{
		Key:         "log.type",
		Description: "Set the logging output",
		AllowedValues: []string{
			"quiet",
			"basic",
			"fancy",
			"json",
		},
	},
	{
		Key:         "log.timestamps",
		Description: "Show timestamps with log output",
	},
}

func ConfigDetails() []ConfigDetail {
	return configDetails
}

func AllowedValues(key string) []string {
	for _, details := range ConfigDetails() {
		if details.Key == key {
			return details.AllowedValues
		}
	}

	return []string{}
}

// Validate reports the first log setting which is not one of the allowed
// values of its key.  The hypervisor is forwarded to the image tool as is, its
// allowed values only document the common selectors.
func (c *Config) Validate() error {
	for _, kv := range [][2]string{
		{"log.level", c.Log.Level},
		{"log.type", c.Log.Type},
	} {
		key, value := kv[0], kv[1]
		if value == "" {
			continue
		}

		if allowed := AllowedValues(key); len(allowed) > 0 && !slices.Contains(allowed, value) {
			return fmt.Errorf("invalid value for %s: %q (expected one of %s)", key, value, strings.Join(allowed, ", "))
		}
	}

	return nil
}
