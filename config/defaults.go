// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/go-homedir"
)

func NewDefaultConfig() (*Config, error) {
	c := &Config{}

	if err := setDefaults(c); err != nil {
		return nil, fmt.Errorf("could not set defaults for config: %w", err)
	}

	return c, nil
}

// ExpandPaths resolves a leading `~` in path-valued options against the
// user's home directory.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.LocalRepository, &c.ConfDir} {
		if *p == "" {
			continue
		}

		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("could not expand %s: %w", *p, err)
		}

		*p = expanded
	}

	return nil
}

func setDefaults(s interface{}) error {
	return setDefaultValue(reflect.ValueOf(s), "")
}

func setDefaultValue(v reflect.Value, def string) error {
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("not a pointer value")
	}

	v = reflect.Indirect(v)
	switch v.Kind() {
	case reflect.Int:
		if len(def) > 0 {
			i, err := strconv.ParseInt(def, 10, 64)
			if err != nil {
				return fmt.Errorf("could not parse default integer value: %s", err)
			}
			v.SetInt(i)
		}

	case reflect.String:
		if len(def) > 0 {
			v.SetString(def)
		}

	case reflect.Bool:
		if len(def) > 0 {
			b, err := strconv.ParseBool(def)
			if err != nil {
				return fmt.Errorf("could not parse default boolean value: %s", err)
			}
			v.SetBool(b)
		} else {
			v.SetBool(false)
		}

	case reflect.Struct:
		// Iterate over the struct fields
		for i := 0; i < v.NumField(); i++ {
			if err := setDefaultValue(
				v.Field(i).Addr(),
				v.Type().Field(i).Tag.Get("default"),
			); err != nil {
				return err
			}
		}

	default:
		// Ignore this value and property entirely
		return nil
	}

	return nil
}
