// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v11"
)

// EnvFeeder feeds using the environment variables named by `env` struct tags.
// Variables which are not set leave the current value untouched.
type EnvFeeder struct{}

func (EnvFeeder) Feed(structure interface{}) error {
	v := reflect.ValueOf(structure)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("cannot feed non-pointer or nil structure")
	}

	// The manager feeds a **Config, env wants the innermost pointer.
	for v.Elem().Kind() == reflect.Ptr {
		if v.Elem().IsNil() {
			return fmt.Errorf("cannot feed nil structure")
		}
		v = v.Elem()
	}

	if v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("cannot feed non-struct type %s", v.Elem().Type())
	}

	return env.Parse(v.Interface())
}

// Write is a no-op, the environment is never persisted.
func (EnvFeeder) Write(_ interface{}, _ bool) error {
	return nil
}
