// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package exec prepares and runs the external image tool.
package exec

import (
	"fmt"
	"reflect"
	"strings"
)

type Executable struct {
	bin  string
	args []string
}

// NewExecutable accepts the path or name of the binary to execute.  The
// optional face is a struct whose fields carry `flag:"-x"` tags; set fields
// are serialized into command-line flags after any positional args.
func NewExecutable(bin string, face interface{}, args ...string) (*Executable, error) {
	if len(bin) == 0 {
		return nil, fmt.Errorf("binary argument cannot be empty")
	}

	e := &Executable{
		bin:  bin,
		args: append([]string{}, args...),
	}

	if face != nil {
		ifaceArgs, err := ParseInterfaceArgs(face)
		if err != nil {
			return nil, err
		}

		e.args = append(e.args, ifaceArgs...)
	}

	return e, nil
}

func (e *Executable) Bin() string {
	return e.bin
}

func (e *Executable) Args() []string {
	return e.args
}

// Append adds trailing positional arguments.
func (e *Executable) Append(args ...string) *Executable {
	e.args = append(e.args, args...)
	return e
}

// ParseInterfaceArgs returns the array of arguments detected from a struct
// with `flag` tag annotations.  Empty strings, false booleans and nil or empty
// values are omitted.  Untagged embedded structs are walked recursively.
func ParseInterfaceArgs(face interface{}, args ...string) ([]string, error) {
	if face == nil {
		return args, nil
	}

	v := reflect.ValueOf(face)
	if v.Kind() == reflect.Ptr {
		return nil, fmt.Errorf("cannot derive interface arguments from pointer: passed by reference")
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot derive interface arguments from %s", v.Kind())
	}

	return parseStructArgs(v, args), nil
}

func parseStructArgs(v reflect.Value, args []string) []string {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		name := strings.Split(t.Field(i).Tag.Get("flag"), ",")[0]

		if len(name) == 0 {
			if field.Kind() == reflect.Struct {
				args = parseStructArgs(field, args)
			}

			continue
		}

		switch field.Kind() {
		case reflect.Bool:
			if field.Bool() {
				args = append(args, name)
			}

		case reflect.Slice:
			for j := 0; j < field.Len(); j++ {
				if value := stringify(field.Index(j)); len(value) > 0 {
					args = append(args, name, value)
				}
			}

		case reflect.Ptr:
			if field.IsNil() {
				continue
			}

			if value := stringify(field.Elem()); len(value) > 0 {
				args = append(args, name, value)
			}

		default:
			if value := stringify(field); len(value) > 0 {
				args = append(args, name, value)
			}
		}
	}

	return args
}

func stringify(v reflect.Value) string {
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	}

	return ""
}
