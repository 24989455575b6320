// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package cmdfactory builds cobra commands from structs whose tagged fields
// become flags.
package cmdfactory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"osvcapsule.sh/log"
)

var caseRegexp = regexp.MustCompile("([a-z])([A-Z])")

type PersistentPreRunnable interface {
	PersistentPre(cmd *cobra.Command, args []string) error
}

type PreRunnable interface {
	Pre(cmd *cobra.Command, args []string) error
}

type Runnable interface {
	Run(ctx context.Context, args []string) error
}

type fieldInfo struct {
	FieldType  reflect.StructField
	FieldValue reflect.Value
}

func fields(obj any) []fieldInfo {
	objValue := reflect.Indirect(reflect.ValueOf(obj))

	var result []fieldInfo

	for i := 0; i < objValue.NumField(); i++ {
		fieldType := objValue.Type().Field(i)
		if fieldType.Anonymous && fieldType.Type.Kind() == reflect.Struct {
			result = append(result, fields(objValue.Field(i).Addr().Interface())...)
		} else if !fieldType.Anonymous {
			result = append(result, fieldInfo{
				FieldValue: objValue.Field(i),
				FieldType:  fieldType,
			})
		}
	}

	return result
}

// Name returns the command name derived from the type of obj, e.g. a
// ManifestCommand is named "manifest".
func Name(obj any) string {
	objValue := reflect.Indirect(reflect.ValueOf(obj))
	commandName := strings.Replace(objValue.Type().Name(), "Command", "", 1)
	commandName, _ = name(commandName, "", "")
	return commandName
}

// Main executes the given command and returns the process exit code.
func Main(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *ExitCodeError
	if errors.As(err, &exit) {
		return exit.Code
	}

	var flagErr *FlagError
	if errors.As(err, &flagErr) {
		fmt.Fprintf(os.Stderr, "%s\n\n%s", err, cmd.UsageString())
		return 1
	}

	log.G(ctx).Error(err)

	return 1
}

// AttributeFlags associates a given struct with public attributes and a set of
// tags with the provided cobra command so as to enable dynamic population of
// CLI flags.  Supported tags are `long`, `short`, `usage`, `env`,
// `default`, `local`, `hidden` and `noattribute`.
func AttributeFlags(c *cobra.Command, obj any) error {
	for _, info := range fields(obj) {
		fieldType := info.FieldType
		v := info.FieldValue

		if !fieldType.IsExported() {
			continue
		}

		// Any structure attribute which has the tag `noattribute:"true"` is skipped
		if fieldType.Tag.Get("noattribute") == "true" {
			continue
		}

		if fieldType.Type.Kind() == reflect.Struct {
			// Recursively set nested structs
			if err := AttributeFlags(c, v.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		name, alias := name(fieldType.Name, fieldType.Tag.Get("long"), fieldType.Tag.Get("short"))
		usage := fieldType.Tag.Get("usage")
		defValue := fieldType.Tag.Get("default")

		// The current value comes from a configuration file, the environment
		// takes precedence over it.
		strValue := fmt.Sprint(v.Interface())
		if v.IsZero() && defValue != "" {
			strValue = defValue
		}

		if envName := fieldType.Tag.Get("env"); envName != "" {
			if envValue := os.Getenv(envName); envValue != "" {
				strValue = envValue
			}
		}

		flags := c.PersistentFlags()
		if fieldType.Tag.Get("local") == "true" {
			flags = c.Flags()
		}

		switch ptr := v.Addr().Interface().(type) {
		case *string:
			flags.StringVarP(ptr, name, alias, defValue, usage)
			if err := flags.Set(name, strValue); err != nil {
				return err
			}

		case *bool:
			flags.BoolVarP(ptr, name, alias, false, usage)
			if err := flags.Set(name, strValue); err != nil {
				return err
			}

		case *int:
			defInt, _ := strconv.Atoi(defValue)
			flags.IntVarP(ptr, name, alias, defInt, usage)
			if err := flags.Set(name, strValue); err != nil {
				return err
			}

		case *[]string:
			flags.StringSliceVarP(ptr, name, alias, *ptr, usage)

		default:
			continue
		}

		if fieldType.Tag.Get("hidden") == "true" {
			if err := flags.MarkHidden(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// New populates a cobra.Command object by extracting args from struct tags of the
// Runnable obj passed.  Also the Run method is assigned to the RunE of the command.
func New(obj Runnable, cmd cobra.Command) (*cobra.Command, error) {
	c := cmd
	if c.Use == "" {
		c.Use = fmt.Sprintf("%s [FLAGS]", Name(obj))
	}

	if p, ok := obj.(PersistentPreRunnable); ok {
		c.PersistentPreRunE = p.PersistentPre
	}

	if p, ok := obj.(PreRunnable); ok {
		c.PreRunE = p.Pre
	}

	c.SilenceErrors = true
	c.SilenceUsage = true
	c.DisableFlagsInUseLine = true
	c.InitDefaultHelpFlag()

	if obj != nil {
		c.RunE = func(cmd *cobra.Command, args []string) error {
			return obj.Run(cmd.Context(), args)
		}

		// Parse the attributes of this object into addressable flags for this command
		if err := AttributeFlags(&c, obj); err != nil {
			return nil, err
		}
	}

	c.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return FlagErrorWrap(err)
	})

	return &c, nil
}

func name(name, setName, short string) (string, string) {
	if setName != "" {
		return setName, short
	}
	parts := strings.Split(name, "_")
	i := len(parts) - 1
	name = caseRegexp.ReplaceAllString(parts[i], "$1-$2")
	name = strings.ToLower(name)
	result := append([]string{name}, parts[0:i]...)
	for i := 0; i < len(result); i++ {
		result[i] = strings.ToLower(result[i])
	}
	if short == "" && len(result) > 1 {
		short = result[1]
	}
	return result[0], short
}
