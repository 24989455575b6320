// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import "strings"

type LoggerType uint

const (
	QUIET LoggerType = iota
	BASIC
	FANCY
	JSON
)

func LoggerTypeFromString(name string) LoggerType {
	switch strings.ToLower(name) {
	case "quiet":
		return QUIET
	case "fancy":
		return FANCY
	case "json":
		return JSON
	default:
		return BASIC
	}
}

func (t LoggerType) String() string {
	switch t {
	case QUIET:
		return "quiet"
	case FANCY:
		return "fancy"
	case JSON:
		return "json"
	default:
		return "basic"
	}
}
