// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import "strings"

// ExecutionModeFlags are JVM switches without meaning inside the guest.
var ExecutionModeFlags = []string{"-server", "-client"}

// StripExecutionModeFlags returns a copy of tokens without any of the
// ExecutionModeFlags, preserving the order of everything else.
func StripExecutionModeFlags(tokens []string) []string {
	ret := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if isExecutionModeFlag(token) {
			continue
		}

		ret = append(ret, token)
	}

	return ret
}

// BootCommandLine renders the guest boot command line.
func BootCommandLine(tokens []string) string {
	return strings.Join(StripExecutionModeFlags(tokens), " ")
}

func isExecutionModeFlag(token string) bool {
	for _, flag := range ExecutionModeFlags {
		if token == flag {
			return true
		}
	}

	return false
}
