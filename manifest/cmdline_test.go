// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"osvcapsule.sh/manifest"
)

func TestBootCommandLine(t *testing.T) {
	tests := []struct {
		desc   string
		tokens []string
		expect string
	}{
		{
			desc:   "empty",
			tokens: nil,
			expect: "",
		},
		{
			desc:   "no execution mode flags",
			tokens: []string{"/java.so", "-Xmx1g", "-cp", "/app.jar", "Main"},
			expect: "/java.so -Xmx1g -cp /app.jar Main",
		},
		{
			desc:   "server flag in the middle",
			tokens: []string{"/java.so", "-server", "-cp", "/app.jar", "Main"},
			expect: "/java.so -cp /app.jar Main",
		},
		{
			desc:   "both flags at the edges",
			tokens: []string{"-client", "/java.so", "Main", "-server"},
			expect: "/java.so Main",
		},
		{
			desc:   "similar flags are kept",
			tokens: []string{"/java.so", "-serverx", "--server", "-XX:+UseServerVM", "Main"},
			expect: "/java.so -serverx --server -XX:+UseServerVM Main",
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expect, manifest.BootCommandLine(tc.tokens))
		})
	}
}

func TestStripExecutionModeFlagsDoesNotModifyInput(t *testing.T) {
	in := []string{"a", "-server", "b"}
	out := manifest.StripExecutionModeFlags(in)

	assert.Equal(t, []string{"a", "b"}, out)
	assert.Equal(t, []string{"a", "-server", "b"}, in)
}
