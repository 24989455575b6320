// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest_test

import (
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osvcapsule.sh/manifest"
)

func TestManifestString(t *testing.T) {
	m := &manifest.Manifest{
		Base:    "cloudius/osv-openjdk8",
		Cmdline: "/java.so -cp /hello.jar Hello",
		Files: []manifest.FileMapping{
			{Guest: "/hello.jar", Host: "/home/alice/hello.jar"},
			{Guest: "/capsule/app/lib/a.jar", Host: "/home/alice/.capsule/apps/hello/lib/a.jar"},
		},
	}

	expect := heredoc.Doc(`
		base: cloudius/osv-openjdk8

		cmdline: /java.so -cp /hello.jar Hello

		files:
		  /hello.jar: /home/alice/hello.jar
		  /capsule/app/lib/a.jar: /home/alice/.capsule/apps/hello/lib/a.jar
	`)

	assert.Equal(t, expect, m.String())

	text, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, expect, string(text))

	host, ok := m.Guest("/hello.jar")
	assert.True(t, ok)
	assert.Equal(t, "/home/alice/hello.jar", host)
}

func TestManifestStringWithoutFiles(t *testing.T) {
	m := &manifest.Manifest{Base: "b", Cmdline: ""}
	assert.Equal(t, "base: b\n\ncmdline: \n\nfiles:\n", m.String())
}

func TestParse(t *testing.T) {
	text := heredoc.Doc(`
		base: cloudius/osv-openjdk

		cmdline: /java.so -Xmx512m -jar /app.jar --port 8080

		files:
		  /app.jar: /tmp/x/app.jar
		  /capsule/dep/a.jar: /home/u/.m2/repository/a/1/a.jar
	`)

	m, err := manifest.Parse(text)
	require.NoError(t, err)

	assert.Equal(t, "cloudius/osv-openjdk", m.Base)
	assert.Equal(t, "/java.so -Xmx512m -jar /app.jar --port 8080", m.Cmdline)
	require.Len(t, m.Files, 2)
	assert.Equal(t, manifest.FileMapping{Guest: "/capsule/dep/a.jar", Host: "/home/u/.m2/repository/a/1/a.jar"}, m.Files[1])
	assert.Equal(t, text, m.String())
}

func TestParseMalformed(t *testing.T) {
	_, err := manifest.Parse("base: x\n\nfiles:\n  /no-separator\n")
	assert.Error(t, err)

	_, err = manifest.Parse("something: else\n")
	assert.Error(t, err)
}

func TestParseLongCmdline(t *testing.T) {
	entries := make([]string, 5000)
	for i := range entries {
		entries[i] = "/capsule/dep/artifact-with-a-long-name-" + strings.Repeat("x", 8) + ".jar"
	}

	m := &manifest.Manifest{
		Base:    manifest.DefaultBaseImage,
		Cmdline: "/java.so -cp " + strings.Join(entries, ":") + " Main",
	}
	require.Greater(t, len(m.Cmdline), 128*1024)

	parsed, err := manifest.Parse(m.String())
	require.NoError(t, err)
	assert.Equal(t, m.Cmdline, parsed.Cmdline)
	assert.Empty(t, parsed.Files)
}
