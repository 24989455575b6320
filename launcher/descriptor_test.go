// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osvcapsule.sh/launcher"
)

func TestLoadDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.yaml")

	require.NoError(t, os.WriteFile(path, []byte(heredoc.Doc(`
		jar: target/hello.jar
		app_dir: app
		java_home: /opt/jdk
		local_repository: ~/.m2/repository
		main_class: com.example.Hello
		classpath:
		  - ~/.m2/repository/org/lib/1.0/lib-1.0.jar
		jvm_args: -server "-Dgreeting=hello world"
		args: --name 'osv capsule'
		attributes:
		  Java-Version: "1.8"
		  Image-Only: "true"
	`)), 0o644))

	d, err := launcher.LoadDescriptor(path)
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)

	jar := filepath.Join(dir, "target", "hello.jar")
	lib := filepath.Join(home, ".m2", "repository", "org", "lib", "1.0", "lib-1.0.jar")

	assert.Equal(t, jar, d.JarFile())
	assert.Equal(t, filepath.Join(dir, "app"), d.AppDir())
	assert.Equal(t, "hello", d.AppID())
	assert.Equal(t, "/opt/jdk/bin/java", d.JavaExecutable())
	assert.Equal(t, "/opt/jdk", d.JavaHome())
	assert.Equal(t, []string{lib}, d.Dependencies())

	repo, err := d.LocalRepository()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".m2", "repository"), repo)

	assert.Equal(t, []string{
		"/opt/jdk/bin/java",
		"-server",
		"-Dgreeting=hello world",
		"-cp", jar + ":" + lib,
		"com.example.Hello",
		"--name", "osv capsule",
	}, d.Command())

	_, wrapped := d.WrapperJar()
	assert.False(t, wrapped)

	attrs, err := launcher.ParseAttributes(d)
	require.NoError(t, err)
	assert.Equal(t, launcher.Attributes{ImageOnly: true, JavaVersion: "1.8"}, attrs)
}

func TestParseDescriptorDefaults(t *testing.T) {
	d, err := launcher.ParseDescriptor([]byte("id: svc\njar: /srv/app.jar\nwrapped: true\n"), "/srv")
	require.NoError(t, err)

	assert.Equal(t, "svc", d.AppID())
	assert.Equal(t, launcher.DefaultJavaExecutable, d.JavaExecutable())
	assert.Equal(t, []string{launcher.DefaultJavaExecutable, "-jar", "/srv/app.jar"}, d.Command())
	assert.Empty(t, d.AppDir())

	path, wrapped := d.WrapperJar()
	assert.True(t, wrapped)
	assert.Empty(t, path)
}

func TestParseDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing jar", data: "id: svc\n"},
		{name: "unknown field", data: "jar: a.jar\njvm: 8\n"},
		{name: "unterminated quote", data: "jar: a.jar\njvm_args: '\"-Dx=1'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := launcher.ParseDescriptor([]byte(tt.data), "/srv")
			assert.Error(t, err)
		})
	}
}
