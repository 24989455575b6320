// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultJavaExecutable is the host JVM launcher used when a descriptor names
// neither an executable nor a runtime home.
const DefaultJavaExecutable = "/usr/bin/java"

// Descriptor is a launch descriptor read from YAML.  It describes the
// application, its dependencies and attributes.
//
//	id: hello
//	jar: target/hello.jar
//	main_class: com.example.Hello
//	classpath:
//	  - ~/.m2/repository/org/slf4j/slf4j-api/1.7.36/slf4j-api-1.7.36.jar
//	jvm_args: -server -Xmx512m
//	attributes:
//	  Java-Version: "1.8"
//	  Port-Forward: "8080:8080"
type Descriptor struct {
	ID         string            `yaml:"id,omitempty"`
	Jar        string            `yaml:"jar"`
	Dir        string            `yaml:"app_dir,omitempty"`
	Java       string            `yaml:"java,omitempty"`
	Home       string            `yaml:"java_home,omitempty"`
	Repository string            `yaml:"local_repository,omitempty"`
	Wrapper    string            `yaml:"wrapper,omitempty"`
	Wrapped    bool              `yaml:"wrapped,omitempty"`
	MainClass  string            `yaml:"main_class,omitempty"`
	Classpath  []string          `yaml:"classpath,omitempty"`
	Deps       []string          `yaml:"dependencies,omitempty"`
	JVMArgs    string            `yaml:"jvm_args,omitempty"`
	Args       string            `yaml:"args,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`

	jvmArgs []string
	args    []string
}

// LoadDescriptor reads the descriptor at path.  Relative paths in the
// descriptor are relative to its directory and a leading `~` refers to the
// home directory.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read descriptor: %w", err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	return ParseDescriptor(data, dir)
}

// ParseDescriptor parses a descriptor whose relative paths are relative to
// dir.
func ParseDescriptor(data []byte, dir string) (*Descriptor, error) {
	d := &Descriptor{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(d); err != nil {
		return nil, fmt.Errorf("could not parse descriptor: %w", err)
	}

	if d.Jar == "" {
		return nil, fmt.Errorf("descriptor does not name a jar")
	}

	var err error
	for _, p := range []*string{&d.Jar, &d.Dir, &d.Java, &d.Home, &d.Repository, &d.Wrapper} {
		if *p, err = resolvePath(dir, *p); err != nil {
			return nil, err
		}
	}

	for _, list := range [][]string{d.Classpath, d.Deps} {
		for i := range list {
			if list[i], err = resolvePath(dir, list[i]); err != nil {
				return nil, err
			}
		}
	}

	if d.jvmArgs, err = shellwords.Parse(d.JVMArgs); err != nil {
		return nil, fmt.Errorf("could not split jvm_args: %w", err)
	}

	if d.args, err = shellwords.Parse(d.Args); err != nil {
		return nil, fmt.Errorf("could not split args: %w", err)
	}

	return d, nil
}

func resolvePath(dir, p string) (string, error) {
	if p == "" {
		return "", nil
	}

	p, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}

	return filepath.Clean(p), nil
}

func (d *Descriptor) JarFile() string {
	return d.Jar
}

func (d *Descriptor) AppDir() string {
	return d.Dir
}

// AppID defaults to the name of the jar without its extension.
func (d *Descriptor) AppID() string {
	if d.ID != "" {
		return d.ID
	}

	return strings.TrimSuffix(filepath.Base(d.Jar), filepath.Ext(d.Jar))
}

func (d *Descriptor) JavaExecutable() string {
	switch {
	case d.Java != "":
		return d.Java
	case d.Home != "":
		return filepath.Join(d.Home, "bin", "java")
	default:
		return DefaultJavaExecutable
	}
}

// Command is the host JVM command line.  With a main class the jar and the
// classpath form the -cp value, otherwise the jar is run with -jar.
func (d *Descriptor) Command() []string {
	cmd := []string{d.JavaExecutable()}
	cmd = append(cmd, d.jvmArgs...)

	if d.MainClass != "" {
		cp := append([]string{d.Jar}, d.Classpath...)
		cmd = append(cmd, "-cp", strings.Join(cp, ":"), d.MainClass)
	} else {
		cmd = append(cmd, "-jar", d.Jar)
	}

	return append(cmd, d.args...)
}

// Dependencies are the classpath entries followed by the declared
// dependencies.
func (d *Descriptor) Dependencies() []string {
	return append(append([]string{}, d.Classpath...), d.Deps...)
}

func (d *Descriptor) Attribute(name string) (string, bool) {
	v, ok := d.Attributes[name]
	return v, ok
}

func (d *Descriptor) LocalRepository() (string, error) {
	return d.Repository, nil
}

func (d *Descriptor) WrapperJar() (string, bool) {
	return d.Wrapper, d.Wrapped || d.Wrapper != ""
}

func (d *Descriptor) JavaHome() string {
	return d.Home
}
