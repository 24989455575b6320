// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package remap maps host filesystem locations discovered while preparing a
// JVM launch onto the fixed layout of the guest filesystem.
//
// Paths are classified by an ordered list of rules and the first matching
// rule wins.  Several roots may nest (an application cache directory often
// lives inside the local dependency repository's parent, the runtime home may
// contain native library directories), so the order below is the tie-break
// policy:
//
//  1. paths already in the guest namespace are returned unchanged;
//  2. the host JVM launcher becomes GuestJavaExecutable;
//  3. the application jar is placed flat in the root;
//  4. the wrapper jar is placed under GuestWrapperDir;
//  5. files of the application cache keep their relative location under
//     GuestAppDir;
//  6. artifacts of the local dependency repository are flattened into
//     GuestDepDir;
//  7. native library directories are passed through;
//  8. paths in the runtime home are passed through;
//  9. anything else is an *UnmappableHostPathError.
package remap

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	GuestRoot           = "/"
	GuestAppDir         = "/capsule/app"
	GuestDepDir         = "/capsule/dep"
	GuestWrapperDir     = "/capsule/wrapper"
	GuestJavaExecutable = "/java.so"
)

// guestMarkers are the prefixes treated as already being guest paths.  The
// short forms are kept for launch configurations written before the
// /capsule prefix was introduced.
var guestMarkers = []string{
	"/app",
	"/dep",
	GuestAppDir,
	GuestDepDir,
	GuestWrapperDir,
}

// Remapper classifies and remaps host paths.  It is safe for concurrent use
// once constructed.
type Remapper struct {
	javaExecutable string
	jar            string
	wrapper        string
	appDir         string
	localRepo      string
	javaHome       string
	nativeLibs     []string
}

type rule struct {
	role  Role
	apply func(r *Remapper, p string) (string, bool)
}

var rules = []rule{
	{AlreadyGuestRooted, (*Remapper).guest},
	{JavaExecutable, (*Remapper).executable},
	{ApplicationJar, (*Remapper).applicationJar},
	{OwnWrapperJar, (*Remapper).wrapperJar},
	{AppCacheTree, (*Remapper).appCache},
	{DependencyRepoRoot, (*Remapper).dependency},
	{NativeLibraryRoot, (*Remapper).nativeLibrary},
	{JavaRuntimeRoot, (*Remapper).runtimeHome},
}

// Rules returns the roles in the order in which they are evaluated.
func Rules() []Role {
	roles := make([]Role, len(rules))
	for i, r := range rules {
		roles[i] = r.role
	}

	return roles
}

// NewRemapper returns a Remapper for the given roots.  Roots which are not
// set disable their rule.
func NewRemapper(opts ...RemapperOption) (*Remapper, error) {
	r := &Remapper{}

	if err := WithNativeLibraryPath(DefaultNativeLibraryPath)(r); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Remap returns the guest location of the provided host path.
func (r *Remapper) Remap(host string) (string, error) {
	_, guest, err := r.match(host)
	return guest, err
}

// Classify returns the role of the provided host path.
func (r *Remapper) Classify(host string) (Role, error) {
	role, _, err := r.match(host)
	return role, err
}

// AppDir returns the configured application cache directory.
func (r *Remapper) AppDir() string {
	return r.appDir
}

// LocalRepository returns the configured dependency repository root.
func (r *Remapper) LocalRepository() string {
	return r.localRepo
}

// InLocalRepository reports whether the host path lies under the local
// dependency repository.
func (r *Remapper) InLocalRepository(host string) bool {
	p, err := filepath.Abs(host)
	if err != nil {
		return false
	}

	return within(r.localRepo, p)
}

func (r *Remapper) match(host string) (Role, string, error) {
	if host == "" {
		return Unclassified, "", &UnmappableHostPathError{Path: host}
	}

	p, err := filepath.Abs(host)
	if err != nil {
		return Unclassified, "", &UnmappableHostPathError{Path: host}
	}

	for _, rule := range rules {
		if guest, ok := rule.apply(r, p); ok {
			return rule.role, guest, nil
		}
	}

	return Unclassified, "", &UnmappableHostPathError{Path: p}
}

func (r *Remapper) guest(p string) (string, bool) {
	slashed := filepath.ToSlash(p)
	if slashed == GuestJavaExecutable {
		return slashed, true
	}

	for _, marker := range guestMarkers {
		if slashed == marker || strings.HasPrefix(slashed, marker+"/") {
			return slashed, true
		}
	}

	return "", false
}

func (r *Remapper) executable(p string) (string, bool) {
	if r.javaExecutable == "" || p != r.javaExecutable {
		return "", false
	}

	return GuestJavaExecutable, true
}

func (r *Remapper) applicationJar(p string) (string, bool) {
	if r.jar == "" || p != r.jar {
		return "", false
	}

	return path.Join(GuestRoot, filepath.Base(p)), true
}

func (r *Remapper) wrapperJar(p string) (string, bool) {
	if r.wrapper == "" || p != r.wrapper {
		return "", false
	}

	return path.Join(GuestWrapperDir, filepath.Base(p)), true
}

func (r *Remapper) appCache(p string) (string, bool) {
	if !within(r.appDir, p) {
		return "", false
	}

	rel, err := filepath.Rel(r.appDir, p)
	if err != nil {
		return "", false
	}

	return path.Join(GuestAppDir, filepath.ToSlash(rel)), true
}

func (r *Remapper) dependency(p string) (string, bool) {
	if !within(r.localRepo, p) {
		return "", false
	}

	return path.Join(GuestDepDir, filepath.Base(p)), true
}

func (r *Remapper) nativeLibrary(p string) (string, bool) {
	for _, dir := range r.nativeLibs {
		if p == dir {
			return filepath.ToSlash(p), true
		}
	}

	return "", false
}

func (r *Remapper) runtimeHome(p string) (string, bool) {
	if !within(r.javaHome, p) {
		return "", false
	}

	return filepath.ToSlash(p), true
}

// within reports whether p equals root or lies beneath it, comparing whole
// path elements.
func within(root, p string) bool {
	if root == "" {
		return false
	}

	if p == root {
		return true
	}

	prefix := root
	if !strings.HasSuffix(prefix, "/") && !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	return strings.HasPrefix(p, prefix)
}
