// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"path/filepath"
	"sort"
	"sync"
)

// DependencySet accumulates the resolved dependency artifacts of a launch.
// Paths are deduplicated after cleaning and enumerated in sorted order so
// that the rendered manifest does not depend on resolution order.
type DependencySet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func NewDependencySet(paths ...string) *DependencySet {
	ds := &DependencySet{}
	for _, p := range paths {
		ds.Add(p)
	}

	return ds
}

// Add records the path and reports whether it was not yet present.
func (ds *DependencySet) Add(path string) bool {
	if path == "" {
		return false
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.paths == nil {
		ds.paths = make(map[string]struct{})
	}

	path = filepath.Clean(path)
	if _, ok := ds.paths[path]; ok {
		return false
	}

	ds.paths[path] = struct{}{}

	return true
}

func (ds *DependencySet) Contains(path string) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	_, ok := ds.paths[filepath.Clean(path)]
	return ok
}

func (ds *DependencySet) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	return len(ds.paths)
}

// Paths returns the recorded paths in lexical order.
func (ds *DependencySet) Paths() []string {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ret := make([]string, 0, len(ds.paths))
	for p := range ds.paths {
		ret = append(ret, p)
	}

	sort.Strings(ret)

	return ret
}
