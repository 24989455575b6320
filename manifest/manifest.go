// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"fmt"
	"strings"
)

// FileName is the name of the persisted manifest inside the configuration
// directory.
const FileName = "Capstanfile"

// FileMapping directs the image builder to copy a host file to a location
// inside the guest.
type FileMapping struct {
	Guest string
	Host  string
}

func (f FileMapping) String() string {
	return "  " + f.Guest + ": " + f.Host
}

// Manifest is the declarative description consumed by the image builder.
type Manifest struct {
	Base    string
	Cmdline string
	Files   []FileMapping
}

// String renders the manifest in the builder's text format:
//
//	base: <image>
//
//	cmdline: <tokens>
//
//	files:
//	  <guest>: <host>
func (m *Manifest) String() string {
	var sb strings.Builder

	sb.WriteString("base: ")
	sb.WriteString(m.Base)
	sb.WriteString("\n\n")
	sb.WriteString("cmdline: ")
	sb.WriteString(m.Cmdline)
	sb.WriteString("\n\n")
	sb.WriteString("files:\n")

	for _, f := range m.Files {
		sb.WriteString(f.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m *Manifest) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Guest returns the host path mapped to the provided guest path.
func (m *Manifest) Guest(guest string) (string, bool) {
	for _, f := range m.Files {
		if f.Guest == guest {
			return f.Host, true
		}
	}

	return "", false
}

// Parse reads back a manifest rendered by String.
func Parse(text string) (*Manifest, error) {
	m := &Manifest{}
	inFiles := false

	for i, line := range strings.Split(text, "\n") {
		lineno := i + 1
		line = strings.TrimSuffix(line, "\r")

		switch {
		case line == "":
			continue

		case strings.HasPrefix(line, "base:"):
			m.Base = strings.TrimSpace(strings.TrimPrefix(line, "base:"))
			inFiles = false

		case strings.HasPrefix(line, "cmdline:"):
			m.Cmdline = strings.TrimSpace(strings.TrimPrefix(line, "cmdline:"))
			inFiles = false

		case line == "files:":
			inFiles = true

		case inFiles && strings.HasPrefix(line, "  "):
			guest, host, ok := strings.Cut(strings.TrimPrefix(line, "  "), ": ")
			if !ok {
				return nil, fmt.Errorf("line %d: malformed file mapping: %q", lineno, line)
			}

			m.Files = append(m.Files, FileMapping{Guest: guest, Host: host})

		default:
			return nil, fmt.Errorf("line %d: unexpected content: %q", lineno, line)
		}
	}

	return m, nil
}
