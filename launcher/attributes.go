// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package launcher

import (
	"fmt"
	"strconv"
)

const (
	AttrImageOnly       = "Image-Only"
	AttrPortForward     = "Port-Forward"
	AttrNetworkType     = "Network-Type"
	AttrPhysicalNICName = "Physical-NIC-Name"
	AttrJavaVersion     = "Java-Version"
)

// Attributes are the declared attributes which affect the image and how it
// is run.
type Attributes struct {
	ImageOnly   bool
	PortForward string
	NetworkType string
	PhysicalNIC string
	JavaVersion string
}

// ParseAttributes reads the launcher attributes declared by app.
func ParseAttributes(app Application) (Attributes, error) {
	attrs := Attributes{}

	if v, ok := app.Attribute(AttrImageOnly); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return attrs, fmt.Errorf("invalid %s attribute %q: %w", AttrImageOnly, v, err)
		}
		attrs.ImageOnly = b
	}

	for name, dst := range map[string]*string{
		AttrPortForward:     &attrs.PortForward,
		AttrNetworkType:     &attrs.NetworkType,
		AttrPhysicalNICName: &attrs.PhysicalNIC,
		AttrJavaVersion:     &attrs.JavaVersion,
	} {
		if v, ok := app.Attribute(name); ok {
			*dst = v
		}
	}

	return attrs, nil
}
