// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package manifest

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	BaseImageJava7 = "cloudius/osv-openjdk"
	BaseImageJava8 = "cloudius/osv-openjdk8"

	DefaultBaseImage = BaseImageJava8
)

var baseImages = map[int]string{
	7: BaseImageJava7,
	8: BaseImageJava8,
}

// BaseImage selects the guest base image for the declared Java version.  An
// empty version selects DefaultBaseImage.
func BaseImage(version string) (string, error) {
	if version == "" {
		return DefaultBaseImage, nil
	}

	major, err := JavaMajorVersion(version)
	if err != nil {
		return "", &UnsupportedRuntimeVersionError{Version: version, Err: err}
	}

	image, ok := baseImages[major]
	if !ok {
		return "", &UnsupportedRuntimeVersionError{Version: version}
	}

	return image, nil
}

// JavaMajorVersion parses either a bare major version ("8") or the legacy
// dotted form ("1.8", "1.7.0_45") where the second component is the major.
func JavaMajorVersion(version string) (int, error) {
	parts := strings.Split(strings.TrimSpace(version), ".")

	if len(parts) == 1 {
		major, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("unrecognized major Java version: %s", version)
		}
		if major < 5 {
			return 0, fmt.Errorf("unrecognized major Java version: %s", version)
		}

		return major, nil
	}

	major, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("unrecognized major Java version: %s", version)
	}

	return major, nil
}
