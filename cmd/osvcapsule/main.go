// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package main

import (
	"os"

	"osvcapsule.sh/internal/cli/osvcapsule"
)

func main() {
	os.Exit(osvcapsule.Main(os.Args[1:]))
}
