// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package main is the catalog-gen command line interface. It reconciles
// local plugin bundles with their upstream repositories and writes the
// resulting plugin catalog document.
package main

import (
	"os"

	"github.com/wigglymuffin/catalog-core/logger"
)

func main() {
	logger.Initialize()

	if err := newRootCmd().Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
