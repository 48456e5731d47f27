// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package recovery converts panics into errors so one plugin's resolution
// cannot abort a whole generation run.
package recovery

import (
	"fmt"
	"runtime/debug"

	"github.com/wigglymuffin/catalog-core/logger"
)

// Run executes fn and converts a panic into a returned error, logging the
// stack trace under the given name. Errors returned by fn pass through
// unchanged.
func Run(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("recovered panic", "name", name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()
	return fn()
}
