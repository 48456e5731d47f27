// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package env abstracts environment variable access so configuration loading
// and logging can be tested with injected values.
package env

//go:generate mockgen -source=env.go -destination=mocks/mock_reader.go -package=mocks Reader

import "os"

// Reader defines an interface for environment variable access.
type Reader interface {
	Getenv(key string) string
}

// OSReader implements Reader using the standard os package.
type OSReader struct{}

// Getenv returns the value of the environment variable named by the key.
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// MapReader implements Reader over a fixed map, for tests and for callers
// that resolve their environment up front.
type MapReader map[string]string

// Getenv returns the mapped value for the key, or the empty string.
func (m MapReader) Getenv(key string) string {
	return m[key]
}
