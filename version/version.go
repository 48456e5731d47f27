// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package version compares dotted-numeric version strings such as the
// four-component assembly versions carried by plugin manifests.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Result is the outcome of comparing two version strings.
type Result int

// Comparison outcomes.
const (
	Less    Result = -1
	Equal   Result = 0
	Greater Result = 1
)

// ErrIncomparable is returned when either operand contains a component that
// is not a non-negative integer. Callers must have an explicit fallback
// policy for this case; ordering results are never returned alongside it.
var ErrIncomparable = errors.New("versions are not comparable")

// Compare compares two dot-separated numeric version strings component-wise.
// The shorter operand is zero-padded on the right before comparison, so
// "1.2" and "1.2.0" are Equal. Components must be non-negative integers;
// anything else yields ErrIncomparable.
func Compare(a, b string) (Result, error) {
	av, err := parse(a)
	if err != nil {
		return Equal, fmt.Errorf("%w: %q: %w", ErrIncomparable, a, err)
	}
	bv, err := parse(b)
	if err != nil {
		return Equal, fmt.Errorf("%w: %q: %w", ErrIncomparable, b, err)
	}

	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}
	for i := 0; i < n; i++ {
		var ac, bc int
		if i < len(av) {
			ac = av[i]
		}
		if i < len(bv) {
			bc = bv[i]
		}
		switch {
		case ac < bc:
			return Less, nil
		case ac > bc:
			return Greater, nil
		}
	}
	return Equal, nil
}

func parse(v string) ([]int, error) {
	if v == "" {
		return nil, errors.New("empty version string")
	}
	parts := strings.Split(v, ".")
	components := make([]int, 0, len(parts))
	for _, part := range parts {
		c, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("component %q is not numeric", part)
		}
		if c < 0 {
			return nil, fmt.Errorf("component %q is negative", part)
		}
		components = append(components, c)
	}
	return components, nil
}
