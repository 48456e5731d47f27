// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want Result
	}{
		{"equal", "1.2.3", "1.2.3", Equal},
		{"equal four components", "1.2.3.4", "1.2.3.4", Equal},
		{"zero pads shorter operand", "1.2", "1.2.0", Equal},
		{"zero pads shorter operand reversed", "1.2.0.0", "1.2", Equal},
		{"greater major", "2.0.0", "1.9.9", Greater},
		{"less major", "1.9.9", "2.0.0", Less},
		{"greater minor", "1.10.0", "1.9.0", Greater},
		{"numeric not lexicographic", "1.10", "1.2", Greater},
		{"longer operand decides", "1.2.0.1", "1.2", Greater},
		{"single component", "3", "2", Greater},
		{"zero versions", "0.0.0", "0", Equal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_Incomparable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"non-numeric component", "1.2.beta", "1.2.0"},
		{"non-numeric second operand", "1.2.0", "1.x"},
		{"empty first operand", "", "1.0"},
		{"empty second operand", "1.0", ""},
		{"negative component", "1.-2", "1.0"},
		{"semver prerelease suffix", "1.0.0-rc1", "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compare(tt.a, tt.b)
			require.ErrorIs(t, err, ErrIncomparable)
		})
	}
}
