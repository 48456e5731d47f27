// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity string
		wantErr  bool
	}{
		{"simple", "SamplePlugin", false},
		{"with digits", "Plugin2", false},
		{"with separators", "com.example.plugin-v2_beta", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"contains space", "Sample Plugin", true},
		{"leading dot", ".hidden", true},
		{"leading dash", "-plugin", true},
		{"null byte", "plugin\x00", true},
		{"path traversal", "../escape", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateIdentity(tt.identity)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateRepositoryURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://github.com/someone/foo", false},
		{"http", "http://example.com/repo", false},
		{"empty", "", true},
		{"no scheme", "github.com/someone/foo", true},
		{"wrong scheme", "git://github.com/someone/foo", true},
		{"no host", "https://", true},
		{"fragment", "https://github.com/someone/foo#readme", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateRepositoryURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateHeaderToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"etag", `"686897696a7c876b7e"`, false},
		{"weak etag", `W/"0815"`, false},
		{"last modified", "Wed, 21 Oct 2015 07:28:00 GMT", false},
		{"empty", "", true},
		{"crlf injection", "abc\r\nSet-Cookie: x", true},
		{"control character", "abc\x01", true},
		{"too long", strings.Repeat("a", 8193), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateHeaderToken(tt.value)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
