// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package validation provides validation functions for plugin identities,
// repository URLs and HTTP cache tokens used by the catalog generator.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var validIdentityRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateIdentity validates that a plugin identity is usable as a storage
// directory name and a release asset prefix: alphanumeric with dots, dashes
// and underscores, not starting with a separator.
func ValidateIdentity(identity string) error {
	if identity == "" || strings.TrimSpace(identity) == "" {
		return fmt.Errorf("plugin identity cannot be empty or consist only of whitespace")
	}

	if strings.Contains(identity, "\x00") {
		return fmt.Errorf("plugin identity cannot contain null bytes")
	}

	if !validIdentityRegex.MatchString(identity) {
		return fmt.Errorf("plugin identity can only contain alphanumeric characters, dots, dashes and underscores, and must not start with a separator: %q", identity)
	}

	return nil
}

// ValidateRepositoryURL validates that a source repository URL is a usable
// http(s) URL with a host and no fragment.
func ValidateRepositoryURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid repository URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("repository URL must use http or https: %s", raw)
	}

	if parsed.Host == "" {
		return fmt.Errorf("repository URL must include a host: %s", raw)
	}

	if parsed.Fragment != "" {
		return fmt.Errorf("repository URL must not contain fragments (#): %s", raw)
	}

	return nil
}

// ValidateHeaderToken validates that a stored cache token (an ETag or
// Last-Modified value) is safe to send back as an HTTP header value per
// RFC 7230. This guards against CRLF injection from a tampered token file.
func ValidateHeaderToken(value string) error {
	if value == "" {
		return fmt.Errorf("header token cannot be empty")
	}

	// Common HTTP server limit, and more than any real validator needs.
	if len(value) > 8192 {
		return fmt.Errorf("header token exceeds maximum length of 8192 bytes")
	}

	// Same validation as Go's HTTP/2 implementation.
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("invalid header token: contains control characters")
	}

	return nil
}
