// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"net/url"
	"strings"
)

// ParseRepoURL extracts the (owner, repo) pair from a GitHub repository URL.
// It recognizes https://github.com/<owner>/<repo> with an optional .git
// suffix and trailing path segments. Anything else reports ok=false; an
// unrecognized URL is not an error, just not a remote source.
func ParseRepoURL(raw string) (owner, repo string, ok bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", false
	}

	host := strings.ToLower(parsed.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return "", "", false
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return "", "", false
	}

	owner = segments[0]
	repo = strings.TrimSuffix(segments[1], ".git")
	if repo == "" {
		return "", "", false
	}
	return owner, repo, true
}
