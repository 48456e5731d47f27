// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

/*
Package github resolves plugin manifests from GitHub release assets.

Client wraps the GitHub REST API for the handful of calls the catalog
generator needs: latest-release lookup, full release listing for aggregate
download counts, and asset downloads. Source is the remote manifest source
adapter: it parses a repository URL, picks the best bundle asset from the
latest release using an ordered, configurable rule list, and decodes the
manifest payload inside it.

Every failure mode of the adapter collapses to "no candidate" with the cause
logged; a missing release, a private repository, or a rate-limited API call is
absence of data, not a fault.
*/
package github
