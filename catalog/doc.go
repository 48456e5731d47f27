// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

/*
Package catalog contains the core type definitions for the plugin catalog
document ("pluginmaster") produced by the distribution index generator.

A Manifest is the fixed, allow-listed field set a plugin ships inside its
bundle. A Candidate is a manifest annotated with where it came from (a local
bundle or a remote release). A CanonicalManifest is the single chosen-and-merged
manifest per plugin and channel, extended with the derived fields (download
links, download count, last update) that the enrichment stage computes. A
Document is the ordered list of canonical manifests serialized as the final
catalog.

The serialized document is validated against the JSON schema embedded under
data/ directory; see schema_validation.go.
*/
package catalog
