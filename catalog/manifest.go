// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"strings"
)

// Channel identifies the distribution variant a manifest belongs to.
type Channel string

// Distribution channels. The string values double as the bundle subdirectory
// names under a plugin's folder in local storage.
const (
	// ChannelMain is the default release channel.
	ChannelMain Channel = "main"
	// ChannelTesting is the pre-release channel. Testing manifests are never
	// emitted as standalone catalog entries; their version fields are folded
	// into the Main manifest instead.
	ChannelTesting Channel = "testing"
	// ChannelRegional is the regional variant channel ("global" builds). A
	// regional manifest is a structurally distinct catalog entry whose display
	// name carries RegionalNameSuffix.
	ChannelRegional Channel = "global"
)

// RegionalNameSuffix is appended to the display name of regional catalog
// entries to distinguish them from the main entry of the same plugin.
const RegionalNameSuffix = " (API12)"

// Provenance records which source a candidate manifest was obtained from.
type Provenance string

// Candidate provenance values.
const (
	ProvenanceLocal  Provenance = "local"
	ProvenanceRemote Provenance = "remote"
)

// Manifest is the fixed set of metadata fields a plugin declares in the
// `<identity>.json` payload of its bundle. All fields are optional except
// InternalName, which must match the identity the manifest was discovered
// under and is immutable once set.
type Manifest struct {
	// Author is the plugin author's display name.
	Author string `json:"Author,omitempty"`
	// Name is the human-readable display name shown in the installer.
	Name string `json:"Name,omitempty"`
	// Punchline is a one-line tagline for the plugin.
	Punchline string `json:"Punchline,omitempty"`
	// Description is the longer plugin description.
	Description string `json:"Description,omitempty"`
	// Tags are categorization labels used for search and filtering.
	Tags []string `json:"Tags,omitempty"`
	// InternalName is the stable plugin identity, consistent across all
	// channels and sources.
	InternalName string `json:"InternalName"`
	// RepoURL is the URL of the plugin's source repository.
	RepoURL string `json:"RepoUrl,omitempty"`
	// Changelog describes the most recent changes.
	Changelog string `json:"Changelog,omitempty"`
	// AssemblyVersion is the installed version string (dotted numeric).
	AssemblyVersion string `json:"AssemblyVersion,omitempty"`
	// ApplicableVersion is the host version the plugin targets.
	ApplicableVersion string `json:"ApplicableVersion,omitempty"`
	// DalamudAPILevel is the minimum host API level required.
	DalamudAPILevel int `json:"DalamudApiLevel,omitempty"`
	// TestingAssemblyVersion is the testing-channel version, folded in from
	// the testing sibling manifest when one exists.
	TestingAssemblyVersion string `json:"TestingAssemblyVersion,omitempty"`
	// TestingDalamudAPILevel is the testing-channel minimum host API level.
	TestingDalamudAPILevel int `json:"TestingDalamudApiLevel,omitempty"`
	// IconURL points at the plugin's icon image.
	IconURL string `json:"IconUrl,omitempty"`
	// ImageURLs lists additional screenshot or banner images.
	ImageURLs []string `json:"ImageUrls,omitempty"`
}

// DefaultTrimmedFields is the default allow-list of manifest fields that
// survive trimming, by JSON field name.
var DefaultTrimmedFields = []string{
	"Author",
	"Name",
	"Punchline",
	"Description",
	"Tags",
	"InternalName",
	"RepoUrl",
	"Changelog",
	"AssemblyVersion",
	"ApplicableVersion",
	"DalamudApiLevel",
	"TestingAssemblyVersion",
	"TestingDalamudApiLevel",
	"IconUrl",
	"ImageUrls",
}

// Validate checks the manifest against the identity it was discovered under.
// An empty InternalName is filled in from the identity; a conflicting one is
// an error, since the identity is immutable once set.
func (m *Manifest) Validate(identity string) error {
	if m.InternalName == "" {
		m.InternalName = identity
		return nil
	}
	if m.InternalName != identity {
		return fmt.Errorf("manifest internal name %q does not match identity %q", m.InternalName, identity)
	}
	return nil
}

// FoldTesting copies the testing sibling manifest's version fields into m.
// No standalone catalog entry is created for the testing channel.
func (m *Manifest) FoldTesting(testing *Manifest) {
	if testing == nil {
		return
	}
	m.TestingAssemblyVersion = testing.AssemblyVersion
	m.TestingDalamudAPILevel = testing.DalamudAPILevel
}

// QualifyRegional appends the regional display-name suffix, once.
func (m *Manifest) QualifyRegional() {
	if !strings.HasSuffix(m.Name, RegionalNameSuffix) {
		m.Name += RegionalNameSuffix
	}
}

// Trim zeroes every field whose JSON name is not in the allow-list. Unknown
// names in the allow-list are ignored. Derived fields on CanonicalManifest are
// never affected; trimming happens before they are computed.
func (m *Manifest) Trim(allowed []string) {
	keep := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		keep[name] = struct{}{}
	}
	drop := func(name string, fn func()) {
		if _, ok := keep[name]; !ok {
			fn()
		}
	}
	drop("Author", func() { m.Author = "" })
	drop("Name", func() { m.Name = "" })
	drop("Punchline", func() { m.Punchline = "" })
	drop("Description", func() { m.Description = "" })
	drop("Tags", func() { m.Tags = nil })
	drop("InternalName", func() { m.InternalName = "" })
	drop("RepoUrl", func() { m.RepoURL = "" })
	drop("Changelog", func() { m.Changelog = "" })
	drop("AssemblyVersion", func() { m.AssemblyVersion = "" })
	drop("ApplicableVersion", func() { m.ApplicableVersion = "" })
	drop("DalamudApiLevel", func() { m.DalamudAPILevel = 0 })
	drop("TestingAssemblyVersion", func() { m.TestingAssemblyVersion = "" })
	drop("TestingDalamudApiLevel", func() { m.TestingDalamudAPILevel = 0 })
	drop("IconUrl", func() { m.IconURL = "" })
	drop("ImageUrls", func() { m.ImageURLs = nil })
}

// Candidate is a manifest annotated with its provenance. Candidates are
// constructed once per generation run and never mutated afterwards.
type Candidate struct {
	// Manifest is the decoded manifest payload.
	Manifest Manifest
	// Channel is the distribution channel the manifest belongs to.
	Channel Channel
	// Provenance records whether the candidate came from local storage or a
	// remote release.
	Provenance Provenance
	// Repo is the "owner/repo" slug of the source repository, when remote.
	Repo string
	// Asset is the release asset name the manifest was extracted from, when
	// remote.
	Asset string
	// ReleaseUnix is the release publish time in epoch seconds, when known.
	ReleaseUnix int64
}
