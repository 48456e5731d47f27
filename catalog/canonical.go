// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalManifest is the single manifest chosen and merged per plugin and
// channel, extended with the derived fields computed by the enrichment stage.
// Unlike Candidate it is mutated in place between selection and serialization.
type CanonicalManifest struct {
	Manifest

	// DownloadLinkInstall is the URL the installer fetches the bundle from.
	DownloadLinkInstall string `json:"DownloadLinkInstall,omitempty"`
	// DownloadLinkUpdate mirrors DownloadLinkInstall for clients that still
	// read the legacy field name.
	DownloadLinkUpdate string `json:"DownloadLinkUpdate,omitempty"`
	// DownloadLinkTesting is the testing-channel bundle URL, present only
	// when a testing variant exists.
	DownloadLinkTesting string `json:"DownloadLinkTesting,omitempty"`
	// DownloadCount is the total asset download count across all releases of
	// the source repository, 0 when unknown.
	DownloadCount int64 `json:"DownloadCount"`
	// LastUpdate is the last-update time in epoch seconds.
	LastUpdate int64 `json:"LastUpdate,omitempty"`

	// Channel, Provenance, Repo, Asset and ReleaseUnix carry the winning
	// candidate's provenance through enrichment. They are not serialized.
	Channel     Channel    `json:"-"`
	Provenance  Provenance `json:"-"`
	Repo        string     `json:"-"`
	Asset       string     `json:"-"`
	ReleaseUnix int64      `json:"-"`
}

// FromCandidate copies a chosen candidate into a canonical manifest.
func FromCandidate(c *Candidate) *CanonicalManifest {
	return &CanonicalManifest{
		Manifest:    c.Manifest,
		Channel:     c.Channel,
		Provenance:  c.Provenance,
		Repo:        c.Repo,
		Asset:       c.Asset,
		ReleaseUnix: c.ReleaseUnix,
	}
}

// Key uniquely identifies the (identity, channel) pair a canonical manifest
// occupies in the catalog.
func (m *CanonicalManifest) Key() string {
	return m.InternalName + "/" + string(m.Channel)
}

// DuplicateRule copies the value of one field into others whenever the target
// is absent. Used to keep a legacy field name populated alongside its renamed
// successor. Fields are addressed by JSON name; only string fields are
// supported.
type DuplicateRule struct {
	// From is the source field.
	From string `json:"from" yaml:"from"`
	// To lists the target fields to fill when empty.
	To []string `json:"to" yaml:"to"`
}

// DefaultDuplicateRules mirrors DownloadLinkInstall into the legacy
// DownloadLinkUpdate field.
var DefaultDuplicateRules = []DuplicateRule{
	{From: "DownloadLinkInstall", To: []string{"DownloadLinkUpdate"}},
}

// ApplyDuplicates applies the configured field-duplication rules to m.
// Unknown field names and empty sources are skipped.
func (m *CanonicalManifest) ApplyDuplicates(rules []DuplicateRule) {
	for _, rule := range rules {
		src, ok := m.stringField(rule.From)
		if !ok || src == "" {
			continue
		}
		for _, target := range rule.To {
			if cur, ok := m.stringField(target); ok && cur == "" {
				m.setStringField(target, src)
			}
		}
	}
}

func (m *CanonicalManifest) stringField(name string) (string, bool) {
	switch name {
	case "Author":
		return m.Author, true
	case "Name":
		return m.Name, true
	case "Punchline":
		return m.Punchline, true
	case "Description":
		return m.Description, true
	case "InternalName":
		return m.InternalName, true
	case "RepoUrl":
		return m.RepoURL, true
	case "Changelog":
		return m.Changelog, true
	case "AssemblyVersion":
		return m.AssemblyVersion, true
	case "ApplicableVersion":
		return m.ApplicableVersion, true
	case "TestingAssemblyVersion":
		return m.TestingAssemblyVersion, true
	case "IconUrl":
		return m.IconURL, true
	case "DownloadLinkInstall":
		return m.DownloadLinkInstall, true
	case "DownloadLinkUpdate":
		return m.DownloadLinkUpdate, true
	case "DownloadLinkTesting":
		return m.DownloadLinkTesting, true
	default:
		return "", false
	}
}

func (m *CanonicalManifest) setStringField(name, value string) {
	switch name {
	case "Author":
		m.Author = value
	case "Name":
		m.Name = value
	case "Punchline":
		m.Punchline = value
	case "Description":
		m.Description = value
	case "InternalName":
		m.InternalName = value
	case "RepoUrl":
		m.RepoURL = value
	case "Changelog":
		m.Changelog = value
	case "AssemblyVersion":
		m.AssemblyVersion = value
	case "ApplicableVersion":
		m.ApplicableVersion = value
	case "TestingAssemblyVersion":
		m.TestingAssemblyVersion = value
	case "IconUrl":
		m.IconURL = value
	case "DownloadLinkInstall":
		m.DownloadLinkInstall = value
	case "DownloadLinkUpdate":
		m.DownloadLinkUpdate = value
	case "DownloadLinkTesting":
		m.DownloadLinkTesting = value
	}
}

// Document is the ordered list of canonical manifests that makes up one
// generation run's catalog. Order and content are deterministic for identical
// inputs; Marshal output is byte-identical across runs when nothing changed.
type Document []*CanonicalManifest

// Marshal serializes the document with stable field order and four-space
// indentation. HTML escaping is disabled so URLs survive untouched. A nil
// document serializes as an empty array, not null, so a catalog with no
// plugins is still schema-valid.
func (d Document) Marshal() ([]byte, error) {
	if d == nil {
		d = Document{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("serializing catalog document: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a previously written catalog document.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing catalog document: %w", err)
	}
	return d, nil
}

// PriorUpdates extracts the LastUpdate values of a previously written
// document, keyed by internal name. Regional entries are distinguished by
// their display-name suffix since provenance fields are not serialized.
func (d Document) PriorUpdates() map[string]int64 {
	prior := make(map[string]int64, len(d))
	for _, m := range d {
		if m == nil || m.InternalName == "" {
			continue
		}
		key := m.InternalName + "/" + string(ChannelMain)
		if hasRegionalSuffix(m.Name) {
			key = m.InternalName + "/" + string(ChannelRegional)
		}
		prior[key] = m.LastUpdate
	}
	return prior
}

func hasRegionalSuffix(name string) bool {
	return len(name) >= len(RegionalNameSuffix) && name[len(name)-len(RegionalNameSuffix):] == RegionalNameSuffix
}
