// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/github"
	"github.com/wigglymuffin/catalog-core/logger"
)

// Templates holds the per-channel download URL templates used when a manifest
// has no resolvable remote release asset. The placeholders "{branch}" and
// "{plugin}" expand to the generation branch and the plugin's internal name.
type Templates struct {
	Install  string `json:"install" yaml:"install"`
	Testing  string `json:"testing" yaml:"testing"`
	Regional string `json:"regional" yaml:"regional"`
}

// DefaultTemplates points at the raw bundle paths of the plugins repository.
var DefaultTemplates = Templates{
	Install:  "https://github.com/WigglyMuffin/DalamudPlugins/raw/{branch}/plugins/{plugin}/latest.zip",
	Testing:  "https://github.com/WigglyMuffin/DalamudPlugins/raw/{branch}/plugins/{plugin}/testing/latest.zip",
	Regional: "https://github.com/WigglyMuffin/DalamudPlugins/raw/{branch}/plugins/{plugin}/global/latest.zip",
}

func (t Templates) expand(tmpl, branch, plugin string) string {
	return strings.NewReplacer("{branch}", branch, "{plugin}", plugin).Replace(tmpl)
}

// ModTimes exposes bundle modification times. Satisfied by bundle.DirStore.
type ModTimes interface {
	LastModified(identity string, channel catalog.Channel) (time.Time, error)
}

// Enricher derives the catalog-only fields on reconciled manifests.
type Enricher struct {
	branch     string
	templates  Templates
	trimmed    []string
	duplicates []catalog.DuplicateRule
	counts     *CountCache
	times      ModTimes
	prior      map[string]int64
	now        func() time.Time
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithTemplates overrides the download URL templates.
func WithTemplates(t Templates) Option {
	return func(e *Enricher) { e.templates = t }
}

// WithTrimmedFields overrides the allow-list of manifest fields that survive
// trimming.
func WithTrimmedFields(fields []string) Option {
	return func(e *Enricher) {
		if len(fields) > 0 {
			e.trimmed = fields
		}
	}
}

// WithDuplicateRules overrides the field duplication rules.
func WithDuplicateRules(rules []catalog.DuplicateRule) Option {
	return func(e *Enricher) { e.duplicates = rules }
}

// WithPriorUpdates supplies the previous catalog's last-update values as
// produced by Document.PriorUpdates, keyed by internal name and channel. They
// are kept for entries with no release timestamp and no local bundle, so
// re-runs do not churn timestamps.
func WithPriorUpdates(prior map[string]int64) Option {
	return func(e *Enricher) { e.prior = prior }
}

// New returns an Enricher for the given branch. The counter resolves
// download counts and times resolves local bundle modification times; either
// may matter for only a subset of entries.
func New(branch string, counter ReleaseCounter, times ModTimes, opts ...Option) *Enricher {
	e := &Enricher{
		branch:     branch,
		templates:  DefaultTemplates,
		trimmed:    catalog.DefaultTrimmedFields,
		duplicates: catalog.DefaultDuplicateRules,
		counts:     NewCountCache(counter),
		times:      times,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich stamps every entry in place. Trimming runs before any derived field
// so trimming can never strip what enrichment added.
func (e *Enricher) Enrich(ctx context.Context, entries []*catalog.CanonicalManifest) {
	for _, entry := range entries {
		entry.Trim(e.trimmed)

		entry.DownloadLinkInstall = e.installURL(entry)
		if entry.TestingAssemblyVersion != "" && entry.Channel != catalog.ChannelRegional {
			entry.DownloadLinkTesting = e.templates.expand(e.templates.Testing, e.branch, entry.InternalName)
		}
		entry.ApplyDuplicates(e.duplicates)

		entry.DownloadCount = e.counts.Total(ctx, e.repoSlug(entry))
		entry.LastUpdate = e.lastUpdate(entry)
	}
}

// installURL prefers the stable latest-release asset URL for remote-sourced
// entries; it always resolves to the current latest release rather than a
// snapshot. Everything else uses the channel's template.
func (e *Enricher) installURL(entry *catalog.CanonicalManifest) string {
	if entry.Provenance == catalog.ProvenanceRemote && entry.Repo != "" && entry.Asset != "" {
		return "https://github.com/" + entry.Repo + "/releases/latest/download/" + entry.Asset
	}
	tmpl := e.templates.Install
	if entry.Channel == catalog.ChannelRegional {
		tmpl = e.templates.Regional
	}
	return e.templates.expand(tmpl, e.branch, entry.InternalName)
}

// repoSlug resolves the repository an entry's download count is charged to.
func (e *Enricher) repoSlug(entry *catalog.CanonicalManifest) string {
	if entry.Repo != "" {
		return entry.Repo
	}
	if entry.RepoURL == "" {
		return ""
	}
	owner, repo, ok := github.ParseRepoURL(entry.RepoURL)
	if !ok {
		logger.Debugw("manifest repository URL not resolvable",
			"name", entry.InternalName, "url", entry.RepoURL)
		return ""
	}
	return owner + "/" + repo
}

// lastUpdate picks the entry's timestamp: the remote release time when one
// was captured, else the local bundle's mtime, else the prior catalog's
// value, else the generation time.
func (e *Enricher) lastUpdate(entry *catalog.CanonicalManifest) int64 {
	if entry.ReleaseUnix > 0 {
		return entry.ReleaseUnix
	}
	if modified, err := e.times.LastModified(entry.InternalName, entry.Channel); err == nil {
		return modified.Unix()
	}
	if prior, ok := e.prior[entry.Key()]; ok && prior > 0 {
		return prior
	}
	return e.now().Unix()
}
