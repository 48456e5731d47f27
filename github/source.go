// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"

	"github.com/wigglymuffin/catalog-core/bundle"
	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/httperr"
	"github.com/wigglymuffin/catalog-core/logger"
)

// Source is the remote manifest source adapter.
type Source struct {
	client *Client
	rules  []AssetRule
}

// NewSource returns a Source using the given client and asset-selection
// policy. A nil or empty rule list falls back to the default order.
func NewSource(client *Client, rules []AssetRule) *Source {
	if len(rules) == 0 {
		rules, _ = RulesByName(nil)
	}
	return &Source{client: client, rules: rules}
}

// Candidate resolves a plugin identity's repository URL to a remote
// candidate manifest. Every failure mode short of context cancellation
// collapses to (nil, nil) with the cause logged: unrecognized URL, missing
// release, no matching asset, undecodable bundle, denied or rate-limited API
// responses. Absence of data is not a fault.
func (s *Source) Candidate(ctx context.Context, identity, repoURL string) (*catalog.Candidate, error) {
	owner, repo, ok := ParseRepoURL(repoURL)
	if !ok {
		logger.Debugw("repository URL not recognized, skipping remote lookup",
			"identity", identity, "url", repoURL)
		return nil, nil
	}
	slug := owner + "/" + repo

	release, err := s.client.LatestRelease(ctx, owner, repo)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		switch {
		case httperr.IsAbsence(err):
			logger.Debugw("no remote release available", "identity", identity, "repo", slug, "error", err)
		case httperr.IsRateLimited(err):
			logger.Warnw("remote release lookup rate limited", "identity", identity, "repo", slug)
		default:
			logger.Warnw("remote release lookup failed", "identity", identity, "repo", slug, "error", err)
		}
		return nil, nil
	}

	asset, ok := SelectAsset(release.Assets, identity, s.rules)
	if !ok {
		logger.Debugw("release has no matching bundle asset",
			"identity", identity, "repo", slug, "tag", release.TagName)
		return nil, nil
	}

	data, err := s.client.DownloadAsset(ctx, asset.BrowserDownloadURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warnw("bundle asset download failed",
			"identity", identity, "repo", slug, "asset", asset.Name, "error", err)
		return nil, nil
	}

	manifest, err := bundle.DecodeManifest(data, identity)
	if err != nil {
		logger.Warnw("remote bundle manifest undecodable",
			"identity", identity, "repo", slug, "asset", asset.Name, "error", err)
		return nil, nil
	}

	candidate := &catalog.Candidate{
		Manifest:   *manifest,
		Channel:    catalog.ChannelMain,
		Provenance: catalog.ProvenanceRemote,
		Repo:       slug,
		Asset:      asset.Name,
	}
	if !release.PublishedAt.IsZero() {
		candidate.ReleaseUnix = release.PublishedAt.Unix()
	}
	return candidate, nil
}
