// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package reconcile

//go:generate mockgen -source=engine.go -destination=mocks/mock_sources.go -package=mocks

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/logger"
	"github.com/wigglymuffin/catalog-core/recovery"
	"github.com/wigglymuffin/catalog-core/version"
)

// LocalSource is the local manifest source capability.
type LocalSource interface {
	// Identities lists the plugin identities known to local storage in
	// deterministic enumeration order.
	Identities() ([]string, error)

	// Candidates returns the local candidates for an identity: the main
	// manifest with testing folded in, then any regional manifest. A missing
	// identity yields (nil, nil).
	Candidates(identity string) ([]*catalog.Candidate, error)
}

// RemoteSource is the remote manifest source capability.
type RemoteSource interface {
	// Candidate resolves a repository URL to a remote candidate, or
	// (nil, nil) when the repository yields nothing usable.
	Candidate(ctx context.Context, identity, repoURL string) (*catalog.Candidate, error)
}

// RepoRef is one entry of the ordered repository allow-list: an identity
// whose remote repository is consulted with priority over local storage.
type RepoRef struct {
	Identity string `json:"identity" yaml:"identity"`
	URL      string `json:"url" yaml:"url"`
}

const defaultWorkers = 4

// Engine reconciles candidate manifests from both sources into the ordered
// list of canonical manifests that makes up the catalog.
type Engine struct {
	local   LocalSource
	remote  RemoteSource
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of parallel remote lookups.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine returns an Engine over the two source adapters.
func NewEngine(local LocalSource, remote RemoteSource, opts ...Option) *Engine {
	e := &Engine{local: local, remote: remote, workers: defaultWorkers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile produces the canonical manifest list for one generation run.
// Allow-listed identities come first, in allow-list order; identities found
// only in local storage follow in enumeration order. A single identity's
// failure is logged and omits that identity; only listing local storage or
// cancellation aborts the run.
func (e *Engine) Reconcile(ctx context.Context, repos []RepoRef) ([]*catalog.CanonicalManifest, error) {
	remotes, err := e.fetchRemotes(ctx, repos)
	if err != nil {
		return nil, err
	}

	var out []*catalog.CanonicalManifest
	processed := make(map[string]bool, len(repos))

	for i, ref := range repos {
		if processed[ref.Identity] {
			logger.Warnw("duplicate identity in repository allow-list", "identity", ref.Identity)
			continue
		}
		processed[ref.Identity] = true

		entries, err := e.resolve(ref.Identity, remotes[i])
		if err != nil {
			logger.Errorw("skipping identity after resolution failure",
				"identity", ref.Identity, "error", err)
			continue
		}
		out = append(out, entries...)
	}

	identities, err := e.local.Identities()
	if err != nil {
		return nil, fmt.Errorf("listing local identities: %w", err)
	}
	for _, identity := range identities {
		if processed[identity] {
			continue
		}
		processed[identity] = true

		entries, err := e.resolve(identity, nil)
		if err != nil {
			logger.Errorw("skipping identity after resolution failure",
				"identity", identity, "error", err)
			continue
		}
		out = append(out, entries...)
	}

	return out, nil
}

// fetchRemotes resolves the allow-list's remote candidates in parallel. The
// result slice is positional so output order never depends on completion
// order. Individual lookup failures are logged and become nil entries; only
// context cancellation propagates.
func (e *Engine) fetchRemotes(ctx context.Context, repos []RepoRef) ([]*catalog.Candidate, error) {
	results := make([]*catalog.Candidate, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, ref := range repos {
		g.Go(func() error {
			err := recovery.Run("remote lookup "+ref.Identity, func() error {
				candidate, err := e.remote.Candidate(gctx, ref.Identity, ref.URL)
				if err != nil {
					return err
				}
				results[i] = candidate
				return nil
			})
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				logger.Warnw("remote lookup failed", "identity", ref.Identity, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolve merges one identity's remote candidate with its local candidates
// and returns the canonical entries it contributes to the catalog.
func (e *Engine) resolve(identity string, remote *catalog.Candidate) ([]*catalog.CanonicalManifest, error) {
	var entries []*catalog.CanonicalManifest
	err := recovery.Run("resolve "+identity, func() error {
		locals, err := e.local.Candidates(identity)
		if err != nil {
			// The remote candidate can still carry the identity.
			logger.Warnw("local lookup failed", "identity", identity, "error", err)
			locals = nil
		}

		var localMain *catalog.Candidate
		var regionals []*catalog.Candidate
		for _, c := range locals {
			if c.Channel == catalog.ChannelMain && localMain == nil {
				localMain = c
			} else {
				regionals = append(regionals, c)
			}
		}

		main := pick(identity, remote, localMain)
		if main != nil {
			entries = append(entries, catalog.FromCandidate(main))
		}
		// Regional bundles are never fetched remotely; local regional entries
		// survive whichever main candidate won.
		for _, c := range regionals {
			entries = append(entries, catalog.FromCandidate(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// pick applies the selection rule between a remote and a local main-channel
// candidate. The repository is authoritative once version parity is reached:
// remote wins on equal, greater, or incomparable versions; local wins only
// when strictly newer.
func pick(identity string, remote, local *catalog.Candidate) *catalog.Candidate {
	switch {
	case remote == nil && local == nil:
		return nil
	case remote == nil:
		return local
	case local == nil:
		return remote
	}

	result, err := version.Compare(remote.Manifest.AssemblyVersion, local.Manifest.AssemblyVersion)
	if err != nil {
		logger.Debugw("versions incomparable, preferring remote candidate",
			"identity", identity,
			"remote", remote.Manifest.AssemblyVersion,
			"local", local.Manifest.AssemblyVersion)
		return remote
	}
	if result == version.Less {
		logger.Debugw("local candidate is newer than remote",
			"identity", identity,
			"remote", remote.Manifest.AssemblyVersion,
			"local", local.Manifest.AssemblyVersion)
		return local
	}
	return remote
}
