// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"errors"
	"fmt"

	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/logger"
)

// Source is the local manifest source adapter.
type Source struct {
	store Store
}

// NewSource returns a Source reading through the given store.
func NewSource(store Store) *Source {
	return &Source{store: store}
}

// Identities returns the plugin identities known to local storage, in the
// store's deterministic enumeration order.
func (s *Source) Identities() ([]string, error) {
	return s.store.ListIdentities()
}

// Candidates returns the local candidates for an identity: the main-channel
// manifest with testing fields folded in, followed by the regional manifest
// when one exists. It returns (nil, nil) when no main bundle exists; absence
// is not an error. Sibling bundles that fail to decode are logged and skipped
// so one bad variant does not discard the main manifest.
func (s *Source) Candidates(identity string) ([]*catalog.Candidate, error) {
	main, err := s.store.ReadManifest(identity, catalog.ChannelMain)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("local manifest for %s: %w", identity, err)
	}

	testing, err := s.store.ReadManifest(identity, catalog.ChannelTesting)
	switch {
	case err == nil:
		main.FoldTesting(testing)
	case !errors.Is(err, ErrNotFound):
		logger.Warnw("skipping unreadable testing bundle", "identity", identity, "error", err)
	}

	candidates := []*catalog.Candidate{{
		Manifest:   *main,
		Channel:    catalog.ChannelMain,
		Provenance: catalog.ProvenanceLocal,
	}}

	regional, err := s.store.ReadManifest(identity, catalog.ChannelRegional)
	switch {
	case err == nil:
		regional.QualifyRegional()
		candidates = append(candidates, &catalog.Candidate{
			Manifest:   *regional,
			Channel:    catalog.ChannelRegional,
			Provenance: catalog.ProvenanceLocal,
		})
	case !errors.Is(err, ErrNotFound):
		logger.Warnw("skipping unreadable regional bundle", "identity", identity, "error", err)
	}

	return candidates, nil
}
