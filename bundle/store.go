// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package bundle

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks Store

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wigglymuffin/catalog-core/catalog"
)

// ErrNotFound is returned when no bundle or manifest payload exists for the
// requested identity and channel. Absence is data, not a fault; callers treat
// it as "no candidate".
var ErrNotFound = errors.New("bundle not found")

// BundleName is the file name every channel's bundle is stored under.
const BundleName = "latest.zip"

// Store is the local storage capability the source adapter reads through.
type Store interface {
	// ListIdentities returns the plugin identities present in local storage,
	// in deterministic enumeration order.
	ListIdentities() ([]string, error)

	// ReadManifest returns the decoded manifest for an identity and channel,
	// or ErrNotFound if no bundle exists there.
	ReadManifest(identity string, channel catalog.Channel) (*catalog.Manifest, error)

	// LastModified returns the bundle's last-modified time, or ErrNotFound.
	LastModified(identity string, channel catalog.Channel) (time.Time, error)
}

// DirStore implements Store over a plugins directory on disk.
type DirStore struct {
	root string
}

// NewDirStore returns a Store rooted at the given plugins directory.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// ListIdentities enumerates plugin folders that contain a main-channel bundle.
// os.ReadDir sorts by name, which gives the deterministic order the catalog's
// local-only pass relies on.
func (s *DirStore) ListIdentities() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing plugins directory %s: %w", s.root, err)
	}

	var identities []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(s.bundlePath(entry.Name(), catalog.ChannelMain)); err != nil {
			continue
		}
		identities = append(identities, entry.Name())
	}
	return identities, nil
}

// ReadManifest opens the channel's bundle and decodes the `<identity>.json`
// payload inside it.
func (s *DirStore) ReadManifest(identity string, channel catalog.Channel) (*catalog.Manifest, error) {
	data, err := os.ReadFile(s.bundlePath(identity, channel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading bundle for %s/%s: %w", identity, channel, err)
	}
	return DecodeManifest(data, identity)
}

// LastModified returns the modification time of the channel's bundle file.
func (s *DirStore) LastModified(identity string, channel catalog.Channel) (time.Time, error) {
	info, err := os.Stat(s.bundlePath(identity, channel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("stat bundle for %s/%s: %w", identity, channel, err)
	}
	return info.ModTime(), nil
}

func (s *DirStore) bundlePath(identity string, channel catalog.Channel) string {
	if channel == catalog.ChannelMain {
		return filepath.Join(s.root, identity, BundleName)
	}
	return filepath.Join(s.root, identity, string(channel), BundleName)
}

// DecodeManifest extracts and decodes the `<identity>.json` manifest payload
// from zipped bundle bytes. The decoded manifest is validated against the
// identity it was discovered under. A bundle without the payload yields
// ErrNotFound.
func DecodeManifest(data []byte, identity string) (*catalog.Manifest, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening bundle for %s: %w", identity, err)
	}

	want := identity + ".json"
	for _, f := range zr.File {
		if f.Name != want {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening manifest payload %s: %w", want, err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading manifest payload %s: %w", want, err)
		}

		var m catalog.Manifest
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("decoding manifest payload %s: %w", want, err)
		}
		if err := m.Validate(identity); err != nil {
			return nil, err
		}
		return &m, nil
	}
	return nil, fmt.Errorf("%w: bundle has no %s payload", ErrNotFound, want)
}
