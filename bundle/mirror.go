// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/logger"
	"github.com/wigglymuffin/catalog-core/validation"
)

// External names the bundle URLs to mirror into the local plugins tree for
// one identity. Only the main URL is required.
type External struct {
	// Identity is the plugin identity the bundles belong to.
	Identity string
	// URLs maps each channel to its bundle URL. Channels without a URL are
	// left alone.
	URLs map[catalog.Channel]string
}

// CacheToken is the conditional-download state stored next to a mirrored
// bundle. Field names match the HTTP headers they were taken from.
type CacheToken struct {
	ETag         string `json:"ETag,omitempty"`
	LastModified string `json:"Last-Modified,omitempty"`
}

// Mirror downloads configured external plugin bundles into the plugins tree
// before a generation run, skipping bundles whose cache token still matches.
type Mirror struct {
	client *resty.Client
	root   string
}

// NewMirror returns a Mirror writing below the given plugins directory.
func NewMirror(client *resty.Client, root string) *Mirror {
	return &Mirror{client: client, root: root}
}

// Sync mirrors every configured external bundle. Failures are per-bundle:
// each is logged and the remaining bundles still sync. Only the count of
// failures is reported back.
func (m *Mirror) Sync(ctx context.Context, externals []External) int {
	failed := 0
	for _, ext := range externals {
		for _, channel := range []catalog.Channel{catalog.ChannelMain, catalog.ChannelTesting, catalog.ChannelRegional} {
			url, ok := ext.URLs[channel]
			if !ok || url == "" {
				continue
			}
			if err := m.fetch(ctx, url, m.destPath(ext.Identity, channel)); err != nil {
				logger.Warnw("external bundle sync failed",
					"identity", ext.Identity, "channel", channel, "url", url, "error", err)
				failed++
			}
		}
	}
	return failed
}

func (m *Mirror) destPath(identity string, channel catalog.Channel) string {
	if channel == catalog.ChannelMain {
		return filepath.Join(m.root, identity, BundleName)
	}
	return filepath.Join(m.root, identity, string(channel), BundleName)
}

// fetch performs a conditional download of one bundle. A 304 response, or a
// 200 whose validators match the stored token, leaves the existing bundle in
// place. Downloaded bytes must parse as a zip archive before they replace the
// previous bundle.
func (m *Mirror) fetch(ctx context.Context, url, dest string) error {
	req := m.client.R().SetContext(ctx)

	token := m.loadToken(dest)
	if _, err := os.Stat(dest); err == nil {
		if token.ETag != "" && validation.ValidateHeaderToken(token.ETag) == nil {
			req.SetHeader("If-None-Match", token.ETag)
		}
		if token.LastModified != "" && validation.ValidateHeaderToken(token.LastModified) == nil {
			req.SetHeader("If-Modified-Since", token.LastModified)
		}
	}

	resp, err := req.Get(url)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotModified:
		logger.Debugw("external bundle up to date", "url", url)
		return nil
	case resp.StatusCode() != http.StatusOK:
		return fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode())
	}

	data := resp.Body()
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("downloaded bundle from %s is not a valid zip: %w", url, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating bundle directory: %w", err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing bundle: %w", err)
	}

	m.storeToken(dest, CacheToken{
		ETag:         resp.Header().Get("ETag"),
		LastModified: resp.Header().Get("Last-Modified"),
	})
	logger.Infow("external bundle mirrored", "url", url, "dest", dest)
	return nil
}

func (*Mirror) tokenPath(dest string) string {
	return dest + ".meta"
}

func (m *Mirror) loadToken(dest string) CacheToken {
	var token CacheToken
	data, err := os.ReadFile(m.tokenPath(dest))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debugw("unreadable bundle cache token", "path", m.tokenPath(dest), "error", err)
		}
		return token
	}
	if err := json.Unmarshal(data, &token); err != nil {
		logger.Debugw("malformed bundle cache token", "path", m.tokenPath(dest), "error", err)
	}
	return token
}

func (m *Mirror) storeToken(dest string, token CacheToken) {
	if token.ETag == "" && token.LastModified == "" {
		return
	}
	data, err := json.Marshal(token)
	if err != nil {
		return
	}
	if err := os.WriteFile(m.tokenPath(dest), data, 0o644); err != nil {
		logger.Debugw("writing bundle cache token failed", "path", m.tokenPath(dest), "error", err)
	}
}
