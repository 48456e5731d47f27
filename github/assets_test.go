// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(assetNames ...string) []Asset {
	assets := make([]Asset, 0, len(assetNames))
	for _, name := range assetNames {
		assets = append(assets, Asset{Name: name, BrowserDownloadURL: "https://example.com/" + name})
	}
	return assets
}

func TestSelectAsset_DefaultOrder(t *testing.T) {
	t.Parallel()

	rules, err := RulesByName(nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		assets   []Asset
		identity string
		want     string
		wantOK   bool
	}{
		{
			name:     "latest.zip wins over everything",
			assets:   names("Foo.zip", "Foo-1.2.3.zip", "latest.zip"),
			identity: "Foo",
			want:     "latest.zip",
			wantOK:   true,
		},
		{
			name:     "versioned prefix beats exact name",
			assets:   names("Foo.zip", "Foo-1.2.3.zip"),
			identity: "Foo",
			want:     "Foo-1.2.3.zip",
			wantOK:   true,
		},
		{
			name:     "versioned prefix excludes -latest.zip",
			assets:   names("Foo-latest.zip", "Foo.zip"),
			identity: "Foo",
			want:     "Foo.zip",
			wantOK:   true,
		},
		{
			name:     "exact name",
			assets:   names("README.md", "Foo.zip"),
			identity: "Foo",
			want:     "Foo.zip",
			wantOK:   true,
		},
		{
			name:     "any zip as last resort",
			assets:   names("source.tar.gz", "Bar-latest.zip"),
			identity: "Foo",
			want:     "Bar-latest.zip",
			wantOK:   true,
		},
		{
			name:     "first asset wins within a rule",
			assets:   names("Foo-1.0.0.zip", "Foo-2.0.0.zip"),
			identity: "Foo",
			want:     "Foo-1.0.0.zip",
			wantOK:   true,
		},
		{
			name:     "no zip asset",
			assets:   names("Foo.dll", "checksums.txt"),
			identity: "Foo",
			wantOK:   false,
		},
		{
			name:     "empty asset list",
			identity: "Foo",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			asset, ok := SelectAsset(tt.assets, tt.identity, rules)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, asset.Name)
			}
		})
	}
}

func TestRulesByName(t *testing.T) {
	t.Parallel()

	t.Run("custom order changes precedence", func(t *testing.T) {
		t.Parallel()

		// Swap exact-name ahead of versioned-prefix, the alternate policy
		// order seen in the wild.
		rules, err := RulesByName([]string{RuleLatestZip, RuleExactName, RuleVersionedPrefix, RuleAnyZip})
		require.NoError(t, err)

		asset, ok := SelectAsset(names("Foo-1.2.3.zip", "Foo.zip"), "Foo", rules)
		require.True(t, ok)
		assert.Equal(t, "Foo.zip", asset.Name)
	})

	t.Run("unknown rule name errors", func(t *testing.T) {
		t.Parallel()

		_, err := RulesByName([]string{"no-such-rule"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no-such-rule")
	})

	t.Run("empty list is the default order", func(t *testing.T) {
		t.Parallel()

		rules, err := RulesByName(nil)
		require.NoError(t, err)
		require.Len(t, rules, len(DefaultAssetRuleOrder))
		for i, rule := range rules {
			assert.Equal(t, DefaultAssetRuleOrder[i], rule.Name)
		}
	})
}
