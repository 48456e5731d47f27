// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wigglymuffin/catalog-core/catalog"
)

func testDocument() catalog.Document {
	return catalog.Document{
		{
			Manifest: catalog.Manifest{
				Name:            "Foo",
				InternalName:    "Foo",
				AssemblyVersion: "1.0.0",
			},
			DownloadLinkInstall: "https://example.test/Foo/latest.zip",
			DownloadCount:       3,
			LastUpdate:          1700000000,
		},
	}
}

func TestWriteAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pluginmaster.json")
	require.NoError(t, Write(path, testDocument()))

	doc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, doc, 1)
	assert.Equal(t, "Foo", doc[0].InternalName)
	assert.Equal(t, int64(1700000000), doc[0].LastUpdate)
}

func TestWriteReplacesAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pluginmaster.json")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0644))

	require.NoError(t, Write(path, testDocument()))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc, 1)

	// No temporary files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pluginmaster.json")
	require.NoError(t, Write(path, testDocument()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, Write(path, testDocument()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	doc, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pluginmaster.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
