// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package writer persists the catalog document. Writes are atomic: the
// marshaled document lands in a temporary file next to the destination and
// is renamed into place, so readers never observe a partial catalog.
package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wigglymuffin/catalog-core/catalog"
)

// Load reads a previously written catalog document. A missing file is not an
// error; it returns an empty document so first runs need no special casing.
func Load(path string) (catalog.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	doc, err := catalog.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return doc, nil
}

// Write marshals the document and atomically replaces the file at path.
// The temporary file is created in the destination directory so the rename
// never crosses a filesystem boundary.
func Write(path string, doc catalog.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary catalog file: %w", err)
	}
	defer func() {
		// Best effort; gone already on the success path.
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temporary catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary catalog file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting catalog permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing catalog %s: %w", path, err)
	}
	return nil
}
