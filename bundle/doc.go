// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

/*
Package bundle reads plugin manifests out of local archive bundles.

Local storage is a plugins directory with one folder per plugin identity:

	plugins/<identity>/latest.zip           main channel bundle
	plugins/<identity>/testing/latest.zip   testing channel bundle (optional)
	plugins/<identity>/global/latest.zip    regional channel bundle (optional)

Each bundle is a zip archive carrying the manifest payload `<identity>.json`
at its root. Store is the storage capability; Source is the local manifest
source adapter that folds testing fields into the main manifest and surfaces
regional bundles as independent candidates. Mirror keeps configured external
bundles synced into the same tree ahead of a generation run.
*/
package bundle
