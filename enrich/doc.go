// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package enrich stamps reconciled manifests with the derived fields the
// published catalog carries: download URLs, duplicated legacy fields,
// aggregate download counts, and last-update timestamps.
package enrich
