// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"strings"
	"sync"

	"github.com/wigglymuffin/catalog-core/logger"
)

// ReleaseCounter aggregates asset download counts across every release of a
// repository.
type ReleaseCounter interface {
	DownloadTotal(ctx context.Context, owner, repo string) (int64, error)
}

// CountCache memoizes download totals per repository so plugins sharing a
// repository are billed one API query between them. Query failures are
// non-fatal: they log, count as zero, and are cached so the same failing
// repository is not retried within a run.
type CountCache struct {
	mu      sync.Mutex
	counter ReleaseCounter
	counts  map[string]int64
}

// NewCountCache returns a cache over the given counter.
func NewCountCache(counter ReleaseCounter) *CountCache {
	return &CountCache{counter: counter, counts: make(map[string]int64)}
}

// Total returns the repository's aggregate download count. The slug is the
// "owner/repo" form; anything else yields zero.
func (c *CountCache) Total(ctx context.Context, slug string) int64 {
	owner, repo, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || repo == "" {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if total, cached := c.counts[slug]; cached {
		return total
	}

	total, err := c.counter.DownloadTotal(ctx, owner, repo)
	if err != nil {
		logger.Warnw("download count query failed", "repo", slug, "error", err)
		total = 0
	}
	c.counts[slug] = total
	return total
}
