// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wigglymuffin/catalog-core/httperr"
)

const (
	defaultBaseURL  = "https://api.github.com"
	defaultTimeout  = 30 * time.Second
	releasesPerPage = 100
)

// Release is the subset of GitHub release metadata the generator consumes.
type Release struct {
	// TagName is the release tag, e.g. "v1.2.3".
	TagName string `json:"tag_name"`
	// PublishedAt is the release publish timestamp; zero when unpublished.
	PublishedAt time.Time `json:"published_at"`
	// Assets lists the downloadable files attached to the release.
	Assets []Asset `json:"assets"`
}

// Asset is a single downloadable release artifact.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	DownloadCount      int64  `json:"download_count"`
}

// Client is a minimal GitHub REST API client. Authentication is optional;
// without a token the client is subject to the unauthenticated rate limit.
type Client struct {
	http *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, e.g. for a test server or GitHub
// Enterprise instance.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

// WithToken sets the bearer token used for API calls and asset downloads.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.http.SetAuthToken(token)
		}
	}
}

// WithTimeout bounds every request. No call may block indefinitely; exceeding
// the timeout is treated like any other failed response.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// NewClient returns a Client with sane defaults: 30s timeout and two retries
// with backoff on transport errors.
func NewClient(opts ...Option) *Client {
	hc := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(defaultTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/vnd.github+json")

	c := &Client{http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestRelease fetches the latest published release of a repository.
// Non-2xx responses are returned as httperr-coded errors so callers can tell
// absence (404, 403) from transient faults (429, 5xx).
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	var release Release
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&release).
		Get(fmt.Sprintf("/repos/%s/%s/releases/latest", owner, repo))
	if err != nil {
		return nil, fmt.Errorf("fetching latest release for %s/%s: %w", owner, repo, err)
	}
	if resp.IsError() {
		return nil, httperr.New(
			fmt.Sprintf("latest release lookup for %s/%s returned %s", owner, repo, resp.Status()),
			resp.StatusCode())
	}
	return &release, nil
}

// Releases lists every release of a repository, following pagination.
func (c *Client) Releases(ctx context.Context, owner, repo string) ([]Release, error) {
	var all []Release
	for page := 1; ; page++ {
		var releases []Release
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&releases).
			SetQueryParam("per_page", fmt.Sprintf("%d", releasesPerPage)).
			SetQueryParam("page", fmt.Sprintf("%d", page)).
			Get(fmt.Sprintf("/repos/%s/%s/releases", owner, repo))
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", owner, repo, err)
		}
		if resp.IsError() {
			return nil, httperr.New(
				fmt.Sprintf("release listing for %s/%s returned %s", owner, repo, resp.Status()),
				resp.StatusCode())
		}
		all = append(all, releases...)
		if len(releases) < releasesPerPage {
			return all, nil
		}
	}
}

// DownloadTotal sums the asset download counts across all releases of a
// repository.
func (c *Client) DownloadTotal(ctx context.Context, owner, repo string) (int64, error) {
	releases, err := c.Releases(ctx, owner, repo)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, release := range releases {
		for _, asset := range release.Assets {
			total += asset.DownloadCount
		}
	}
	return total, nil
}

// DownloadAsset fetches the raw bytes of a release asset by its browser
// download URL.
func (c *Client) DownloadAsset(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/octet-stream").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("downloading asset %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, httperr.New(
			fmt.Sprintf("asset download %s returned %s", url, resp.Status()),
			resp.StatusCode())
	}
	return resp.Body(), nil
}
