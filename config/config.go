// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package config loads the static generation configuration: source and
// output locations, the repository allow-list, URL templates, and the field
// policies applied during enrichment. Configuration comes from a YAML file
// with a small set of environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/wigglymuffin/catalog-core/bundle"
	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/enrich"
	"github.com/wigglymuffin/catalog-core/env"
	"github.com/wigglymuffin/catalog-core/github"
	"github.com/wigglymuffin/catalog-core/reconcile"
	"github.com/wigglymuffin/catalog-core/validation"
)

const (
	defaultPluginsRoot = "plugins"
	defaultOutputPath  = "pluginmaster.json"
	defaultBranch      = "main"
	defaultTimeout     = 30 * time.Second
	defaultWorkers     = 4
)

// ExternalSpec configures one externally hosted plugin whose bundles are
// mirrored into the plugins tree before generation.
type ExternalSpec struct {
	Identity string `json:"identity" yaml:"identity"`
	Main     string `json:"main" yaml:"main"`
	Testing  string `json:"testing,omitempty" yaml:"testing,omitempty"`
	Global   string `json:"global,omitempty" yaml:"global,omitempty"`
}

// Config is the full static configuration of a generation run.
type Config struct {
	// Branch names the branch raw bundle URLs point into.
	Branch string `json:"branch" yaml:"branch"`
	// PluginsRoot is the local plugins directory.
	PluginsRoot string `json:"pluginsRoot" yaml:"pluginsRoot"`
	// OutputPath is where the catalog document is written.
	OutputPath string `json:"outputPath" yaml:"outputPath"`

	// Repositories is the ordered repository allow-list.
	Repositories []reconcile.RepoRef `json:"repositories,omitempty" yaml:"repositories,omitempty"`
	// Externals lists externally hosted bundles to mirror before generation.
	Externals []ExternalSpec `json:"externals,omitempty" yaml:"externals,omitempty"`

	// Templates are the per-channel download URL templates.
	Templates enrich.Templates `json:"templates" yaml:"templates"`
	// TrimmedFields overrides the allow-list of manifest fields kept in the
	// output. Empty means the default set.
	TrimmedFields []string `json:"trimmedFields,omitempty" yaml:"trimmedFields,omitempty"`
	// Duplicates overrides the field duplication rules.
	Duplicates []catalog.DuplicateRule `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	// Exclude lists CEL exclusion rules applied before output.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	// AssetRules orders the release asset selection rules by name. Empty
	// means the default order.
	AssetRules []string `json:"assetRules,omitempty" yaml:"assetRules,omitempty"`

	// HTTPTimeout bounds individual API and download requests.
	HTTPTimeout time.Duration `json:"httpTimeout" yaml:"httpTimeout"`
	// Workers bounds parallel remote lookups.
	Workers int `json:"workers" yaml:"workers"`

	// Token is the GitHub API token. Environment only, never from file.
	Token string `json:"-" yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Branch:      defaultBranch,
		PluginsRoot: defaultPluginsRoot,
		OutputPath:  defaultOutputPath,
		Templates:   enrich.DefaultTemplates,
		HTTPTimeout: defaultTimeout,
		Workers:     defaultWorkers,
	}
}

// DefaultPath returns the per-user configuration file location under the XDG
// config directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "catalog-gen", "config.yaml")
}

// Load reads the configuration file at path, fills unset fields with
// defaults, and applies environment overrides. An empty path skips the file
// and loads defaults plus environment.
func Load(path string, reader env.Reader) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv(reader)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment overrides on top of the file values. GITHUB_REF
// arrives in the "refs/heads/<branch>" form on CI runners.
func (c *Config) applyEnv(reader env.Reader) {
	if ref := reader.Getenv("GITHUB_REF"); ref != "" {
		if idx := strings.LastIndex(ref, "refs/heads/"); idx >= 0 {
			ref = ref[idx+len("refs/heads/"):]
		}
		c.Branch = ref
	}
	if token := reader.Getenv("GITHUB_TOKEN"); token != "" {
		c.Token = token
	}
}

func (c *Config) applyDefaults() {
	if c.Branch == "" {
		c.Branch = defaultBranch
	}
	if c.PluginsRoot == "" {
		c.PluginsRoot = defaultPluginsRoot
	}
	if c.OutputPath == "" {
		c.OutputPath = defaultOutputPath
	}
	if c.Templates.Install == "" {
		c.Templates.Install = enrich.DefaultTemplates.Install
	}
	if c.Templates.Testing == "" {
		c.Templates.Testing = enrich.DefaultTemplates.Testing
	}
	if c.Templates.Regional == "" {
		c.Templates.Regional = enrich.DefaultTemplates.Regional
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultTimeout
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
}

// Validate rejects configurations that would produce a broken catalog.
func (c *Config) Validate() error {
	if _, err := github.RulesByName(c.AssetRules); err != nil {
		return fmt.Errorf("assetRules: %w", err)
	}

	seen := make(map[string]bool, len(c.Repositories))
	for _, ref := range c.Repositories {
		if err := validation.ValidateIdentity(ref.Identity); err != nil {
			return fmt.Errorf("repository entry %q: %w", ref.Identity, err)
		}
		if err := validation.ValidateRepositoryURL(ref.URL); err != nil {
			return fmt.Errorf("repository entry %q: %w", ref.Identity, err)
		}
		if seen[ref.Identity] {
			return fmt.Errorf("repository entry %q: duplicate identity", ref.Identity)
		}
		seen[ref.Identity] = true
	}

	for _, ext := range c.Externals {
		if err := validation.ValidateIdentity(ext.Identity); err != nil {
			return fmt.Errorf("external entry %q: %w", ext.Identity, err)
		}
		if ext.Main == "" {
			return fmt.Errorf("external entry %q: main bundle URL is required", ext.Identity)
		}
		for _, u := range []string{ext.Main, ext.Testing, ext.Global} {
			if u == "" {
				continue
			}
			if err := validation.ValidateRepositoryURL(u); err != nil {
				return fmt.Errorf("external entry %q: %w", ext.Identity, err)
			}
		}
	}
	return nil
}

// BundleExternals converts the configured externals into the mirror's input
// form.
func (c *Config) BundleExternals() []bundle.External {
	externals := make([]bundle.External, 0, len(c.Externals))
	for _, ext := range c.Externals {
		urls := make(map[catalog.Channel]string, 3)
		if ext.Main != "" {
			urls[catalog.ChannelMain] = ext.Main
		}
		if ext.Testing != "" {
			urls[catalog.ChannelTesting] = ext.Testing
		}
		if ext.Global != "" {
			urls[catalog.ChannelRegional] = ext.Global
		}
		externals = append(externals, bundle.External{Identity: ext.Identity, URLs: urls})
	}
	return externals
}
