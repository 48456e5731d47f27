// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wigglymuffin/catalog-core/bundle"
	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/config"
	"github.com/wigglymuffin/catalog-core/enrich"
	"github.com/wigglymuffin/catalog-core/env"
	"github.com/wigglymuffin/catalog-core/filter"
	"github.com/wigglymuffin/catalog-core/github"
	"github.com/wigglymuffin/catalog-core/logger"
	"github.com/wigglymuffin/catalog-core/reconcile"
	"github.com/wigglymuffin/catalog-core/writer"
)

func newGenerateCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the plugin catalog",
		Long: `Generate reconciles the local plugins directory with the configured
upstream repositories and writes the catalog document. Individual plugin
failures are logged and skipped; only configuration and output errors are
fatal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return runGenerate(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "configuration file (default "+config.DefaultPath()+")")
	flags.String("plugins-root", "", "local plugins directory")
	flags.String("output", "", "catalog output path")
	flags.String("branch", "", "branch raw bundle URLs point into")
	flags.Int("workers", 0, "parallel remote lookups")
	flags.Bool("debug", false, "enable debug logging")

	v.SetEnvPrefix("CATALOG_GEN")
	v.AutomaticEnv()
	for _, name := range []string{"config", "plugins-root", "output", "branch", "workers", "debug"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	return cmd
}

// loadConfig resolves the effective configuration: file values, then
// environment overrides, then explicit flags.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	if v.GetBool("debug") {
		logger.InitializeWithDebug(alwaysDebug{})
	}

	path := v.GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, &env.OSReader{})
	if err != nil {
		return nil, err
	}

	if root := v.GetString("plugins-root"); root != "" {
		cfg.PluginsRoot = root
	}
	if output := v.GetString("output"); output != "" {
		cfg.OutputPath = output
	}
	if branch := v.GetString("branch"); branch != "" {
		cfg.Branch = branch
	}
	if workers := v.GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}
	return cfg, nil
}

type alwaysDebug struct{}

func (alwaysDebug) IsDebug() bool { return true }

func runGenerate(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	excluder, err := filter.NewExcluder(cfg.Exclude)
	if err != nil {
		return err
	}
	rules, err := github.RulesByName(cfg.AssetRules)
	if err != nil {
		return err
	}

	if len(cfg.Externals) > 0 {
		mirror := bundle.NewMirror(resty.New().SetTimeout(cfg.HTTPTimeout), cfg.PluginsRoot)
		if failed := mirror.Sync(ctx, cfg.BundleExternals()); failed > 0 {
			logger.Warnf("%d external bundle(s) failed to sync, keeping previous copies", failed)
		}
	}

	clientOpts := []github.Option{github.WithTimeout(cfg.HTTPTimeout)}
	if cfg.Token != "" {
		clientOpts = append(clientOpts, github.WithToken(cfg.Token))
	}
	client := github.NewClient(clientOpts...)

	store := bundle.NewDirStore(cfg.PluginsRoot)
	engine := reconcile.NewEngine(
		bundle.NewSource(store),
		github.NewSource(client, rules),
		reconcile.WithWorkers(cfg.Workers),
	)

	entries, err := engine.Reconcile(ctx, cfg.Repositories)
	if err != nil {
		return fmt.Errorf("reconciling catalog: %w", err)
	}
	entries = excluder.Apply(entries)

	prior, err := writer.Load(cfg.OutputPath)
	if err != nil {
		logger.Warnw("previous catalog unreadable, timestamps may churn",
			"path", cfg.OutputPath, "error", err)
		prior = nil
	}

	opts := []enrich.Option{
		enrich.WithTemplates(cfg.Templates),
		enrich.WithPriorUpdates(prior.PriorUpdates()),
		enrich.WithTrimmedFields(cfg.TrimmedFields),
	}
	if len(cfg.Duplicates) > 0 {
		opts = append(opts, enrich.WithDuplicateRules(cfg.Duplicates))
	}
	enricher := enrich.New(cfg.Branch, client, store, opts...)
	enricher.Enrich(ctx, entries)

	doc := catalog.Document(entries)
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("generated catalog is invalid: %w", err)
	}
	if err := writer.Write(cfg.OutputPath, doc); err != nil {
		return err
	}

	logger.Infow("catalog written", "path", cfg.OutputPath, "entries", len(doc))
	return nil
}
