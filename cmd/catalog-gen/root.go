// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog-gen",
		Short: "Plugin catalog generator",
		Long: `catalog-gen builds the plugin catalog document from local plugin
bundles and the upstream release repositories they are published from.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}
