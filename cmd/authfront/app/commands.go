// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the authfront command-line application.
package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/authfront/pkg/config"
	"github.com/stacklok/authfront/pkg/logger"
	"github.com/stacklok/authfront/pkg/users"
	"github.com/stacklok/authfront/pkg/versions"
)

// NewRootCmd creates the root command of the authfront CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "authfront",
		DisableAutoGenTag: true,
		Short:             "OAuth 2.0 and OpenID Connect front end for a remote authorization engine",
		Long: `authfront exposes the OAuth 2.0 and OpenID Connect endpoints of an
authorization server whose decisions are made by a remote engine.

Every request is translated into an engine API call and the engine's answer is
translated back into the HTTP response. authfront itself keeps only browser
sessions and authenticates end users against its user database.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the authfront configuration file")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		logger.Errorf("Error binding config flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"authfront %s\nCommit: %s\nBuilt: %s\nGo: %s\nPlatform: %s\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")
	return cmd
}

// newValidateCmd creates the validate command for checking configuration
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Validate the authfront configuration file and environment overrides.

This command checks:
- YAML syntax and value types
- Required settings, including engine credentials
- Session backend and rate limit settings
- The user database referenced by users.file`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(viper.New(), viper.GetString("config"))
			if err != nil {
				return err
			}

			store, err := users.LoadStaticStore(cfg.Users.File)
			if err != nil {
				return fmt.Errorf("user database is invalid: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "✓ Configuration is valid")
			_, _ = fmt.Fprintf(out, "  Engine: %s\n", cfg.Engine.BaseURL)
			_, _ = fmt.Fprintf(out, "  Listen: %s\n", cfg.Server.Address)
			_, _ = fmt.Fprintf(out, "  Sessions: %s\n", cfg.Session.Backend)
			_, _ = fmt.Fprintf(out, "  Users: %d\n", store.Len())
			if n := len(cfg.Introspection.ResourceServers); n > 0 {
				_, _ = fmt.Fprintf(out, "  Introspection resource servers: %d\n", n)
			}
			if cfg.RateLimit.RequestsPerSecond > 0 {
				_, _ = fmt.Fprintf(out, "  Rate limit: %g req/s (burst %d)\n",
					cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
			}
			return nil
		},
	}
}

// loadConfig loads and validates the configuration.
func loadConfig(v *viper.Viper, path string) (*config.Config, error) {
	if path != "" {
		logger.Infof("Loading configuration from: %s", path)
	}
	cfg, err := config.LoadWith(v, path)
	if err != nil {
		return nil, fmt.Errorf("configuration loading failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}
