// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shopdesk-tui/internal/config"
	"github.com/jeranaias/shopdesk-tui/internal/session"
)

// healthTimeout bounds "config show --check".
const healthTimeout = 5 * time.Second

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
	}
	cmd.AddCommand(a.configShowCmd(), a.configPathCmd(), a.configInitCmd())
	return cmd
}

func (a *App) configShowCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.Out, "# source: %s\n", sourceName(a.cfg))
			fmt.Fprint(a.Out, a.cfg.String())
			if !check {
				return nil
			}

			client := session.NewClient(a.cfg.API)
			ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()

			msg, err := client.Health(ctx)
			if err != nil {
				fmt.Fprintf(a.Out, "\n%s %s\n", errorLabel("unreachable:"), client.BaseURL())
				return NewCommandError("config", "check", "chat API health check failed", err)
			}
			fmt.Fprintf(a.Out, "\n%s %s (%s)\n", successLabel("reachable:"), client.BaseURL(), msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "also check that the chat API is reachable")
	return cmd
}

func (a *App) configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.ConfigPath
			if path == "" {
				path = config.FindConfigFile()
			}
			if path == "" {
				def, err := config.ConfigPathTOML()
				if err != nil {
					return &ConfigError{Err: err}
				}
				fmt.Fprintf(a.Out, "%s %s\n", def, dimText("(not created)"))
				return nil
			}
			fmt.Fprintln(a.Out, path)
			return nil
		},
	}
}

func (a *App) configInitCmd() *cobra.Command {
	var (
		force  bool
		format string
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.ConfigPath
			if path == "" {
				dir, err := config.ConfigDir()
				if err != nil {
					return &ConfigError{Err: err}
				}
				switch format {
				case "toml", "yaml", "json":
					path = filepath.Join(dir, "config."+format)
				default:
					return NewValidationErrorWithExample("format", format,
						"must be one of toml, yaml, json", "--format toml")
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return NewValidationErrorWithExample("config", path,
					"file already exists", "shopdesk config init --force")
			}

			cfg := config.Default()
			if err := cfg.ApplyOverrides(a.Overrides); err != nil {
				return &ConfigError{Err: err}
			}
			if err := config.Save(cfg, path); err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintf(a.Out, "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&format, "format", "toml", "file format: toml, yaml, json")
	return cmd
}
