// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for shopdesk.
//
// Supports TOML, YAML and JSON configuration files, a .env file, environment
// variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Chat API location and timeout
//   - StorageConfig: Persistence backend, data directory and key
//   - UIConfig: Terminal UI preferences
//   - LogConfig: Log destination
//
// # Configuration Precedence
//
// Later sources win:
//   - Built-in defaults
//   - ~/.shopdesk/config.toml (or config.yaml, config.yml, config.json)
//   - .env in the working directory (never overrides variables already set)
//   - Environment variables (SHOPDESK_*)
//   - Command line flags (see Overrides)
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	closer, err := config.SetupLogging(cfg.Log)
package config
