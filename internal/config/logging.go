// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for shopdesk.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging points the standard logger at the configured destination.
// Logging to a file keeps the full-screen UI intact. The returned Closer
// releases the log file.
func SetupLogging(cfg LogConfig) (io.Closer, error) {
	flags := log.LstdFlags
	if cfg.Debug {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)

	if cfg.File == "" || cfg.File == "-" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

// DiscardLogs silences the standard logger.
func DiscardLogs() {
	log.SetOutput(io.Discard)
}
