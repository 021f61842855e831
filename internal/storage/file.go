// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the saved conversation list of shopdesk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// FileKV stores each key as <dir>/<key>.json.
type FileKV struct {
	// Dir is the directory holding the value files.
	Dir string

	mu sync.Mutex
}

// NewFileKV creates a file backend rooted at dir, creating it if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: data directory is empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileKV{Dir: dir}, nil
}

// Path returns the file that holds key.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

// Get implements KV.
func (f *FileKV) Get(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), nil
}

// Set implements KV. The value is written atomically.
func (f *FileKV) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := util.AtomicWriteFile(f.Path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close implements KV.
func (f *FileKV) Close() error {
	return nil
}
