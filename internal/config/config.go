// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for shopdesk.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete shopdesk configuration.
type Config struct {
	// Chat API configuration
	API APIConfig `toml:"api" yaml:"api" json:"api"`

	// Conversation history storage
	Storage StorageConfig `toml:"storage" yaml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" yaml:"ui" json:"ui"`

	// Logging configuration
	Log LogConfig `toml:"log" yaml:"log" json:"log"`

	// Source is the file the configuration was read from, if any.
	Source string `toml:"-" yaml:"-" json:"-"`
}

// APIConfig locates the chat API.
type APIConfig struct {
	// BaseURL is the scheme and host of the chat API
	BaseURL string `toml:"base_url" yaml:"base_url" json:"base_url"`
	// ChatPath is the path of the chat endpoint
	ChatPath string `toml:"chat_path" yaml:"chat_path" json:"chat_path"`
	// TimeoutSecs bounds a single request (0 = no timeout)
	TimeoutSecs int `toml:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`
	// UserAgent overrides the User-Agent header
	UserAgent string `toml:"user_agent" yaml:"user_agent" json:"user_agent,omitempty"`
}

// StorageConfig controls where conversation history is kept.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "memory"
	Backend string `toml:"backend" yaml:"backend" json:"backend"`
	// Dir is the data directory
	Dir string `toml:"dir" yaml:"dir" json:"dir"`
	// Key is the storage key of the saved conversation list
	Key string `toml:"key" yaml:"key" json:"key"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "auto", "dark", "light"
	Theme string `toml:"theme" yaml:"theme" json:"theme"`
	// ShowQuickActions displays the quick action bar
	ShowQuickActions bool `toml:"show_quick_actions" yaml:"show_quick_actions" json:"show_quick_actions"`
	// Markdown renders bot replies as markdown
	Markdown bool `toml:"markdown" yaml:"markdown" json:"markdown"`
	// SidebarWidth is the width of the history sidebar (0 = hidden)
	SidebarWidth int `toml:"sidebar_width" yaml:"sidebar_width" json:"sidebar_width"`
}

// LogConfig controls the log destination.
type LogConfig struct {
	// File is the log file path, or "-" for stderr
	File string `toml:"file" yaml:"file" json:"file"`
	// Debug adds source locations to log lines
	Debug bool `toml:"debug" yaml:"debug" json:"debug"`
}

// Valid option values.
var (
	ValidBackends = []string{"file", "sqlite", "memory"}
	ValidThemes   = []string{"auto", "dark", "light"}
)

// Sidebar width bounds when the sidebar is shown.
const (
	MinSidebarWidth = 20
	MaxSidebarWidth = 60
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	dir := defaultDataDir()
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8000",
			ChatPath:    "/api/chat",
			TimeoutSecs: 60,
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     dir,
			Key:     "chatConversations",
		},
		UI: UIConfig{
			Theme:            "auto",
			ShowQuickActions: true,
			Markdown:         true,
			SidebarWidth:     32,
		},
		Log: LogConfig{
			File: filepath.Join(dir, "shopdesk.log"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the shopdesk configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shopdesk"), nil
}

// ConfigPathTOML returns the path to the default TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// SearchPaths returns the config files Load looks for, in order.
func SearchPaths() []string {
	dir, err := ConfigDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
		filepath.Join(dir, "config.json"),
	}
}

// FindConfigFile returns the first existing file of SearchPaths, or "".
func FindConfigFile() string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func defaultDataDir() string {
	dir, err := ConfigDir()
	if err != nil {
		return ".shopdesk"
	}
	return dir
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the configuration from defaults, the config file at path (or
// the first file of SearchPaths when path is empty), .env and the
// environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return Load(path)
}

// LoadFile decodes the file at path into cfg, choosing the format from the
// file extension. Unknown extensions are read as TOML.
func LoadFile(cfg *Config, path string) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadYAML loads configuration from a YAML file.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadDotEnv loads variables from a .env file without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// API
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")
	if cfg.API.ChatPath == "" {
		cfg.API.ChatPath = defaults.API.ChatPath
	}

	// Storage
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaults.Storage.Dir
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = defaults.Storage.Key
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	cfg.UI.Theme = strings.ToLower(cfg.UI.Theme)

	// Log
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.Storage.Dir, "shopdesk.log")
	}
	cfg.Log.File = expandHome(cfg.Log.File)

	return nil
}

// =============================================================================
// ENVIRONMENT AND FLAG OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - SHOPDESK_API_URL: overrides api.base_url
//   - SHOPDESK_CHAT_PATH: overrides api.chat_path
//   - SHOPDESK_TIMEOUT_SECS: overrides api.timeout_secs
//   - SHOPDESK_DATA_DIR: overrides storage.dir
//   - SHOPDESK_STORAGE_BACKEND: overrides storage.backend
//   - SHOPDESK_STORAGE_KEY: overrides storage.key
//   - SHOPDESK_LOG_FILE: overrides log.file
//   - SHOPDESK_DEBUG: overrides log.debug
//   - SHOPDESK_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("SHOPDESK_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SHOPDESK_CHAT_PATH"); v != "" {
		c.API.ChatPath = v
	}
	if v := os.Getenv("SHOPDESK_TIMEOUT_SECS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHOPDESK_TIMEOUT_SECS: invalid integer %q", v)
		}
		c.API.TimeoutSecs = secs
	}
	if v := os.Getenv("SHOPDESK_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("SHOPDESK_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SHOPDESK_STORAGE_KEY"); v != "" {
		c.Storage.Key = v
	}
	if v := os.Getenv("SHOPDESK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("SHOPDESK_DEBUG"); v != "" {
		c.Log.Debug = v == "1" || strings.ToLower(v) == "true"
	}
	if v := os.Getenv("SHOPDESK_THEME"); v != "" {
		c.UI.Theme = v
	}
	return nil
}

// Overrides holds command line settings. Empty fields leave the config
// unchanged.
type Overrides struct {
	APIURL    string
	DataDir   string
	Backend   string
	Ephemeral bool
}

// ApplyOverrides applies command line settings and validates the result.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.APIURL != "" {
		c.API.BaseURL = strings.TrimSuffix(o.APIURL, "/")
	}
	if o.DataDir != "" {
		c.Storage.Dir = expandHome(o.DataDir)
	}
	if o.Backend != "" {
		c.Storage.Backend = strings.ToLower(o.Backend)
	}
	if o.Ephemeral {
		c.Storage.Backend = "memory"
	}
	return c.Validate()
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to path, choosing the format from the file
// extension.
func Save(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(cfg, path)
	case ".yaml", ".yml":
		return SaveYAML(cfg, path)
	default:
		return SaveTOML(cfg, path)
	}
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# shopdesk configuration file")
	fmt.Fprintln(&buf, "# Generated by shopdesk - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeConfig(path, buf.Bytes())
}

// SaveYAML saves the configuration to a YAML file.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeConfig(path, data)
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeConfig(path, data)
}

// writeConfig writes data atomically with owner-only permissions.
func writeConfig(path string, data []byte) error {
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// API
	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.API.BaseURL),
		})
	}
	if !strings.HasPrefix(c.API.ChatPath, "/") {
		errs = append(errs, ValidationError{
			Field:   "api.chat_path",
			Message: fmt.Sprintf("invalid path '%s', must start with /", c.API.ChatPath),
		})
	}
	if c.API.TimeoutSecs < 0 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 0 and 600, got %d", c.API.TimeoutSecs),
		})
	}

	// Storage
	if !contains(ValidBackends, c.Storage.Backend) {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: %s", c.Storage.Backend, strings.Join(ValidBackends, ", ")),
		})
	}
	if c.Storage.Dir == "" && c.Storage.Backend != "memory" {
		errs = append(errs, ValidationError{Field: "storage.dir", Message: "must not be empty"})
	}
	if c.Storage.Key == "" || strings.ContainsAny(c.Storage.Key, `/\`) {
		errs = append(errs, ValidationError{
			Field:   "storage.key",
			Message: fmt.Sprintf("invalid key '%s', must be non-empty without path separators", c.Storage.Key),
		})
	}

	// UI
	if !contains(ValidThemes, c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(ValidThemes, ", ")),
		})
	}
	if c.UI.SidebarWidth != 0 && (c.UI.SidebarWidth < MinSidebarWidth || c.UI.SidebarWidth > MaxSidebarWidth) {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: fmt.Sprintf("must be 0 or between %d and %d, got %d", MinSidebarWidth, MaxSidebarWidth, c.UI.SidebarWidth),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
