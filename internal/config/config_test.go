// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var envVars = []string{
	"SHOPDESK_API_URL", "SHOPDESK_CHAT_PATH", "SHOPDESK_TIMEOUT_SECS",
	"SHOPDESK_DATA_DIR", "SHOPDESK_STORAGE_BACKEND", "SHOPDESK_STORAGE_KEY",
	"SHOPDESK_LOG_FILE", "SHOPDESK_DEBUG", "SHOPDESK_THEME",
}

// isolate points HOME and the working directory at temp dirs and unsets all
// SHOPDESK_* variables for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, name := range envVars {
		t.Setenv(name, "placeholder")
		os.Unsetenv(name)
	}
	chdir(t, t.TempDir())
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" || cfg.API.ChatPath != "/api/chat" {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.API.TimeoutSecs)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Key != "chatConversations" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if want := filepath.Join(home, ".shopdesk"); cfg.Storage.Dir != want {
		t.Errorf("Storage.Dir = %q, want %q", cfg.Storage.Dir, want)
	}
	if !cfg.UI.ShowQuickActions || !cfg.UI.Markdown || cfg.UI.Theme != "auto" {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
}

// =============================================================================
// FILE FORMATS
// =============================================================================

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "config.toml", `
[api]
base_url = "https://shop.example.com/"
timeout_secs = 15

[storage]
backend = "sqlite"

[ui]
show_quick_actions = false
`},
		{"yaml", "config.yaml", `
api:
  base_url: https://shop.example.com/
  timeout_secs: 15
storage:
  backend: sqlite
ui:
  show_quick_actions: false
`},
		{"json", "config.json", `{
  "api": {"base_url": "https://shop.example.com/", "timeout_secs": 15},
  "storage": {"backend": "sqlite"},
  "ui": {"show_quick_actions": false}
}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			path := filepath.Join(home, ".shopdesk", tt.file)
			writeFile(t, path, tt.content)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Source != path {
				t.Errorf("Source = %q, want %q", cfg.Source, path)
			}
			if cfg.API.BaseURL != "https://shop.example.com" {
				t.Errorf("BaseURL = %q", cfg.API.BaseURL)
			}
			if cfg.API.TimeoutSecs != 15 {
				t.Errorf("TimeoutSecs = %d", cfg.API.TimeoutSecs)
			}
			if cfg.Storage.Backend != "sqlite" {
				t.Errorf("Backend = %q", cfg.Storage.Backend)
			}
			if cfg.UI.ShowQuickActions {
				t.Error("ShowQuickActions should be false")
			}
			// Unset values keep their defaults.
			if cfg.API.ChatPath != "/api/chat" || !cfg.UI.Markdown {
				t.Errorf("defaults lost: %+v %+v", cfg.API, cfg.UI)
			}
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".shopdesk", "config.toml"), "[api\nbroken")

	if _, err := Load(""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	isolate(t)
	if _, err := LoadFromPath("/nonexistent/shopdesk.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// =============================================================================
// PRECEDENCE
// =============================================================================

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".shopdesk", "config.toml"), `
[api]
base_url = "http://file.example.com"
chat_path = "/file/chat"

[ui]
theme = "light"
`)
	// .env beats the file but not the real environment.
	writeFile(t, ".env", "SHOPDESK_CHAT_PATH=/dotenv/chat\nSHOPDESK_API_URL=http://dotenv.example.com\n")
	t.Cleanup(func() { os.Unsetenv("SHOPDESK_CHAT_PATH") })
	t.Setenv("SHOPDESK_API_URL", "http://env.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want file value", cfg.UI.Theme)
	}
	if cfg.API.ChatPath != "/dotenv/chat" {
		t.Errorf("ChatPath = %q, want .env value", cfg.API.ChatPath)
	}
	if cfg.API.BaseURL != "http://env.example.com" {
		t.Errorf("BaseURL = %q, want environment value", cfg.API.BaseURL)
	}

	if err := cfg.ApplyOverrides(Overrides{APIURL: "http://flag.example.com/"}); err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	if cfg.API.BaseURL != "http://flag.example.com" {
		t.Errorf("BaseURL = %q, want flag value", cfg.API.BaseURL)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SHOPDESK_TIMEOUT_SECS", "5")
	t.Setenv("SHOPDESK_DATA_DIR", "/tmp/shopdesk-data")
	t.Setenv("SHOPDESK_STORAGE_BACKEND", "memory")
	t.Setenv("SHOPDESK_STORAGE_KEY", "otherKey")
	t.Setenv("SHOPDESK_LOG_FILE", "-")
	t.Setenv("SHOPDESK_DEBUG", "true")
	t.Setenv("SHOPDESK_THEME", "dark")

	cfg := Default()
	if err := cfg.ApplyEnvOverrides(); err != nil {
		t.Fatalf("ApplyEnvOverrides: %v", err)
	}
	if cfg.API.TimeoutSecs != 5 || cfg.Storage.Dir != "/tmp/shopdesk-data" ||
		cfg.Storage.Backend != "memory" || cfg.Storage.Key != "otherKey" ||
		cfg.Log.File != "-" || !cfg.Log.Debug || cfg.UI.Theme != "dark" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvOverrides_BadTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("SHOPDESK_TIMEOUT_SECS", "soon")
	if err := Default().ApplyEnvOverrides(); err == nil {
		t.Fatal("expected error for non-integer timeout")
	}
}

func TestApplyOverrides_Ephemeral(t *testing.T) {
	isolate(t)
	cfg := Default()
	if err := cfg.ApplyOverrides(Overrides{Backend: "sqlite", Ephemeral: true}); err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Storage.Backend)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.API.BaseURL = "localhost:8000" }, "api.base_url"},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"chat path", func(c *Config) { c.API.ChatPath = "api/chat" }, "api.chat_path"},
		{"timeout", func(c *Config) { c.API.TimeoutSecs = -1 }, "api.timeout_secs"},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"key", func(c *Config) { c.Storage.Key = "a/b" }, "storage.key"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"sidebar", func(c *Config) { c.UI.SidebarWidth = 5 }, "ui.sidebar_width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			if len(verrs) != 1 || verrs[0].Field != tt.field {
				t.Errorf("errors = %v, want one for %s", verrs, tt.field)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

// =============================================================================
// SAVE
// =============================================================================

func TestSave_RoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "config"+ext)

			cfg := Default()
			cfg.API.BaseURL = "https://shop.example.com"
			cfg.UI.SidebarWidth = 40
			cfg.UI.Markdown = false
			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm() != 0600 && runtime.GOOS != "windows" {
				t.Errorf("permissions = %o, want 600", info.Mode().Perm())
			}

			loaded, err := LoadFromPath(path)
			if err != nil {
				t.Fatalf("LoadFromPath: %v", err)
			}
			if loaded.API.BaseURL != cfg.API.BaseURL || loaded.UI.SidebarWidth != 40 || loaded.UI.Markdown {
				t.Errorf("round trip mismatch: %+v", loaded)
			}
		})
	}
}

func TestString_IsTOML(t *testing.T) {
	isolate(t)
	s := Default().String()
	if !strings.Contains(s, "[api]") || !strings.Contains(s, `chat_path = "/api/chat"`) {
		t.Errorf("String() = %s", s)
	}
}

// =============================================================================
// LOGGING
// =============================================================================

func TestSetupLogging_File(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	defer log.SetFlags(log.LstdFlags)

	path := filepath.Join(t.TempDir(), "logs", "shopdesk.log")
	closer, err := SetupLogging(LogConfig{File: path, Debug: true})
	if err != nil {
		t.Fatalf("SetupLogging: %v", err)
	}
	log.Printf("hello from test")
	log.SetOutput(os.Stderr)
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello from test") || !strings.Contains(string(data), "config_test.go") {
		t.Errorf("log content = %q", data)
	}
}
