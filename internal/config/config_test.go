// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RIGCHAT_HOME", dir)
	for _, key := range []string{
		"RIGCHAT_PROVIDER", "RIGCHAT_MODEL", "RIGCHAT_API_KEY",
		"RIGCHAT_ENDPOINT", "RIGCHAT_REVEAL_MS", "RIGCHAT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return dir
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderOllama, cfg.Provider.Kind)
	assert.Equal(t, DefaultOllamaURL, cfg.Provider.Endpoint)
	assert.True(t, cfg.Reveal.Enabled)
	assert.Equal(t, 30*time.Millisecond, cfg.Reveal.Interval())
	assert.Equal(t, time.Minute, cfg.Provider.Timeout())
	assert.Equal(t, "en", cfg.UI.Locale)
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{name: "valid default config", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider.Kind = "carrier-pigeon" }, field: "provider.kind", wantErr: true},
		{name: "bad endpoint", mutate: func(c *Config) { c.Provider.Endpoint = "not a url" }, field: "provider.endpoint", wantErr: true},
		{
			name: "query needs endpoint",
			mutate: func(c *Config) {
				c.Provider.Kind = ProviderQuery
				c.Provider.Endpoint = ""
			},
			field:   "provider.endpoint",
			wantErr: true,
		},
		{
			name: "openai may use public endpoint",
			mutate: func(c *Config) {
				c.Provider.Kind = ProviderOpenAI
				c.Provider.Endpoint = ""
				c.Provider.Model = "gpt-4o-mini"
			},
		},
		{
			name: "query needs no model",
			mutate: func(c *Config) {
				c.Provider.Kind = ProviderQuery
				c.Provider.Endpoint = "https://example.com/api/chat"
				c.Provider.Model = ""
			},
		},
		{name: "ollama needs model", mutate: func(c *Config) { c.Provider.Model = "" }, field: "provider.model", wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Provider.TimeoutSecs = 0 }, field: "provider.timeout_secs", wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.Provider.RequestsPerMinute = -1 }, field: "provider.requests_per_minute", wantErr: true},
		{name: "interval too long", mutate: func(c *Config) { c.Reveal.IntervalMS = 5000 }, field: "reveal.interval_ms", wantErr: true},
		{name: "interval at minimum", mutate: func(c *Config) { c.Reveal.IntervalMS = 1 }},
		{name: "invalid theme", mutate: func(c *Config) { c.UI.Theme = "neon" }, field: "ui.theme", wantErr: true},
		{name: "thai locale", mutate: func(c *Config) { c.UI.Locale = "th" }},
		{name: "invalid locale", mutate: func(c *Config) { c.UI.Locale = "xx" }, field: "ui.locale", wantErr: true},
		{name: "log off", mutate: func(c *Config) { c.Log.Level = "off" }},
		{name: "invalid log level", mutate: func(c *Config) { c.Log.Level = "chatty" }, field: "log.level", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "want ValidateErrors, got %T", err)
			require.NotEmpty(t, verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestValidateErrors_Error(t *testing.T) {
	errs := ValidateErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	assert.Equal(t, "a: bad; b: worse", errs.Error())
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("provider.kind")
	require.NoError(t, err)
	assert.Equal(t, "ollama", val)

	require.NoError(t, cfg.Set("reveal.interval_ms", "45"))
	assert.Equal(t, 45, cfg.Reveal.IntervalMS)

	require.NoError(t, cfg.Set("provider.api_key", "sk-test"))
	assert.Equal(t, "sk-test", cfg.Provider.APIKey)

	require.NoError(t, cfg.Set("ui.show_timestamps", "off"))
	assert.False(t, cfg.UI.ShowTimestamps)

	require.NoError(t, cfg.Set("storage.enabled", false))
	assert.False(t, cfg.Storage.Enabled)

	assert.Error(t, cfg.Set("reveal.interval_ms", "fast"))
	assert.Error(t, cfg.Set("ui.show_timestamps", "maybe"))

	_, err = cfg.Get("invalid.key")
	assert.Error(t, err)
	_, err = cfg.Get("provider.kind.deeper")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("RIGCHAT_PROVIDER", "OpenAI")
	t.Setenv("RIGCHAT_MODEL", "gpt-4o-mini")
	t.Setenv("RIGCHAT_API_KEY", "sk-env")
	t.Setenv("RIGCHAT_REVEAL_MS", "12")
	t.Setenv("RIGCHAT_LOG_LEVEL", "DEBUG")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, ProviderOpenAI, cfg.Provider.Kind)
	assert.Empty(t, cfg.Provider.Endpoint, "ollama endpoint must not leak into another provider")
	assert.Equal(t, "gpt-4o-mini", cfg.Provider.Model)
	assert.Equal(t, "sk-env", cfg.Provider.APIKey)
	assert.Equal(t, 12, cfg.Reveal.IntervalMS)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestConfig_RevealMSZeroDisables(t *testing.T) {
	isolate(t)
	t.Setenv("RIGCHAT_REVEAL_MS", "0")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.False(t, cfg.Reveal.Enabled)
	assert.Equal(t, 30, cfg.Reveal.IntervalMS)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOMLKeepsMissingDefaults(t *testing.T) {
	dir := isolate(t)
	data := `
[provider]
kind = "query"
endpoint = "https://example.com/api/gpt"
api_key = "k"

[ui]
locale = "th"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderQuery, cfg.Provider.Kind)
	assert.Equal(t, "https://example.com/api/gpt", cfg.Provider.Endpoint)
	assert.Equal(t, "th", cfg.UI.Locale)
	assert.Equal(t, 30, cfg.Reveal.IntervalMS)
	assert.True(t, cfg.Reveal.Enabled)
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	data := `{"reveal": {"enabled": false, "interval_ms": 10}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Reveal.Enabled)
	assert.Equal(t, 10, cfg.Reveal.IntervalMS)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	_, err := Load()
	require.Error(t, err)
	var verrs ValidateErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestSaveAndReload(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	cfg.Provider.Model = "llama3.2"
	cfg.UI.ShowTimestamps = false
	require.NoError(t, Save(cfg))

	path := filepath.Join(dir, "config.toml")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	back, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	back, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestConfig_PathsAndRedaction(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rigchat.log"), logPath)

	dbPath, err := cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history.db"), dbPath)

	cfg.Storage.Path = "/tmp/elsewhere.db"
	dbPath, _ = cfg.StoragePath()
	assert.Equal(t, "/tmp/elsewhere.db", dbPath)

	cfg.Provider.APIKey = "super-secret"
	assert.NotContains(t, cfg.String(), "super-secret")
	assert.Contains(t, cfg.String(), "[REDACTED]")
	assert.Equal(t, "super-secret", cfg.Provider.APIKey)
}
