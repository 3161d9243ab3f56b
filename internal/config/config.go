// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rigchat/internal/util"
)

// Provider kinds accepted in provider.kind.
const (
	ProviderQuery  = "query"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// DefaultOllamaURL is the endpoint of a local Ollama server.
const DefaultOllamaURL = "http://127.0.0.1:11434"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigchat configuration.
type Config struct {
	// Provider selects and configures the remote chat backend
	Provider ProviderConfig `toml:"provider" json:"provider"`

	// Reveal controls the typewriter animation of replies
	Reveal RevealConfig `toml:"reveal" json:"reveal"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`

	// Storage configuration for the transcript database
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// ProviderConfig configures the remote chat backend.
type ProviderConfig struct {
	// Kind is one of: "query", "ollama", "openai", "gemini"
	Kind string `toml:"kind" json:"kind"`
	// Endpoint is the base URL. Empty selects the provider's public default
	// (not allowed for "query", which has no default).
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// Model is the model name passed to the provider
	Model string `toml:"model" json:"model"`
	// APIKey authenticates against the provider
	APIKey string `toml:"api_key" json:"api_key"`
	// UID identifies the caller to "query" endpoints
	UID string `toml:"uid" json:"uid"`
	// TimeoutSecs bounds a single request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute throttles outbound requests (0 = unlimited)
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// Timeout returns the request timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// RevealConfig controls the typewriter animation.
type RevealConfig struct {
	// Enabled turns the animation on; when off replies appear at once
	Enabled bool `toml:"enabled" json:"enabled"`
	// IntervalMS is the delay between two revealed characters
	IntervalMS int `toml:"interval_ms" json:"interval_ms"`
}

// Interval returns the reveal interval as a duration.
func (r RevealConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps shows HH:MM under each message
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// Locale selects the language of fixed strings: "en" or "th"
	Locale string `toml:"locale" json:"locale"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of: "debug", "info", "warn", "error", "off"
	Level string `toml:"level" json:"level"`
	// File is the log file path (empty = ~/.rigchat/rigchat.log)
	File string `toml:"file" json:"file"`
}

// StorageConfig configures the transcript database.
type StorageConfig struct {
	// Enabled records every completed turn
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the database file (empty = ~/.rigchat/history.db)
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Kind:              ProviderOllama,
			Endpoint:          DefaultOllamaURL,
			Model:             "qwen2.5-coder:7b",
			UID:               "1",
			TimeoutSecs:       60,
			RequestsPerMinute: 0,
		},
		Reveal: RevealConfig{
			Enabled:    true,
			IntervalMS: 30,
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: true,
			Locale:         "en",
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigchat configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("RIGCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return inConfigDir("config.toml")
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	return inConfigDir("config.json")
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	return inConfigDir("rigchat.log")
}

// StoragePath returns the effective transcript database path.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	return inConfigDir("history.db")
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory.
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(tomlPath); statErr == nil {
		return LoadFromPath(tomlPath)
	}

	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(jsonPath); statErr == nil {
		return LoadFromPath(jsonPath)
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full
// validation. Keys missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# rigchat configuration file\n")
	b.WriteString("# Generated by rigchat - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors as ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	kinds := map[string]bool{ProviderQuery: true, ProviderOllama: true, ProviderOpenAI: true, ProviderGemini: true}
	if !kinds[c.Provider.Kind] {
		errs = append(errs, ValidationError{
			Field:   "provider.kind",
			Message: fmt.Sprintf("invalid kind '%s', must be one of: query, ollama, openai, gemini", c.Provider.Kind),
		})
	}

	if c.Provider.Endpoint != "" {
		u, err := url.Parse(c.Provider.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "provider.endpoint",
				Message: fmt.Sprintf("invalid URL '%s'", c.Provider.Endpoint),
			})
		}
	} else if c.Provider.Kind == ProviderQuery || c.Provider.Kind == ProviderOllama {
		errs = append(errs, ValidationError{
			Field:   "provider.endpoint",
			Message: fmt.Sprintf("required for provider '%s'", c.Provider.Kind),
		})
	}

	if c.Provider.Model == "" && c.Provider.Kind != ProviderQuery {
		errs = append(errs, ValidationError{
			Field:   "provider.model",
			Message: "must not be empty",
		})
	}

	if c.Provider.TimeoutSecs < 1 || c.Provider.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "provider.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Provider.TimeoutSecs),
		})
	}

	if c.Provider.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "provider.requests_per_minute",
			Message: "must be non-negative",
		})
	}

	if c.Reveal.IntervalMS < 1 || c.Reveal.IntervalMS > 1000 {
		errs = append(errs, ValidationError{
			Field:   "reveal.interval_ms",
			Message: fmt.Sprintf("must be 1-1000, got %d", c.Reveal.IntervalMS),
		})
	}

	themes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !themes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	locales := map[string]bool{"en": true, "th": true}
	if !locales[strings.ToLower(c.UI.Locale)] {
		errs = append(errs, ValidationError{
			Field:   "ui.locale",
			Message: fmt.Sprintf("invalid locale '%s', must be one of: en, th", c.UI.Locale),
		})
	}

	levels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "off": true}
	if !levels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error, off", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero-value fields that have no meaningful zero.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Provider.Kind == "" {
		c.Provider.Kind = defaults.Provider.Kind
	}
	c.Provider.Kind = strings.ToLower(c.Provider.Kind)
	if c.Provider.TimeoutSecs == 0 {
		c.Provider.TimeoutSecs = defaults.Provider.TimeoutSecs
	}
	if c.Provider.UID == "" {
		c.Provider.UID = defaults.Provider.UID
	}
	if c.Reveal.IntervalMS == 0 {
		c.Reveal.IntervalMS = defaults.Reveal.IntervalMS
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.Locale == "" {
		c.UI.Locale = defaults.UI.Locale
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RIGCHAT_PROVIDER: overrides provider.kind
//   - RIGCHAT_MODEL: overrides provider.model
//   - RIGCHAT_API_KEY: overrides provider.api_key
//   - RIGCHAT_ENDPOINT: overrides provider.endpoint
//   - RIGCHAT_REVEAL_MS: overrides reveal.interval_ms ("0" disables the reveal)
//   - RIGCHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if kind := os.Getenv("RIGCHAT_PROVIDER"); kind != "" {
		c.Provider.Kind = strings.ToLower(kind)
		if c.Provider.Kind != ProviderOllama && c.Provider.Endpoint == DefaultOllamaURL {
			c.Provider.Endpoint = ""
		}
	}
	if model := os.Getenv("RIGCHAT_MODEL"); model != "" {
		c.Provider.Model = model
	}
	if key := os.Getenv("RIGCHAT_API_KEY"); key != "" {
		c.Provider.APIKey = key
	}
	if endpoint := os.Getenv("RIGCHAT_ENDPOINT"); endpoint != "" {
		c.Provider.Endpoint = endpoint
	}
	if ms := os.Getenv("RIGCHAT_REVEAL_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n >= 0 {
			if n == 0 {
				c.Reveal.Enabled = false
			} else {
				c.Reveal.Enabled = true
				c.Reveal.IntervalMS = n
			}
		}
	}
	if level := os.Getenv("RIGCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "provider.model").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "reveal.interval_ms").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent. Matching is case-insensitive, so "api_key" finds APIKey.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				switch strings.ToLower(strVal) {
				case "yes", "on":
					boolVal = true
				case "no", "off":
					boolVal = false
				default:
					return fmt.Errorf("invalid boolean value: %q", strVal)
				}
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"provider.kind",
		"provider.endpoint",
		"provider.model",
		"provider.api_key",
		"provider.uid",
		"provider.timeout_secs",
		"provider.requests_per_minute",
		"reveal.enabled",
		"reveal.interval_ms",
		"ui.theme",
		"ui.show_timestamps",
		"ui.locale",
		"log.level",
		"log.file",
		"storage.enabled",
		"storage.path",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON rendering of the config with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Provider.APIKey != "" {
		safe.Provider.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
