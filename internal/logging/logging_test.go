// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/rigchat/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level zapcore.Level
		ok    bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"INFO", zapcore.InfoLevel, true},
		{"", zapcore.InfoLevel, true},
		{"warning", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"off", zapcore.InfoLevel, false},
		{"loud", zapcore.InfoLevel, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.level, level, tt.name)
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "rigchat.log")

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Debug("reveal started", zap.Int("chars", 12))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "rigchat", entry["logger"])
	assert.Equal(t, "reveal started", entry["msg"])
	assert.EqualValues(t, 12, entry["chars"])
}

func TestNew_LevelFilters(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	cfg.Log.File = filepath.Join(t.TempDir(), "rigchat.log")

	logger, err := New(cfg)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_OffIsNop(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "off"
	cfg.Log.File = filepath.Join(t.TempDir(), "rigchat.log")

	logger, err := New(cfg)
	require.NoError(t, err)
	logger.Error("nowhere")

	_, err = os.Stat(cfg.Log.File)
	assert.True(t, os.IsNotExist(err))
}
