// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by rigchat components.
//
// The TUI owns stdout and stderr, so logs go to a file under the config
// directory. Level "off" yields a no-op logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/rigchat/internal/config"
)

// ParseLevel maps a config level name to a zap level. ok is false for
// "off" and for unknown names.
func ParseLevel(name string) (level zapcore.Level, ok bool) {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// New builds a JSON file logger from the log section of cfg.
func New(cfg *config.Config) (*zap.Logger, error) {
	level, ok := ParseLevel(cfg.Log.Level)
	if !ok {
		return zap.NewNop(), nil
	}

	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	return NewFile(path, level)
}

// NewFile builds a production JSON logger appending to path.
func NewFile(path string, level zapcore.Level) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("rigchat"), nil
}
