// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/logging"
	"github.com/jeranaias/rigchat/internal/remote"
	"github.com/jeranaias/rigchat/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// Globals holds the persistent flags shared by every command.
type Globals struct {
	ConfigPath string
	Provider   string
	Model      string
	NoReveal   bool
	Verbose    bool
}

// =============================================================================
// APPLICATION
// =============================================================================

// app carries the state built by the root command's pre-run hook.
type app struct {
	flags Globals

	cfg     *config.Config
	cfgPath string
	logger  *zap.Logger

	// newClient builds the provider client. Tests replace it.
	newClient func(cfg *config.Config) (remote.Client, error)
}

func newApp() *app {
	a := &app{logger: zap.NewNop()}
	a.newClient = func(cfg *config.Config) (remote.Client, error) {
		return remote.New(cfg.Provider, remote.WithLogger(a.logger))
	}
	return a
}

// Execute runs the rigchat command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	var resume string

	root := &cobra.Command{
		Use:   "rigchat",
		Short: "Terminal chat client with typewriter replies",
		Long: `rigchat talks to a chat provider (query endpoint, Ollama, OpenAI or Gemini)
and reveals each reply character by character. Fenced code blocks are shown
as highlighted blocks and can be copied with ctrl+y.

Run without arguments to start the interactive chat interface.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, resume)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.ConfigPath, "config", "c", "", "Config file (default: ~/.rigchat/config.toml)")
	pf.StringVarP(&a.flags.Provider, "provider", "p", "", "Provider kind: query, ollama, openai, gemini")
	pf.StringVarP(&a.flags.Model, "model", "m", "", "Model name passed to the provider")
	pf.BoolVar(&a.flags.NoReveal, "no-reveal", false, "Show replies at once instead of typing them out")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "Log at debug level")

	root.Flags().StringVarP(&resume, "resume", "r", "", "Continue a stored conversation (ID or unique prefix)")

	root.AddCommand(
		a.askCmd(),
		a.replCmd(),
		a.segmentCmd(),
		a.configCmd(),
		a.historyCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and opens the log.
func (a *app) setup() error {
	cfg, path, err := a.loadConfig()
	if err != nil {
		return err
	}

	a.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgPath = path
	a.logger = logger
	return nil
}

// applyFlags overrides cfg with the command-line flags. Reloaded configs
// go through it too, so flags keep winning over the file.
func (a *app) applyFlags(cfg *config.Config) {
	if a.flags.Provider != "" {
		cfg.Provider.Kind = a.flags.Provider
	}
	if a.flags.Model != "" {
		cfg.Provider.Model = a.flags.Model
	}
	if a.flags.NoReveal {
		cfg.Reveal.Enabled = false
	}
	if a.flags.Verbose {
		cfg.Log.Level = "debug"
	}
}

// loadConfig reads the --config file, or the default TOML/JSON file, and
// returns the path that should be watched and written.
func (a *app) loadConfig() (*config.Config, string, error) {
	if a.flags.ConfigPath != "" {
		cfg, err := config.LoadFromPath(a.flags.ConfigPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, a.flags.ConfigPath, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil, "", err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if jsonPath, jerr := config.ConfigPathJSON(); jerr == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				path = jsonPath
			}
		}
	}
	return cfg, path, nil
}

// saveConfig writes cfg back to the file it was loaded from.
func (a *app) saveConfig(cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(a.cfgPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if filepath.Ext(a.cfgPath) == ".json" {
		return config.SaveJSON(cfg, a.cfgPath)
	}
	return config.SaveTOML(cfg, a.cfgPath)
}

// openStore opens the transcript database, or returns nil when storage is
// disabled.
func (a *app) openStore() (*storage.Store, error) {
	if !a.cfg.Storage.Enabled {
		return nil, nil
	}
	path, err := a.cfg.StoragePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// requireStore is openStore for commands that cannot work without history.
func (a *app) requireStore() (*storage.Store, error) {
	path, err := a.cfg.StoragePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}
