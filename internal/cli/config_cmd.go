// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/config"
)

// configCmd groups the config subcommands.
func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Shows or changes settings in the config file.

Keys use dot notation, for example provider.model or reveal.interval_ms.
Changes made while the chat UI is running are picked up without a restart.`,
		Example: `  rigchat config show
  rigchat config get reveal.interval_ms
  rigchat config set ui.locale th
  rigchat config set provider.kind openai`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration (API key redacted)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.cfg.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := a.cfg.Get(args[0])
				if err != nil {
					return err
				}
				if isSecretKey(args[0]) && v != "" {
					v = "[REDACTED]"
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change one setting in the config file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.setConfigValue(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.cfgPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List every setting key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.GetAllKeys(), "\n"))
				return nil
			},
		},
	)
	return cmd
}

// setConfigValue updates key in the config file. The file is read without
// environment or flag overrides so only the named key changes on disk.
func (a *app) setConfigValue(key, value string) error {
	cfg := config.Default()
	if _, err := os.Stat(a.cfgPath); err == nil {
		var loadErr error
		if filepath.Ext(a.cfgPath) == ".json" {
			loadErr = config.LoadJSON(cfg, a.cfgPath)
		} else {
			loadErr = config.LoadTOML(cfg, a.cfgPath)
		}
		if loadErr != nil {
			return loadErr
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return a.saveConfig(cfg)
}

func isSecretKey(key string) bool {
	return strings.EqualFold(key, "provider.api_key")
}
