// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/ui/chat"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// runTUI starts the full-screen chat. resume, when set, names a stored
// conversation to continue.
func (a *app) runTUI(cmd *cobra.Command, resume string) error {
	client, err := a.newClient(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}

	opts := []chat.Option{
		chat.WithLogger(a.logger),
		chat.WithClientFactory(a.newClient),
	}

	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("transcript storage unavailable", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, chat.WithRecorder(store))
	}

	if resume != "" {
		if store == nil {
			return fmt.Errorf("cannot resume %q: storage is disabled", resume)
		}
		id, err := store.Resolve(resume)
		if err != nil {
			return fmt.Errorf("cannot resume %q: %w", resume, err)
		}
		stored, err := store.LoadConversation(id)
		if err != nil {
			return err
		}
		opts = append(opts, chat.WithResume(stored.ID, stored.CreatedAt, stored.Messages))
	}

	theme := styles.NewTheme(a.cfg.UI.Theme)
	m := chat.New(theme, a.cfg, client, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(cmd.Context())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.watchConfig(ctx, p)
	}()

	final, runErr := p.Run()
	cancel()
	wg.Wait()

	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	}
	return runErr
}

// watchConfig forwards config file changes to the program until ctx ends.
func (a *app) watchConfig(ctx context.Context, p *tea.Program) {
	if err := config.EnsureConfigDir(); err != nil {
		a.logger.Warn("config watch disabled", zap.Error(err))
		return
	}
	err := config.Watch(ctx, a.cfgPath, func(cfg *config.Config, err error) {
		if err == nil {
			a.applyFlags(cfg)
		}
		p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		a.logger.Warn("config watch stopped", zap.Error(err))
	}
}
