// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/storage"
	"github.com/jeranaias/rigchat/internal/ui/components"
)

// historyCmd groups the stored-conversation subcommands.
func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "List, show, export or delete stored conversations",
		Long: `Works with the transcript database (storage.path).

Conversations are named by ID or by any unique ID prefix, as printed by
"rigchat history list".`,
	}
	cmd.AddCommand(
		a.historyListCmd(),
		a.historyShowCmd(),
		a.historyExportCmd(),
		a.historyDeleteCmd(),
	)
	return cmd
}

// withStore opens the store for the duration of fn.
func (a *app) withStore(fn func(*storage.Store) error) error {
	store, err := a.requireStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// loadStored resolves ref and loads the conversation.
func loadStored(store *storage.Store, ref string) (*storage.StoredConversation, error) {
	id, err := store.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return store.LoadConversation(id)
}

func (a *app) historyListCmd() *cobra.Command {
	var (
		limit  int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *storage.Store) error {
				var (
					metas []storage.ConversationMeta
					err   error
				)
				if search != "" {
					metas, err = store.Search(search)
				} else {
					metas, err = store.ListConversations(limit)
				}
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), storage.FormatConversationList(metas))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of conversations")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only conversations containing this text")
	return cmd
}

func (a *app) historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *storage.Store) error {
				conv, err := loadStored(store, args[0])
				if err != nil {
					return err
				}
				a.printStored(cmd.OutOrStdout(), conv)
				return nil
			})
		},
	}
}

// printStored writes a transcript with role headers.
func (a *app) printStored(w io.Writer, conv *storage.StoredConversation) {
	p := newReplyPrinter(w, a.cfg.UI.Theme)
	labels := components.LabelsFor(a.cfg.UI.Locale)

	fmt.Fprintln(w, render(p.colored, TitleStyle, conv.DisplayTitle()))
	fmt.Fprintln(w, render(p.colored, DimStyle, fmt.Sprintf("%s  %d messages", conv.ID, len(conv.Messages))))

	for _, msg := range conv.Messages {
		role := labels.Assistant
		if msg.IsUser() {
			role = labels.You
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, render(p.colored, PromptStyle, role)+" "+
			render(p.colored, DimStyle, msg.Timestamp().Format(components.TimeFormat)))
		for _, seg := range segment.Parse(msg.Text()) {
			fmt.Fprintln(w, p.renderSegment(seg))
		}
	}
}

func (a *app) historyExportCmd() *cobra.Command {
	var (
		format   string
		output   string
		toStdout bool
	)
	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a stored conversation to markdown, json or html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			opts.OutputDir = output
			opts.Theme = a.cfg.UI.Theme
			exporter, err := export.ForFormat(format, opts)
			if err != nil {
				return err
			}

			return a.withStore(func(store *storage.Store) error {
				conv, err := loadStored(store, args[0])
				if err != nil {
					return err
				}
				if toStdout {
					data, err := exporter.Export(conv)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				path, err := export.ExportToFile(conv, exporter, opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Export format: markdown, json, html")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "Output directory")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write to stdout instead of a file")
	return cmd
}

func (a *app) historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *storage.Store) error {
				id, err := store.Resolve(args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if err := store.Delete(id); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, success(colorsEnabled(out), "Deleted "+id))
				return nil
			})
		},
	}
}
