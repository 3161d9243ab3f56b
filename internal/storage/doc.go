// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat transcripts in SQLite.
//
// The database (default ~/.rigchat/history.db) holds two tables,
// conversations and messages, using the pure Go modernc.org/sqlite driver.
// Store satisfies session.Recorder, so a session saves every turn as it is
// added. Reveal state is presentation only and is never written.
//
// # Usage
//
//	store, err := storage.Open(cfg.StoragePath())
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	metas, _ := store.ListConversations(20)
//	conv, err := store.LoadConversation(metas[0].ID)
package storage
