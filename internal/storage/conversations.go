// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/rigchat/internal/model"
)

// TitleLength is the preview length used for conversation titles.
const TitleLength = 50

// =============================================================================
// STORED CONVERSATION TYPES
// =============================================================================

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// DisplayTitle returns the title, or a placeholder for conversations
// without a user message.
func (m ConversationMeta) DisplayTitle() string {
	if m.Title == "" {
		return model.UntitledConversation
	}
	return m.Title
}

// StoredConversation is a conversation loaded back from the store.
type StoredConversation struct {
	ConversationMeta
	Messages []*model.Message `json:"messages"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ConversationError represents a conversation lookup error.
// It can be compared using errors.Is.
type ConversationError struct {
	Message string
}

func (e *ConversationError) Error() string {
	return e.Message
}

// Is matches conversation errors by message.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrConversationNotFound is returned when no conversation matches.
	ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

	// ErrAmbiguousID is returned when an ID prefix matches several conversations.
	ErrAmbiguousID = &ConversationError{Message: "conversation id prefix is ambiguous"}
)

// =============================================================================
// STORE
// =============================================================================

// Store persists transcripts in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("storage path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// SaveMessage stores msg under conversationID, creating the conversation
// on first use. The first user message becomes the title. Saving a message
// twice is a no-op.
func (s *Store) SaveMessage(conversationID string, msg *model.Message) error {
	if conversationID == "" {
		return errors.New("conversation id is empty")
	}
	if msg == nil {
		return errors.New("message is nil")
	}

	title := ""
	if msg.IsUser() {
		title = msg.Preview(TitleLength)
	}
	ts := msg.Timestamp().UnixNano()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = MAX(conversations.updated_at, excluded.updated_at),
			title = CASE WHEN conversations.title = '' THEN excluded.title ELSE conversations.title END`,
		conversationID, title, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO messages (id, conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		msg.ID(), conversationID, string(msg.Role()), msg.Text(), ts)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return tx.Commit()
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

const metaQuery = `
	SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.seq)
	FROM conversations c
	LEFT JOIN messages m ON m.conversation_id = c.id`

// ListConversations returns conversations, most recently updated first.
// limit <= 0 returns all of them.
func (s *Store) ListConversations(limit int) ([]ConversationMeta, error) {
	query := metaQuery + ` GROUP BY c.id ORDER BY c.updated_at DESC, c.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryMeta(query, args...)
}

// Search returns conversations whose title or any message contains query,
// ignoring ASCII case.
func (s *Store) Search(query string) ([]ConversationMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListConversations(0)
	}
	pattern := "%" + escapeLike(query) + "%"
	return s.queryMeta(metaQuery+`
		WHERE c.title LIKE ? ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM messages x WHERE x.conversation_id = c.id AND x.content LIKE ? ESCAPE '\')
		GROUP BY c.id ORDER BY c.updated_at DESC, c.id`, pattern, pattern)
}

func (s *Store) queryMeta(query string, args ...any) ([]ConversationMeta, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var metas []ConversationMeta
	for rows.Next() {
		var (
			meta             ConversationMeta
			created, updated int64
		)
		if err := rows.Scan(&meta.ID, &meta.Title, &created, &updated, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		meta.CreatedAt = time.Unix(0, created)
		meta.UpdatedAt = time.Unix(0, updated)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Resolve expands an ID or unique ID prefix to a full conversation ID.
func (s *Store) Resolve(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrConversationNotFound
	}
	rows, err := s.db.Query(`
		SELECT id FROM conversations
		WHERE id LIKE ? ESCAPE '\'
		ORDER BY id = ? DESC, id
		LIMIT 2`,
		escapeLike(prefix)+"%", prefix)
	if err != nil {
		return "", fmt.Errorf("failed to resolve conversation: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if id == prefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", ErrConversationNotFound
	case 1:
		return ids[0], nil
	default:
		return "", ErrAmbiguousID
	}
}

// LoadConversation loads a conversation and its messages in order.
func (s *Store) LoadConversation(id string) (*StoredConversation, error) {
	metas, err := s.queryMeta(metaQuery+` WHERE c.id = ? GROUP BY c.id`, id)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, ErrConversationNotFound
	}

	rows, err := s.db.Query(`
		SELECT id, role, content, created_at FROM messages
		WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	conv := &StoredConversation{ConversationMeta: metas[0]}
	for rows.Next() {
		var (
			msgID, role, content string
			created              int64
		)
		if err := rows.Scan(&msgID, &role, &content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		conv.Messages = append(conv.Messages,
			model.RestoreMessage(msgID, content, role == string(model.RoleUser), time.Unix(0, created)))
	}
	return conv, rows.Err()
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation and its messages.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards so query matches literally.
func escapeLike(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(query)
}
