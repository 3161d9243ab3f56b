// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
)

// MaxResponseSize caps how much of a response body is read.
const MaxResponseSize = 10 * 1024 * 1024

// DefaultTimeout bounds a request when the config gives none.
const DefaultTimeout = 60 * time.Second

// =============================================================================
// CLIENT INTERFACE
// =============================================================================

// Client sends one user turn to a provider and returns the complete reply.
//
// history holds the turns before userText, oldest first; it never contains
// userText itself. Failures are returned as *TransportError. An empty reply
// is not an error.
type Client interface {
	Send(ctx context.Context, userText string, history []model.ConversationEntry) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, userText string, history []model.ConversationEntry) (string, error)

// Send calls f.
func (f ClientFunc) Send(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
	return f(ctx, userText, history)
}

// =============================================================================
// FACTORY
// =============================================================================

// Option configures clients built by New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// WithHTTPClient sets the HTTP client used by the query and ollama providers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets the logger for request logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds the client selected by cfg.Kind, wrapped in a rate limiter when
// cfg.RequestsPerMinute is positive.
func New(cfg config.ProviderConfig, opts ...Option) (Client, error) {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	o := options{
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		client Client
		err    error
	)
	switch cfg.Kind {
	case config.ProviderQuery:
		client, err = NewQueryClient(cfg.Endpoint, cfg.APIKey, cfg.UID, o.httpClient)
	case config.ProviderOllama:
		client = NewOllamaClient(cfg.Endpoint, cfg.Model, o.httpClient)
	case config.ProviderOpenAI:
		client, err = NewOpenAIClient(cfg.Endpoint, cfg.APIKey, cfg.Model, timeout)
	case config.ProviderGemini:
		client, err = NewGeminiClient(context.Background(), cfg.Endpoint, cfg.APIKey, cfg.Model, o.httpClient)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	client = Logged(client, cfg.Kind, o.logger)
	if cfg.RequestsPerMinute > 0 {
		client = RateLimited(client, cfg.RequestsPerMinute)
	}
	return client, nil
}

// Logged wraps a client so every call is logged with its duration.
// Timeouts log at Warn, other failures at Error.
func Logged(next Client, provider string, logger *zap.Logger) Client {
	return ClientFunc(func(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
		start := time.Now()
		reply, err := next.Send(ctx, userText, history)
		fields := []zap.Field{
			zap.String("provider", provider),
			zap.Int("history", len(history)),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			if IsTimeout(err) {
				logger.Warn("provider request timed out", fields...)
			} else {
				logger.Error("provider request failed", fields...)
			}
			return "", err
		}
		logger.Debug("provider reply", append(fields, zap.Int("bytes", len(reply)))...)
		return reply, nil
	})
}

// readBody reads at most MaxResponseSize bytes of a response body.
func readBody(provider string, body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, classify(provider, err)
	}
	if len(data) > MaxResponseSize {
		return nil, &TransportError{Provider: provider, Kind: KindDecode, Message: "response too large"}
	}
	return data, nil
}
