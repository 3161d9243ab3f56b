// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
)

var sampleHistory = []model.ConversationEntry{
	{Role: model.RoleUser, Content: "What is Go?"},
	{Role: model.RoleAssistant, Content: "A language."},
}

func requireTransport(t *testing.T, err error, kind ErrorKind) *TransportError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport), "error should match ErrTransport: %v", err)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, kind, te.Kind, "kind for %v", err)
	return te
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestTransportError_Error(t *testing.T) {
	err := &TransportError{Provider: "ollama", Kind: KindStatus, Status: 500, Message: "boom", Cause: io.EOF}
	assert.Equal(t, "ollama: boom (HTTP 500): EOF", err.Error())
	assert.True(t, errors.Is(err, io.EOF))
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindTimeout, classify("x", context.DeadlineExceeded).Kind)
	assert.True(t, IsTimeout(classify("x", context.DeadlineExceeded)))

	canceled := classify("x", context.Canceled)
	assert.Equal(t, KindConnection, canceled.Kind)
	assert.Equal(t, "request canceled", canceled.Message)

	assert.Equal(t, KindConnection, classify("x", errors.New("refused")).Kind)
	assert.False(t, IsTimeout(errors.New("plain")))
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, KindAuth, statusError("x", 401, "").Kind)
	assert.Equal(t, KindAuth, statusError("x", 403, "").Kind)

	e := statusError("x", 502, "")
	assert.Equal(t, KindStatus, e.Kind)
	assert.Equal(t, "unexpected status", e.Message)
	assert.Equal(t, 502, e.Status)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "auth", KindAuth.String())
	assert.Equal(t, "unknown", ErrorKind(99).String())
}

// =============================================================================
// QUERY PROVIDER TESTS
// =============================================================================

func TestQueryClient_Send(t *testing.T) {
	var got http.Header
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		got = r.Header.Clone()
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"author":"bot","response":"สวัสดีครับ"}`))
	}))
	defer server.Close()

	client, err := NewQueryClient(server.URL+"/api/chat", "secret", "", server.Client())
	require.NoError(t, err)

	reply, err := client.Send(context.Background(), "hello & goodbye?", sampleHistory)
	require.NoError(t, err)
	assert.Equal(t, "สวัสดีครับ", reply)

	assert.Equal(t, []string{"hello & goodbye?"}, query["ask"])
	assert.Equal(t, []string{"1"}, query["uid"])
	assert.Equal(t, []string{"off"}, query["webSearch"])
	assert.Equal(t, []string{"secret"}, query["apikey"])
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestQueryClient_OmitsEmptyKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["apikey"]
		assert.False(t, ok)
		w.Write([]byte(`{"response":""}`))
	}))
	defer server.Close()

	client, err := NewQueryClient(server.URL, "", "7", nil)
	require.NoError(t, err)

	reply, err := client.Send(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestQueryClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
	}{
		{"server error", http.StatusInternalServerError, "oops", KindStatus},
		{"unauthorized", http.StatusUnauthorized, "", KindAuth},
		{"bad json", http.StatusOK, "<html>", KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewQueryClient(server.URL, "", "", server.Client())
			require.NoError(t, err)

			_, err = client.Send(context.Background(), "hi", nil)
			requireTransport(t, err, tt.kind)
		})
	}
}

func TestQueryClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewQueryClient(url, "", "", nil)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), "hi", nil)
	requireTransport(t, err, KindConnection)
}

func TestQueryClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewQueryClient(server.URL, "", "", server.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Send(ctx, "hi", nil)
	requireTransport(t, err, KindTimeout)
}

func TestNewQueryClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewQueryClient("/relative", "", "", nil)
	assert.Error(t, err)
}

// =============================================================================
// OLLAMA PROVIDER TESTS
// =============================================================================

func TestOllamaClient_Send(t *testing.T) {
	var req ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   req.Model,
			Message: ollamaMessage{Role: "assistant", Content: "Go is a language."},
			Done:    true,
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL+"/", "qwen2.5-coder:7b", server.Client())
	reply, err := client.Send(context.Background(), "Tell me more", sampleHistory)
	require.NoError(t, err)
	assert.Equal(t, "Go is a language.", reply)

	assert.Equal(t, "qwen2.5-coder:7b", req.Model)
	assert.False(t, req.Stream)
	assert.Equal(t, []ollamaMessage{
		{Role: "user", Content: "What is Go?"},
		{Role: "assistant", Content: "A language."},
		{Role: "user", Content: "Tell me more"},
	}, req.Messages)
}

func TestOllamaClient_Errors(t *testing.T) {
	t.Run("model not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewOllamaClient(server.URL, "missing", server.Client()).Send(context.Background(), "hi", nil)
		te := requireTransport(t, err, KindStatus)
		assert.Equal(t, "model not found: missing", te.Message)
	})

	t.Run("error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"out of memory"}`))
		}))
		defer server.Close()

		_, err := NewOllamaClient(server.URL, "m", server.Client()).Send(context.Background(), "hi", nil)
		te := requireTransport(t, err, KindStatus)
		assert.Equal(t, "out of memory", te.Message)
		assert.Equal(t, 500, te.Status)
	})

	t.Run("bad json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"message":`))
		}))
		defer server.Close()

		_, err := NewOllamaClient(server.URL, "m", server.Client()).Send(context.Background(), "hi", nil)
		requireTransport(t, err, KindDecode)
	})
}

// =============================================================================
// OPENAI PROVIDER TESTS
// =============================================================================

func TestOpenAIClient_Send(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "Compiled and fast.", "refusal": null},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(server.URL+"/v1", "sk-test", "gpt-4o-mini", 5*time.Second)
	require.NoError(t, err)

	reply, err := client.Send(context.Background(), "And?", sampleHistory)
	require.NoError(t, err)
	assert.Equal(t, "Compiled and fast.", reply)

	assert.Equal(t, "gpt-4o-mini", body.Model)
	require.Len(t, body.Messages, 3)
	assert.Equal(t, "assistant", body.Messages[1].Role)
	assert.Equal(t, "And?", body.Messages[2].Content)
}

func TestOpenAIClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key","type":"invalid_request_error","param":null,"code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(server.URL, "sk-bad", "gpt-4o-mini", 5*time.Second)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), "hi", nil)
	te := requireTransport(t, err, KindAuth)
	assert.Equal(t, 401, te.Status)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "", "gpt-4o-mini", time.Second)
	assert.Error(t, err)
}

// =============================================================================
// GEMINI PROVIDER TESTS
// =============================================================================

func TestGeminiContents(t *testing.T) {
	contents := geminiContents("next", sampleHistory)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "next", contents[2].Parts[0].Text)
}

func TestGeminiClient_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(context.Background(), server.URL+"/", "key", "gemini-test", server.Client())
	require.NoError(t, err)

	reply, err := client.Send(context.Background(), "hi", sampleHistory)
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
}

func TestGeminiClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(context.Background(), server.URL+"/", "key", "gemini-test", server.Client())
	require.NoError(t, err)

	_, err = client.Send(context.Background(), "hi", nil)
	te := requireTransport(t, err, KindAuth)
	assert.Equal(t, "API key not valid", te.Message)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "", "", nil)
	assert.Error(t, err)
}

// =============================================================================
// FACTORY AND MIDDLEWARE TESTS
// =============================================================================

func TestNew_SelectsProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat" {
			w.Write([]byte(`{"message":{"role":"assistant","content":"from ollama"},"done":true}`))
			return
		}
		w.Write([]byte(`{"response":"from query"}`))
	}))
	defer server.Close()

	tests := []struct {
		kind string
		want string
	}{
		{config.ProviderOllama, "from ollama"},
		{config.ProviderQuery, "from query"},
	}
	for _, tt := range tests {
		client, err := New(config.ProviderConfig{Kind: tt.kind, Endpoint: server.URL, Model: "m", TimeoutSecs: 5},
			WithHTTPClient(server.Client()))
		require.NoError(t, err)

		reply, err := client.Send(context.Background(), "hi", nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, reply)
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(config.ProviderConfig{Kind: "carrier-pigeon"})
	assert.Error(t, err)

	_, err = New(config.ProviderConfig{Kind: config.ProviderOpenAI, Model: "gpt-4o-mini"})
	assert.Error(t, err, "openai without a key")
}

func TestLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	ok := Logged(ClientFunc(func(context.Context, string, []model.ConversationEntry) (string, error) {
		return "reply", nil
	}), "test", logger)
	reply, err := ok.Send(context.Background(), "hi", sampleHistory)
	require.NoError(t, err)
	assert.Equal(t, "reply", reply)

	failing := Logged(ClientFunc(func(context.Context, string, []model.ConversationEntry) (string, error) {
		return "", statusError("test", 500, "")
	}), "test", logger)
	_, err = failing.Send(context.Background(), "hi", nil)
	requireTransport(t, err, KindStatus)

	slow := Logged(ClientFunc(func(context.Context, string, []model.ConversationEntry) (string, error) {
		return "", classify("test", context.DeadlineExceeded)
	}), "test", logger)
	_, err = slow.Send(context.Background(), "hi", nil)
	requireTransport(t, err, KindTimeout)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "provider reply", entries[0].Message)
	assert.Equal(t, int64(2), entries[0].ContextMap()["history"])
	assert.Equal(t, "provider request failed", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "provider request timed out", entries[2].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func TestRateLimited(t *testing.T) {
	var calls atomic.Int32
	base := ClientFunc(func(context.Context, string, []model.ConversationEntry) (string, error) {
		calls.Add(1)
		return "ok", nil
	})

	assert.NotNil(t, RateLimited(base, 0))

	// One request per minute: the first passes, the second must wait.
	limited := RateLimited(base, 1)
	_, err := limited.Send(context.Background(), "a", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Send(ctx, "b", nil)
	requireTransport(t, err, KindTimeout)
	assert.Equal(t, int32(1), calls.Load())
}
