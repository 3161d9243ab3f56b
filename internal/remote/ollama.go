// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// OLLAMA PROVIDER
// =============================================================================

// ollamaMessage is one chat message in Ollama's wire format.
type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// OllamaClient calls a local Ollama server's /api/chat without streaming.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient creates an Ollama client. An empty baseURL selects the
// local default server.
func NewOllamaClient(baseURL, modelName string, httpClient *http.Client) *OllamaClient {
	if baseURL == "" {
		baseURL = config.DefaultOllamaURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      modelName,
		httpClient: httpClient,
	}
}

// Send posts history plus the user turn and returns the assistant message.
func (c *OllamaClient) Send(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
	messages := make([]ollamaMessage, 0, len(history)+1)
	for _, entry := range history {
		messages = append(messages, ollamaMessage{Role: string(entry.Role), Content: entry.Content})
	}
	messages = append(messages, ollamaMessage{Role: string(model.RoleUser), Content: userText})

	body, err := json.Marshal(ollamaChatRequest{Model: c.model, Messages: messages, Stream: false})
	if err != nil {
		return "", &TransportError{Provider: "ollama", Kind: KindUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Provider: "ollama", Kind: KindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify("ollama", err)
	}
	defer resp.Body.Close()

	data, err := readBody("ollama", resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		detail := ""
		if resp.StatusCode == http.StatusNotFound {
			detail = "model not found: " + c.model
		}
		var oe ollamaError
		if json.Unmarshal(data, &oe) == nil && oe.Error != "" {
			detail = oe.Error
		}
		return "", statusError("ollama", resp.StatusCode, detail)
	}

	var result ollamaChatResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", &TransportError{Provider: "ollama", Kind: KindDecode, Message: "failed to decode response", Cause: err}
	}
	return result.Message.Content, nil
}
