// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// OPENAI-COMPATIBLE PROVIDER
// =============================================================================

// OpenAIClient uses the chat completions API of OpenAI or any compatible
// server (vLLM, LM Studio, OpenRouter).
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a chat completions client. An empty baseURL
// selects api.openai.com. Retries are left to the caller.
func NewOpenAIClient(baseURL, apiKey, modelName string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai provider needs provider.api_key")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &OpenAIClient{client: openai.NewClient(opts...), model: modelName}, nil
}

// Send runs one chat completion over history plus the user turn.
func (c *OpenAIClient) Send(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, entry := range history {
		switch entry.Role {
		case model.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(entry.Content))
		default:
			messages = append(messages, openai.UserMessage(entry.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userText))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			te := statusError("openai", apiErr.StatusCode, apiErr.Message)
			te.Cause = err
			return "", te
		}
		return "", classify("openai", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", nil
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return choice.Message.Refusal, nil
	}
	return choice.Message.Content, nil
}
