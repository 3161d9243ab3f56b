// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// GEMINI PROVIDER
// =============================================================================

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client. baseURL overrides the API host
// and is normally empty.
func NewGeminiClient(ctx context.Context, baseURL, apiKey, modelName string, httpClient *http.Client) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini provider needs provider.api_key")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: modelName}, nil
}

// geminiContents converts history plus the user turn to Gemini contents.
// Gemini names the assistant role "model".
func geminiContents(userText string, history []model.ConversationEntry) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, entry := range history {
		role := genai.Role(genai.RoleUser)
		if entry.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(entry.Content, role))
	}
	return append(contents, genai.NewContentFromText(userText, genai.RoleUser))
}

// Send generates one reply over history plus the user turn.
func (c *GeminiClient) Send(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, geminiContents(userText, history), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			te := statusError("gemini", apiErr.Code, apiErr.Message)
			te.Cause = err
			return "", te
		}
		return "", classify("gemini", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}
