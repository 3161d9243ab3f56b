// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// QUERY-STRING PROVIDER
// =============================================================================

// QueryReply is the body returned by query-string endpoints.
type QueryReply struct {
	Author   string `json:"author"`
	Response string `json:"response"`
}

// QueryClient talks to endpoints that take the whole prompt in the query
// string: GET {endpoint}?ask=...&uid=...&webSearch=off&apikey=...
//
// These endpoints keep no history of their own and accept none, so the
// history argument is ignored.
type QueryClient struct {
	endpoint   *url.URL
	apiKey     string
	uid        string
	httpClient *http.Client
}

// NewQueryClient creates a query-string client for endpoint.
func NewQueryClient(endpoint, apiKey, uid string, httpClient *http.Client) (*QueryClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("query provider needs an absolute endpoint URL")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if uid == "" {
		uid = "1"
	}
	return &QueryClient{endpoint: u, apiKey: apiKey, uid: uid, httpClient: httpClient}, nil
}

// Send asks the endpoint and returns its response field.
func (c *QueryClient) Send(ctx context.Context, userText string, _ []model.ConversationEntry) (string, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("ask", userText)
	q.Set("uid", c.uid)
	q.Set("webSearch", "off")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &TransportError{Provider: "query", Kind: KindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify("query", err)
	}
	defer resp.Body.Close()

	body, err := readBody("query", resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError("query", resp.StatusCode, "")
	}

	var reply QueryReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", &TransportError{Provider: "query", Kind: KindDecode, Message: "failed to decode response", Cause: err}
	}
	return reply.Response, nil
}
