// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package remote sends a user turn plus conversation history to a chat
// provider and returns the complete reply.
//
// Four providers are supported:
//
//   - query:  GET endpoints taking the prompt as ?ask= (no history)
//   - ollama: a local Ollama server's /api/chat, non-streaming
//   - openai: OpenAI or any compatible chat completions server
//   - gemini: the Gemini API through the genai SDK
//
// Every failure is a *TransportError, so callers can test for it with
// errors.Is(err, ErrTransport) regardless of provider. New wraps the
// selected client with request logging and an optional rate limiter.
package remote
