// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/rigchat/internal/model"
)

// RateLimited wraps a client so at most rpm requests start per minute.
// A caller blocked on the limiter gives up when ctx is done and receives a
// KindTimeout TransportError.
func RateLimited(next Client, rpm int) Client {
	if rpm <= 0 {
		return next
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	return ClientFunc(func(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return "", &TransportError{Provider: "ratelimit", Kind: KindTimeout, Message: "rate limit wait aborted", Cause: err}
		}
		return next.Send(ctx, userText, history)
	})
}
