// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/session"
)

// =============================================================================
// PROVIDER MESSAGES
// =============================================================================

// replyMsg carries the provider's answer to a request made by Begin.
type replyMsg struct {
	req   *session.Request
	reply string
	err   error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a hot-reloaded configuration. Err is set when
// the file changed but could not be loaded; the current settings stay.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// STATUS MESSAGES
// =============================================================================

// noticeExpiredMsg clears the status notice if it is still the one with seq.
type noticeExpiredMsg struct {
	seq int
}
