// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// formatElapsed renders a duration as "4s" or "1m05s".
func formatElapsed(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 60 {
		return strconv.Itoa(secs) + "s"
	}
	rem := secs % 60
	out := strconv.Itoa(secs/60) + "m"
	if rem < 10 {
		out += "0"
	}
	return out + strconv.Itoa(rem) + "s"
}
