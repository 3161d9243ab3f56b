// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "strings"

// Fallback replies appended as the assistant turn when no real reply is available.
const (
	FallbackEmpty   = "Sorry, no reply could be received right now."
	FallbackFailure = "Connection error. Please try again."

	FallbackEmptyThai   = "ขออภัย ไม่สามารถรับข้อมูลได้ในขณะนี้"
	FallbackFailureThai = "เกิดข้อผิดพลาดในการเชื่อมต่อ กรุณาลองใหม่อีกครั้ง"
)

// Fallbacks is the pair of fallback replies for one locale.
type Fallbacks struct {
	Empty   string
	Failure string
}

// FallbacksFor returns the fallback replies for locale. Unknown locales
// get English.
func FallbacksFor(locale string) Fallbacks {
	switch strings.ToLower(locale) {
	case "th", "th-th":
		return Fallbacks{Empty: FallbackEmptyThai, Failure: FallbackFailureThai}
	default:
		return Fallbacks{Empty: FallbackEmpty, Failure: FallbackFailure}
	}
}
