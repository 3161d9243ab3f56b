// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "strings"

// Labels holds the user-facing strings of the chat screen.
type Labels struct {
	You          string
	Assistant    string
	Typing       string
	Placeholder  string
	Waiting      string
	WelcomeTitle string
	WelcomeBody  string
	Copied       string
	NoCode       string
	CopyFailed   string
	Reloaded     string
	ReloadFailed string
}

// EnglishLabels is the default label set.
var EnglishLabels = Labels{
	You:          "you",
	Assistant:    "assistant",
	Typing:       "AI is replying",
	Placeholder:  "Type your message here...",
	Waiting:      "Waiting for the reply...",
	WelcomeTitle: "Welcome to rigchat",
	WelcomeBody:  "Start a conversation with the AI. Ask anything, I'm ready to help.",
	Copied:       "Copied code block",
	NoCode:       "No code block to copy",
	CopyFailed:   "Failed to copy",
	Reloaded:     "Settings reloaded",
	ReloadFailed: "Settings reload failed",
}

// ThaiLabels is the label set for the "th" locale.
var ThaiLabels = Labels{
	You:          "คุณ",
	Assistant:    "AI",
	Typing:       "AI กำลังตอบ",
	Placeholder:  "พิมพ์ข้อความของคุณที่นี่...",
	Waiting:      "กำลังรอคำตอบ...",
	WelcomeTitle: "ยินดีต้อนรับสู่ AI Chat",
	WelcomeBody:  "เริ่มบทสนทนากับ AI อัจฉริยะ ถามคำถามอะไรก็ได้ ฉันพร้อมช่วยเหลือคุณ",
	Copied:       "คัดลอกโค้ดแล้ว",
	NoCode:       "ไม่มีโค้ดให้คัดลอก",
	CopyFailed:   "คัดลอกไม่สำเร็จ",
	Reloaded:     "โหลดการตั้งค่าใหม่แล้ว",
	ReloadFailed: "โหลดการตั้งค่าไม่สำเร็จ",
}

// LabelsFor returns the label set for a locale such as "th" or "en-US".
func LabelsFor(locale string) Labels {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "th", "th-th", "th_th":
		return ThaiLabels
	default:
		return EnglishLabels
	}
}
