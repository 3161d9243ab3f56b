// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/reveal"
	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// REPLY PRINTER
// =============================================================================

// replyPrinter writes assistant replies to a line-oriented terminal. Code
// segments are highlighted and plain segments rendered as markdown when
// colors are on; the segment under reveal is typed out as the reveal loop
// advances.
type replyPrinter struct {
	w        io.Writer
	colored  bool
	width    int
	theme    *styles.Theme
	markdown *components.Markdown

	// written counts the bytes of the revealing segment already printed.
	written int
}

func newReplyPrinter(w io.Writer, themeMode string) *replyPrinter {
	p := &replyPrinter{
		w:       w,
		colored: colorsEnabled(w),
		width:   terminalWidth(w),
	}
	if p.colored {
		p.theme = styles.NewTheme(themeMode)
		p.markdown = components.NewMarkdown(p.theme.GlamourStyle())
	}
	return p
}

// tick is a session reveal-tick hook. It prints the part of the frame not
// yet on screen.
func (p *replyPrinter) tick(_ *model.Message, f reveal.Frame) {
	if len(f.Prefix) > p.written {
		io.WriteString(p.w, f.Prefix[p.written:])
		p.written = len(f.Prefix)
	}
}

// print writes msg. When the message is revealing, loop is run until the
// reveal finishes or ctx ends; whatever is left is then printed at once.
func (p *replyPrinter) print(ctx context.Context, sess *session.Session, msg *model.Message, loop *reveal.Loop) error {
	segs := sess.Segments(msg.ID())
	idx, _, revealing := sess.RevealTarget(msg.ID())
	if !revealing {
		idx = -1
	}

	var runErr error
	for i, seg := range segs {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		if i != idx {
			fmt.Fprintln(p.w, p.renderSegment(seg))
			continue
		}

		p.written = 0
		if err := loop.Run(ctx); err != nil {
			runErr = err
			sess.SkipReveal()
		}
		if p.written < len(seg.Content) {
			io.WriteString(p.w, seg.Content[p.written:])
		}
		p.written = 0
		fmt.Fprintln(p.w)
	}
	return runErr
}

// renderSegment renders a segment that is shown in full.
func (p *replyPrinter) renderSegment(seg segment.Segment) string {
	if !p.colored {
		return seg.Fenced()
	}
	if seg.IsCode() {
		block := components.NewCodeBlock(seg, p.theme)
		block.SetMaxWidth(p.width)
		return block.Render()
	}
	return p.markdown.Render(seg.Content, p.width)
}
