// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/segment"
)

// segmentOutput is one segment as printed by the segment command.
type segmentOutput struct {
	segment.Segment
	Runnable bool `json:"runnable,omitempty"`
}

// segmentCmd prints the segmentation of a message as JSON.
func (a *app) segmentCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "segment [file]",
		Short: "Split text into plain and code segments",
		Long: `Reads text from a file or stdin and prints its segments as a JSON array.
Each element has a kind ("plain" or "code"), the content, the language tag of
code blocks, and "runnable" for HTML documents.`,
		Example: `  echo 'Try:\n` + "```go\\nfmt.Println(1)\\n```" + `' | rigchat segment
  rigchat segment reply.md --compact`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return writeSegments(cmd.OutOrStdout(), string(data), compact)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON on one line")
	return cmd
}

// writeSegments encodes the segmentation of text to w.
func writeSegments(w io.Writer, text string, compact bool) error {
	segs := segment.Parse(text)
	out := make([]segmentOutput, len(segs))
	for i, s := range segs {
		out[i] = segmentOutput{Segment: s, Runnable: s.Runnable()}
	}

	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
