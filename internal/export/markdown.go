// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/unconditional-app/unconditional-tui/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports the snapshot as a readable transcript.
type MarkdownExporter struct{}

// Export converts the snapshot to Markdown.
func (e *MarkdownExporter) Export(snap *storage.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("nothing to export")
	}

	var sb strings.Builder

	// Title and metadata
	sb.WriteString("# Unconditional Conversation\n\n")
	if !snap.LastUpdated.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Last Updated**: %s\n", snap.LastUpdated.Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(snap.Messages)))
	sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("\n---\n\n")

	// Conversation messages
	sb.WriteString("## Conversation\n\n")

	for i, m := range snap.Messages {
		if m.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("### %s\n\n", displayName(m.Role)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				displayName(m.Role),
				m.Timestamp.Format("2006-01-02 15:04")))
		}

		sb.WriteString(m.Content)
		sb.WriteString("\n\n")

		if i < len(snap.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	if snap.SessionLocked {
		sb.WriteString("---\n\n## Session Locked\n\n")
		if snap.CrisisMessage != "" {
			sb.WriteString(snap.CrisisMessage)
			sb.WriteString("\n\n")
		}
		for _, r := range snap.CrisisResources {
			sb.WriteString(fmt.Sprintf("- **%s**: %s (%s)", r.Name, r.Phone, r.Available))
			if r.Description != "" {
				sb.WriteString(" - " + r.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	// Footer
	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from unconditional on %s*\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

func displayName(role string) string {
	switch role {
	case "user":
		return "You"
	case "assistant":
		return "Unconditional"
	default:
		return role
	}
}
