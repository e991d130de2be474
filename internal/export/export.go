// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/unconditional-app/unconditional-tui/internal/storage"
	"github.com/unconditional-app/unconditional-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a snapshot to an output format.
type Exporter interface {
	// Export renders the snapshot in the target format.
	Export(snap *storage.Snapshot) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".md").
	FileExtension() string
}

// ForFormat returns the exporter for a format name ("json" or "md").
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want json or md)", format)
	}
}

// =============================================================================
// EXPORT TO FILE
// =============================================================================

// ExportToFile renders the snapshot and writes it to outputDir with a
// timestamped filename. Returns the written path.
func ExportToFile(snap *storage.Snapshot, exporter Exporter, outputDir string) (string, error) {
	content, err := exporter.Export(snap)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	filename := fmt.Sprintf("unconditional_%s%s", time.Now().Format("20060102_150405"), exporter.FileExtension())
	outputPath := filepath.Join(outputDir, filename)

	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}
