// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - handlers for the non-TUI commands.
package cli

import (
	"fmt"

	"github.com/unconditional-app/unconditional-tui/internal/export"
	"github.com/unconditional-app/unconditional-tui/internal/storage"
)

// =============================================================================
// EXPORT
// =============================================================================

// RunExport writes the stored conversation to outputDir in the requested
// format and prints the resulting path.
func RunExport(store *storage.SnapshotStore, format, outputDir string) error {
	snap, ok := store.Load()
	if !ok {
		return fmt.Errorf("no stored conversation to export")
	}

	exporter, err := export.ForFormat(format)
	if err != nil {
		return err
	}

	path, err := export.ExportToFile(snap, exporter, outputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// =============================================================================
// CLEAR
// =============================================================================

// RunClear removes the stored conversation after confirmation. Clearing
// when nothing is stored succeeds quietly.
func RunClear(store *storage.SnapshotStore, confirmFlag bool) error {
	if _, ok := store.Load(); !ok {
		fmt.Println("Nothing to clear.")
		return nil
	}

	confirmed, err := RequireConfirmation(confirmFlag, "clear the stored conversation")
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	fmt.Println("Conversation cleared.")
	return nil
}
