// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/unconditional-app/unconditional-tui/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the snapshot as pretty-printed JSON. The output is
// the snapshot itself, not a separate schema, so an export is a faithful
// copy of what is stored on disk.
type JSONExporter struct{}

// Export converts the snapshot to indented JSON.
func (e *JSONExporter) Export(snap *storage.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("nothing to export")
	}
	return json.MarshalIndent(snap, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
