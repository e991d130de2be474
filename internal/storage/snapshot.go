// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/unconditional-app/unconditional-tui/internal/api"
	"github.com/unconditional-app/unconditional-tui/internal/util"
)

// SnapshotFileName is the fixed name of the snapshot file inside the data
// directory. There is exactly one conversation per install.
const SnapshotFileName = "conversation.json"

// =============================================================================
// SNAPSHOT TYPE
// =============================================================================

// Snapshot is the persisted form of a conversation session.
type Snapshot struct {
	Messages      []StoredTurn `json:"messages"`
	SessionLocked bool         `json:"sessionLocked"`
	LastUpdated   time.Time    `json:"lastUpdated"`

	// Crisis payload, present only for locked sessions. Older snapshots
	// carry the lock flag without the payload; loaders must tolerate that.
	CrisisMessage   string               `json:"crisisMessage,omitempty"`
	CrisisResources []api.CrisisResource `json:"crisisResources,omitempty"`
}

// StoredTurn is one persisted transcript entry.
type StoredTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// SnapshotStore reads and writes the snapshot file. Construct one and
// inject it; it is deliberately not a package-level singleton so tests can
// point it at a throwaway directory.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store rooted at the default data directory
// (~/.unconditional).
func NewSnapshotStore() (*SnapshotStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewSnapshotStoreWithDir(filepath.Join(home, ".unconditional"))
}

// NewSnapshotStoreWithDir creates a store rooted at a custom directory.
func NewSnapshotStoreWithDir(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &SnapshotStore{path: filepath.Join(dir, SnapshotFileName)}, nil
}

// Path returns the snapshot file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load reads the stored snapshot. It fails soft: a missing file or a file
// that does not parse yields (nil, false). Parse failures are logged as
// diagnostics, never surfaced to the user.
func (s *SnapshotStore) Load() (*Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("STORAGE: failed to read snapshot: %v", err)
		}
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("STORAGE: discarding unreadable snapshot: %v", err)
		return nil, false
	}

	return &snap, true
}

// Save writes the snapshot atomically, stamping LastUpdated. Best-effort:
// the caller logs and continues on failure, keeping the session in-memory.
func (s *SnapshotStore) Save(snap *Snapshot) error {
	snap.LastUpdated = time.Now()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return util.AtomicWriteFile(s.path, data, 0600)
}

// ExportJSON returns the stored snapshot pretty-printed, for user-facing
// export. The export format is the storage format; there is no separate
// schema.
func (s *SnapshotStore) ExportJSON() ([]byte, error) {
	snap, ok := s.Load()
	if !ok {
		return nil, errors.New("no stored conversation")
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Clear removes the snapshot file. Removing an already-absent snapshot is
// not an error.
func (s *SnapshotStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
