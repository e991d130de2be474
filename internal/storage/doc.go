// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the conversation snapshot across runs.
//
// A single snapshot file under the data directory holds the transcript,
// the session lock flag, and (when locked) the crisis payload. Persistence
// is a convenience, never a correctness dependency: loads fail soft,
// saves and clears are best-effort, and callers are expected to keep
// functioning in-memory when the store is unavailable.
package storage
