// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// The view is a passive renderer over the session controller: it reads
// the transcript and session state, and emits submit/clear intents. It
// never mutates session state directly.
package chat
