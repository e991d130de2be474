// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file defines the Bubble Tea message types used by the view. Each
// async operation (initialize, submit, clear, export) resolves into its
// own message type.
package chat

import (
	"github.com/unconditional-app/unconditional-tui/internal/api"
)

// =============================================================================
// ASYNC RESULT MESSAGES
// =============================================================================

// InitDoneMsg signals that session initialization has finished. Err is a
// diagnostic for the status line; the session is usable either way.
type InitDoneMsg struct {
	Err error
}

// TurnResultMsg delivers the settled result of a submitted turn. Exactly
// one of Resp and Err is meaningful.
type TurnResultMsg struct {
	Resp *api.Response
	Err  error
}

// ClearDoneMsg signals that a confirmed clear (and re-seed) has finished.
type ClearDoneMsg struct {
	Err error
}

// ExportDoneMsg delivers the result of an export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// statusExpiredMsg clears a transient status line message.
type statusExpiredMsg struct {
	id int
}
