// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Unconditional"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is a single transcript entry. The transcript is append-only: turns
// are never reordered, edited, or deduplicated once added.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn stamped with the current time.
func NewTurn(role Role, content string) Turn {
	return NewTurnAt(role, content, time.Now())
}

// NewTurnAt creates a turn with an explicit timestamp.
func NewTurnAt(role Role, content string, at time.Time) Turn {
	return Turn{
		ID:        generateTurnID(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// generateTurnID creates a unique turn ID.
func generateTurnID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a time-based ID; uniqueness within one session is
		// all that is required.
		return "turn_" + time.Now().Format("20060102_150405.000000000")
	}
	return "turn_" + hex.EncodeToString(b)
}
