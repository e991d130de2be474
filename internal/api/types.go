// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// Response type discriminants. The type tag is the sole dispatch key for
// choosing the next session transition; nothing else in a response may be
// used to infer crisis-ness.
const (
	TypeNormal = "normal"
	TypeCrisis = "crisis"
)

// Response is the tagged union returned by both service operations.
//
// A normal response carries Content and Timestamp. A crisis response
// additionally carries Resources (in the order the server chose, which is
// authoritative) and SessionLocked set to true.
type Response struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`

	// Crisis-only fields
	Resources     []CrisisResource `json:"resources,omitempty"`
	SessionLocked bool             `json:"session_locked,omitempty"`
}

// IsCrisis reports whether this response is a crisis escalation.
func (r *Response) IsCrisis() bool {
	return r.Type == TypeCrisis
}

// CrisisResource is one support resource shown on the crisis screen.
// Resources have no identity beyond their fields and must be rendered in
// the order received.
type CrisisResource struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Available   string `json:"available"`
	Description string `json:"description,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is one {role, content} pair sent as conversation history.
// Timestamps are deliberately not part of the wire history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messageRequest is the body of POST {base}/message.
type messageRequest struct {
	Content string         `json:"content"`
	History messageHistory `json:"history"`
}

type messageHistory struct {
	Messages []Message `json:"messages"`
}

// rejectionBody is the body of an HTTP 400 response.
type rejectionBody struct {
	Detail string `json:"detail"`
}
