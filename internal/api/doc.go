// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Unconditional conversation
// service.
//
// The service exposes two operations: fetching the opening message that
// seeds a new conversation, and submitting a user turn together with the
// full conversation history. Responses are a tagged union - a normal reply
// that continues the conversation, or a crisis reply that locks the session
// and carries a list of support resources.
//
// Failures are classified into a small taxonomy the caller can dispatch on:
//
//	Unreachable - no response reached the server
//	ServerError - the server answered with a non-2xx, non-400 status
//	Rejected    - the server refused the content (HTTP 400 with a detail)
//
// The client performs no retries; retry policy belongs to the caller.
package api
