// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the session state machine: the transcript,
// the lifecycle state, and the transitions between them. It talks to the
// conversation service through a Transport and to disk through a Store,
// both injected as interfaces.
package conversation
