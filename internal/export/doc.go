// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the stored conversation out for the user, either
// as the raw snapshot (JSON) or as a readable Markdown transcript.
package export
