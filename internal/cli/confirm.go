// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - confirmation handling for destructive CLI commands.
//
// Clearing a conversation never happens silently:
//  1. If --confirm was passed, proceed without prompting
//  2. If stdin is not a TTY, fail (cannot prompt)
//  3. Otherwise, prompt interactively
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// =============================================================================
// CONFIRMATION HANDLING
// =============================================================================

// RequireConfirmation checks that the user has confirmed a destructive
// action. Returns true only on an explicit yes.
func RequireConfirmation(confirmFlag bool, action string) (bool, error) {
	if confirmFlag {
		return true, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to %s without confirmation; pass --confirm", action)
	}

	fmt.Printf("This will %s. This cannot be undone.\n", action)
	fmt.Print("Type 'yes' to continue: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.TrimSpace(strings.ToLower(line)) == "yes", nil
}
