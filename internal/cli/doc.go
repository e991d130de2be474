// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for
// unconditional.
//
// The default invocation starts the TUI; the remaining commands operate
// on the stored conversation without starting the interface:
//
//   - export: write the conversation to a file (json or md)
//   - clear: remove the stored conversation (confirmation required)
//   - version, help
//
// Parse and route commands:
//
//	args, err := cli.Parse(os.Args[1:])
//	switch args.Command {
//	case cli.CmdExport:
//	    return cli.RunExport(store, args.Format, ".")
//	// ... other commands
//	}
package cli
