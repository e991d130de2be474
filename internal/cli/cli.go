// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for unconditional.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdExport
	CmdClear
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Export
	Format string

	// Destructive-action confirmation (--confirm)
	Confirm bool

	// Raw args remaining after parsing
	Raw []string
}

const usageText = `unconditional - a terminal space to talk

Usage:
  unconditional               Start the conversation (TUI)
  unconditional export        Export the conversation (default: json)
      --format json|md        Output format
  unconditional clear         Clear the stored conversation
      --confirm               Skip the interactive confirmation
  unconditional version       Show version information
  unconditional help          Show this help

Environment:
  UNCONDITIONAL_API_URL       Conversation service base URL
  UNCONDITIONAL_THEME         Color theme: auto, dark, light

Configuration: ~/.unconditional/config.toml
Data:          ~/.unconditional/conversation.json
`

// =============================================================================
// PARSING
// =============================================================================

// Parse interprets command-line arguments (excluding the program name).
func Parse(argv []string) (*Args, error) {
	args := &Args{Command: CmdTUI, Format: "json"}
	if len(argv) == 0 {
		return args, nil
	}

	switch argv[0] {
	case "export":
		args.Command = CmdExport
	case "clear":
		args.Command = CmdClear
	case "version", "--version", "-v":
		args.Command = CmdVersion
		return args, nil
	case "help", "--help", "-h":
		args.Command = CmdHelp
		return args, nil
	default:
		return nil, fmt.Errorf("unknown command %q (see 'unconditional help')", argv[0])
	}

	rest := argv[1:]
	for i := 0; i < len(rest); i++ {
		switch arg := rest[i]; {
		case arg == "--confirm":
			args.Confirm = true
		case arg == "--format":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--format requires a value")
			}
			i++
			args.Format = rest[i]
		case strings.HasPrefix(arg, "--format="):
			args.Format = strings.TrimPrefix(arg, "--format=")
		default:
			args.Raw = append(args.Raw, arg)
		}
	}

	if args.Command == CmdExport {
		switch args.Format {
		case "json", "md", "markdown":
		default:
			return nil, fmt.Errorf("unsupported format %q (want json or md)", args.Format)
		}
	}

	return args, nil
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("unconditional %s (%s, %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Fatalf prints an error and exits non-zero.
func Fatalf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", a...)
	os.Exit(1)
}
