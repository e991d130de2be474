// unconditional TUI - a terminal space to talk.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unconditional-app/unconditional-tui/internal/api"
	"github.com/unconditional-app/unconditional-tui/internal/cli"
	"github.com/unconditional-app/unconditional-tui/internal/config"
	"github.com/unconditional-app/unconditional-tui/internal/conversation"
	"github.com/unconditional-app/unconditional-tui/internal/storage"
	"github.com/unconditional-app/unconditional-tui/internal/ui/chat"
	"github.com/unconditional-app/unconditional-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.Fatalf("%v", err)
	}

	switch args.Command {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdExport:
		store := mustStore()
		if err := cli.RunExport(store, args.Format, "."); err != nil {
			cli.Fatalf("%v", err)
		}
	case cli.CmdClear:
		store := mustStore()
		if err := cli.RunClear(store, args.Confirm); err != nil {
			cli.Fatalf("%v", err)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// mustStore opens the snapshot store or exits.
func mustStore() *storage.SnapshotStore {
	store, err := storage.NewSnapshotStore()
	if err != nil {
		cli.Fatalf("failed to open data directory: %v", err)
	}
	return store
}

// runTUI wires the session together and runs the Bubble Tea program.
func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		cli.Fatalf("%v", err)
	}

	store := mustStore()

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.Timeout(),
	})

	ctrl := conversation.NewController(client, store)
	theme := styles.NewTheme(cfg.UI.Theme)
	model := chat.New(ctrl, client, theme, cfg.Timeout(), ".")

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
