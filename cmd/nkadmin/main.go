// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nostrkeep/nostrkeep/cmd/nkadmin/internal/tui"
	"github.com/nostrkeep/nostrkeep/internal/keystore"
	"github.com/nostrkeep/nostrkeep/internal/util"
	"github.com/nostrkeep/nostrkeep/internal/version"
)

func main() {
	// Handle early-exit flags before any other processing
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" {
			fmt.Printf("nkadmin %s\n", version.String())
			os.Exit(0)
		}
	}

	dataDir := flag.String("d", "", "Data directory (or set NOSTRKEEP_DATA)")
	flag.Parse()

	// Resolve data directory from -d flag or NOSTRKEEP_DATA env var
	resolvedDataDir := util.RequireDataDir(*dataDir)

	util.InitLogger()

	// Load config from data directory
	config, err := util.LoadConfig(resolvedDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := keystore.NewFileIdentityStore(resolvedDataDir, config.IdentityFile)

	// Watch the identity file so external changes show up in the status
	// bar. The watcher is best-effort: the TUI runs fine without it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fileEvents <-chan struct{}
	if _, err := os.Stat(resolvedDataDir); err == nil {
		fileEvents, err = tui.StartIdentityWatcher(ctx, resolvedDataDir, store.Path())
		if err != nil {
			util.Debug("identity watcher unavailable", "error", err)
			fileEvents = nil
		}
	}

	model := tui.NewModel(store, config, fileEvents)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
