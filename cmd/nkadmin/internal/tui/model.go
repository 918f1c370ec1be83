// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nostrkeep/nostrkeep/internal/keystore"
	"github.com/nostrkeep/nostrkeep/internal/util"
)

// ViewState represents the current UI state
type ViewState int

const (
	ViewHome ViewState = iota
	ViewGenerateConfirm  // Confirm before replacing an existing identity
	ViewImportPublicForm // Public key (npub or hex) input
	ViewImportSecretForm // Secret key (nsec or hex) input
	ViewSaveForm         // Passphrase prompt for saving to disk
	ViewLoadForm         // Passphrase prompt for loading from disk
	ViewDeleteConfirm    // Delete confirmation dialog
)

// Model is the main TUI application model
type Model struct {
	// Current view state
	viewState ViewState

	// Core state
	keystore *keystore.Keystore
	store    *keystore.FileIdentityStore
	config   util.Config

	// Import form inputs (transient text holders for pending user input)
	publicKeyInput string
	secretKeyInput string
	importError    string

	// Passphrase input (save/load forms, always masked)
	passphraseInput string
	passphraseError string

	// Secret key display masking (config mask_secret)
	revealSecret bool

	// Delete confirmation state
	deleteConfirmFocus int // 0 = cancel, 1 = delete

	// Generate confirmation state
	generateConfirmFocus int // 0 = cancel, 1 = generate

	// Whether an identity file currently exists on disk
	identityOnDisk bool

	// Status bar message (cleared on next action)
	statusMsg string

	// Error message (shown in status bar)
	lastError string

	// Channel delivering identity file change notifications
	fileEvents <-chan struct{}

	// Screen dimensions
	width  int
	height int

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model.
// fileEvents may be nil when the identity file watcher is unavailable.
func NewModel(store *keystore.FileIdentityStore, config util.Config, fileEvents <-chan struct{}) Model {
	return Model{
		viewState:      ViewHome,
		keystore:       keystore.New(),
		store:          store,
		config:         config,
		identityOnDisk: store.Exists(),
		fileEvents:     fileEvents,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForFileEvent(m.fileEvents),
		tea.EnterAltScreen,
	)
}

// Tea messages

// IdentityFileChangedMsg is sent when the identity file changes on disk
// (created, modified, or removed by another process).
type IdentityFileChangedMsg struct{}

// waitForFileEvent returns a command that waits for the next identity
// file change notification. Returns nil when no watcher is running.
func waitForFileEvent(events <-chan struct{}) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return IdentityFileChangedMsg{}
	}
}
