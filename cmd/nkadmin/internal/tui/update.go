// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package tui

// Keyboard and message handling. All keystore operations are synchronous
// in-memory calls, so they run directly in Update rather than as commands.

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nostrkeep/nostrkeep/internal/crypto"
	"github.com/nostrkeep/nostrkeep/internal/keystore"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case IdentityFileChangedMsg:
		// Another process touched the identity file. Note it in the
		// status bar; the in-memory keystore is left untouched.
		m.identityOnDisk = m.store.Exists()
		if m.identityOnDisk {
			m.statusMsg = "Identity file changed on disk (press l to reload)"
		} else {
			m.statusMsg = "Identity file removed on disk"
		}
		return m, waitForFileEvent(m.fileEvents)

	case tea.KeyMsg:
		// Global quit
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.viewState {
		case ViewHome:
			return m.handleHomeKeys(msg)
		case ViewGenerateConfirm:
			return m.handleGenerateConfirmKeys(msg)
		case ViewImportPublicForm:
			return m.handleImportPublicKeys(msg)
		case ViewImportSecretForm:
			return m.handleImportSecretKeys(msg)
		case ViewSaveForm, ViewLoadForm:
			return m.handlePassphraseKeys(msg)
		case ViewDeleteConfirm:
			return m.handleDeleteConfirmKeys(msg)
		}
	}

	return m, nil
}

// handleHomeKeys handles keyboard input on the home screen
func (m Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	m.lastError = ""

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "g":
		// Generating over an existing identity needs confirmation
		if m.keystore.IsPublicKeySet() {
			m.generateConfirmFocus = 0
			m.viewState = ViewGenerateConfirm
			return m, nil
		}
		m.keystore.Generate()
		m.revealSecret = false
		m.statusMsg = "New identity generated (not yet saved)"
		return m, nil

	case "p":
		m.publicKeyInput = ""
		m.importError = ""
		m.viewState = ViewImportPublicForm
		return m, nil

	case "s":
		m.secretKeyInput = ""
		m.importError = ""
		m.viewState = ViewImportSecretForm
		return m, nil

	case "r":
		// Toggle secret key reveal (only meaningful when masking is on)
		if m.keystore.IsSecretKeySet() {
			m.revealSecret = !m.revealSecret
		}
		return m, nil

	case "c":
		m.keystore.Clear()
		m.revealSecret = false
		m.statusMsg = "Keystore cleared"
		return m, nil

	case "w":
		if !m.keystore.IsPublicKeySet() {
			m.lastError = "Nothing to save (keys not set)"
			return m, nil
		}
		m.passphraseInput = ""
		m.passphraseError = ""
		m.viewState = ViewSaveForm
		return m, nil

	case "l":
		if !m.store.Exists() {
			m.lastError = "No identity file to load"
			return m, nil
		}
		m.passphraseInput = ""
		m.passphraseError = ""
		m.viewState = ViewLoadForm
		return m, nil

	case "x":
		if !m.store.Exists() {
			m.lastError = "No identity file to delete"
			return m, nil
		}
		m.deleteConfirmFocus = 0
		m.viewState = ViewDeleteConfirm
		return m, nil
	}

	return m, nil
}

// handleGenerateConfirmKeys handles the overwrite confirmation dialog
func (m Model) handleGenerateConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewState = ViewHome
		return m, nil

	case "left", "right", "tab":
		m.generateConfirmFocus = (m.generateConfirmFocus + 1) % 2
		return m, nil

	case "enter":
		if m.generateConfirmFocus == 1 {
			m.keystore.Generate()
			m.revealSecret = false
			m.statusMsg = "New identity generated (not yet saved)"
		}
		m.viewState = ViewHome
		return m, nil
	}

	return m, nil
}

// handleImportPublicKeys handles keyboard input on the public key import form
func (m Model) handleImportPublicKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Cancel and return home
		m.publicKeyInput = ""
		m.importError = ""
		m.viewState = ViewHome
		return m, nil

	case "enter":
		if m.publicKeyInput == "" {
			m.importError = "Please enter a public key (npub or hex)"
			return m, nil
		}
		if err := m.keystore.ImportPublicKey(m.publicKeyInput); err != nil {
			// The keystore has been reset; keep the input for correction
			m.importError = err.Error()
			return m, nil
		}
		m.publicKeyInput = ""
		m.importError = ""
		m.revealSecret = false
		m.statusMsg = "Public key imported (signing not possible)"
		m.viewState = ViewHome
		return m, nil

	case "backspace":
		if len(m.publicKeyInput) > 0 {
			m.publicKeyInput = m.publicKeyInput[:len(m.publicKeyInput)-1]
			m.importError = "" // Clear error on edit
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			m.publicKeyInput += msg.String()
			m.importError = ""
		}
	}

	return m, nil
}

// handleImportSecretKeys handles keyboard input on the secret key import form
func (m Model) handleImportSecretKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.secretKeyInput = ""
		m.importError = ""
		m.viewState = ViewHome
		return m, nil

	case "enter":
		if m.secretKeyInput == "" {
			m.importError = "Please enter a secret key (nsec or hex)"
			return m, nil
		}
		err := m.keystore.ImportSecretKey(m.secretKeyInput)
		m.secretKeyInput = "" // Clear immediately for security
		if err != nil {
			m.importError = err.Error()
			return m, nil
		}
		m.importError = ""
		m.revealSecret = false
		m.statusMsg = "Secret key imported"
		m.viewState = ViewHome
		return m, nil

	case "backspace":
		if len(m.secretKeyInput) > 0 {
			m.secretKeyInput = m.secretKeyInput[:len(m.secretKeyInput)-1]
			m.importError = ""
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			m.secretKeyInput += msg.String()
			m.importError = ""
		}
	}

	return m, nil
}

// handlePassphraseKeys handles the save and load passphrase prompts
func (m Model) handlePassphraseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.passphraseInput = ""
		m.passphraseError = ""
		m.viewState = ViewHome
		return m, nil

	case "enter":
		if m.passphraseInput == "" {
			m.passphraseError = "Please enter a passphrase"
			return m, nil
		}
		passphrase := []byte(m.passphraseInput)
		m.passphraseInput = "" // Clear immediately for security
		defer crypto.ZeroBytes(passphrase)

		ctx := context.Background()
		if m.viewState == ViewSaveForm {
			if err := m.store.Save(ctx, m.keystore, passphrase); err != nil {
				m.passphraseError = err.Error()
				return m, nil
			}
			m.identityOnDisk = true
			m.statusMsg = "Identity saved to " + m.store.Path()
		} else {
			loaded, err := m.store.Load(ctx, passphrase)
			if err != nil {
				if errors.Is(err, keystore.ErrInvalidPassphrase) {
					m.passphraseError = "Incorrect passphrase"
				} else {
					m.passphraseError = err.Error()
				}
				return m, nil
			}
			m.keystore = loaded
			m.revealSecret = false
			m.statusMsg = "Identity loaded (" + loaded.Level().String() + ")"
		}
		m.passphraseError = ""
		m.viewState = ViewHome
		return m, nil

	case "backspace":
		if len(m.passphraseInput) > 0 {
			m.passphraseInput = m.passphraseInput[:len(m.passphraseInput)-1]
			m.passphraseError = ""
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			m.passphraseInput += msg.String()
			m.passphraseError = ""
		}
	}

	return m, nil
}

// handleDeleteConfirmKeys handles the delete confirmation dialog
func (m Model) handleDeleteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewState = ViewHome
		return m, nil

	case "left", "right", "tab":
		m.deleteConfirmFocus = (m.deleteConfirmFocus + 1) % 2
		return m, nil

	case "enter":
		if m.deleteConfirmFocus == 1 {
			if err := m.store.Delete(context.Background()); err != nil {
				m.lastError = err.Error()
			} else {
				m.identityOnDisk = false
				m.statusMsg = "Identity file moved to deleted/"
			}
		}
		m.viewState = ViewHome
		return m, nil
	}

	return m, nil
}
