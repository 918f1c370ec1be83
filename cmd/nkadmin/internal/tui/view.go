// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package tui

// View rendering and styles.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nostrkeep/nostrkeep/internal/keystore"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	levelSetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	levelPartialStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	levelUnsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	keyLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder())

	buttonActiveStyle = buttonStyle.
				BorderForeground(lipgloss.Color("42")).
				Foreground(lipgloss.Color("42"))

	buttonInactiveStyle = buttonStyle.
				BorderForeground(lipgloss.Color("241")).
				Foreground(lipgloss.Color("241"))

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2).
			Width(80)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var content string
	switch m.viewState {
	case ViewGenerateConfirm:
		content = m.renderGenerateConfirm()
	case ViewImportPublicForm:
		content = m.renderImportForm("Import Public Key", "npub or 64-char hex", m.publicKeyInput, false)
	case ViewImportSecretForm:
		content = m.renderImportForm("Import Secret Key", "nsec or 64-char hex", m.secretKeyInput, true)
	case ViewSaveForm:
		content = m.renderPassphraseForm("Save Identity", "Choose a passphrase to encrypt the identity file:")
	case ViewLoadForm:
		content = m.renderPassphraseForm("Load Identity", "Enter the identity file passphrase:")
	case ViewDeleteConfirm:
		content = m.renderDeleteConfirm()
	default:
		content = m.renderHome()
	}

	return content + "\n" + m.renderStatusBar()
}

// renderHome renders the identity overview screen
func (m Model) renderHome() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Nostrkeep - Identity Keystore"))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Status:  %s\n", styledLevel(m.keystore.Level())))
	if m.identityOnDisk {
		sb.WriteString(fmt.Sprintf("On disk: %s\n", m.store.Path()))
	} else {
		sb.WriteString(subtitleStyle.Render("On disk: (none)"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(keyLabelStyle.Render("Public key (npub):"))
	sb.WriteString("\n  " + m.keystore.Npub() + "\n\n")

	sb.WriteString(keyLabelStyle.Render("Secret key (nsec):"))
	sb.WriteString("\n  " + m.displayNsec() + "\n")

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.homeHelp()))

	return sb.String()
}

// displayNsec applies the mask_secret policy to the nsec display.
func (m Model) displayNsec() string {
	nsec := m.keystore.Nsec()
	if !m.keystore.IsSecretKeySet() {
		return nsec // sentinel string, nothing to mask
	}
	if m.config.MaskSecretEnabled() && !m.revealSecret {
		return strings.Repeat("*", len(nsec)) + "  (r to reveal)"
	}
	return nsec
}

// homeHelp assembles the context-dependent help line for the home screen.
func (m Model) homeHelp() string {
	parts := []string{"g: Generate", "p: Import npub", "s: Import nsec"}
	if m.keystore.IsSecretKeySet() && m.config.MaskSecretEnabled() {
		parts = append(parts, "r: Reveal/hide")
	}
	if m.keystore.IsPublicKeySet() {
		parts = append(parts, "c: Clear", "w: Save")
	}
	if m.identityOnDisk {
		parts = append(parts, "l: Load", "x: Delete")
	}
	parts = append(parts, "q: Quit")
	return strings.Join(parts, " | ")
}

// renderGenerateConfirm renders the identity overwrite confirmation
func (m Model) renderGenerateConfirm() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Replace Identity"))
	sb.WriteString("\n\n")
	sb.WriteString(warningStyle.Render("The current keys will be discarded."))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Current: %s\n\n", m.keystore.Npub()))
	sb.WriteString(m.renderConfirmButtons(m.generateConfirmFocus, "Generate"))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: Confirm | Tab: Switch | Esc: Cancel"))

	return popupStyle.Width(75).Render(sb.String())
}

// renderImportForm renders a single-field key import form
func (m Model) renderImportForm(title, placeholder, input string, masked bool) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	if masked {
		sb.WriteString(warningStyle.Render("Security-sensitive: the key is processed in memory only."))
		sb.WriteString("\n\n")
	}
	sb.WriteString(subtitleStyle.Render(fmt.Sprintf("Paste or type the key (%s):", placeholder)))
	sb.WriteString("\n\n")

	display := input
	if masked {
		display = strings.Repeat("*", len(input))
	}
	if display == "" {
		display = " " // Ensure field is visible even when empty
	}
	fieldStyle := inputStyle
	if m.importError != "" {
		fieldStyle = fieldStyle.BorderForeground(lipgloss.Color("196")) // Red on error
	}
	sb.WriteString(fieldStyle.Width(70).Render(display))
	sb.WriteString("\n")

	if m.importError != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.importError))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: Import | Esc: Cancel"))

	return popupStyle.Render(sb.String())
}

// renderPassphraseForm renders the save/load passphrase prompt
func (m Model) renderPassphraseForm(title, prompt string) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(subtitleStyle.Render(prompt))
	sb.WriteString("\n\n")

	masked := strings.Repeat("*", len(m.passphraseInput))
	if masked == "" {
		masked = " "
	}
	fieldStyle := inputStyle
	if m.passphraseError != "" {
		fieldStyle = fieldStyle.BorderForeground(lipgloss.Color("196"))
	}
	sb.WriteString(fieldStyle.Width(40).Render(masked))
	sb.WriteString("\n")

	if m.passphraseError != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.passphraseError))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: Confirm | Esc: Cancel"))

	return popupStyle.Width(75).Render(sb.String())
}

// renderDeleteConfirm renders the delete confirmation dialog
func (m Model) renderDeleteConfirm() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Delete Identity File"))
	sb.WriteString("\n\n")
	sb.WriteString(warningStyle.Render("The encrypted file will be moved to deleted/, not destroyed."))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("File: %s\n\n", m.store.Path()))
	sb.WriteString(m.renderConfirmButtons(m.deleteConfirmFocus, "Delete"))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: Confirm | Tab: Switch | Esc: Cancel"))

	return popupStyle.Width(75).Render(sb.String())
}

// renderConfirmButtons renders a Cancel/<action> button pair
func (m Model) renderConfirmButtons(focus int, action string) string {
	cancel := buttonInactiveStyle.Render("Cancel")
	confirm := buttonInactiveStyle.Render(action)
	if focus == 0 {
		cancel = buttonActiveStyle.Render("Cancel")
	} else {
		confirm = buttonActiveStyle.Render(action)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cancel, "  ", confirm) + "\n"
}

// renderStatusBar renders the bottom status line
func (m Model) renderStatusBar() string {
	if m.lastError != "" {
		return errorStyle.Render("Error: " + m.lastError)
	}
	if m.statusMsg != "" {
		return statusStyle.Render(m.statusMsg)
	}
	return ""
}

// styledLevel returns a colored display string for a set level
func styledLevel(level keystore.SetLevel) string {
	switch level {
	case keystore.LevelSecretAndPublic:
		return levelSetStyle.Render(level.String())
	case keystore.LevelPublicOnly:
		return levelPartialStyle.Render(level.String())
	default:
		return levelUnsetStyle.Render(level.String())
	}
}
