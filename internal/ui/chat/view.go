// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unconditional-app/unconditional-tui/internal/conversation"
	"github.com/unconditional-app/unconditional-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the conversation view.
func (m *Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	if m.ctrl.Locked() {
		return m.renderCrisisScreen()
	}

	sections := []string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderInputArea(),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title bar.
func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Unconditional")
	sub := m.theme.Hint.Render("  a space to talk")
	return m.theme.Header.Width(m.width).Render(title + sub)
}

// renderInputArea renders the prompt line, a thinking indicator while a
// turn is in flight, or the clear confirmation.
func (m *Model) renderInputArea() string {
	if m.confirmingClear {
		title := m.theme.ConfirmTitle.Render("Clear this conversation?")
		choice := m.theme.ConfirmChoice.Render("This removes everything and starts over.  y confirm · any other key cancel")
		return m.theme.ConfirmBox.Width(m.width - 2).Render(title + "\n" + choice)
	}

	if m.initializing || m.ctrl.Busy() {
		thinking := m.spinner.View() + m.theme.ThinkingText.Render(" listening...")
		return m.theme.InputContainer.Width(m.width - 2).Render(thinking)
	}

	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

// renderStatusBar renders the transient status or the key hints.
func (m *Model) renderStatusBar() string {
	if m.statusMsg != "" {
		return m.theme.StatusError.Width(m.width).Render(util.TruncateWidth(m.statusMsg, m.width-2))
	}
	hints := "enter send · ctrl+l clear · /help commands · ctrl+c quit"
	return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(hints, m.width-2))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders all turns in append order.
func (m *Model) renderTranscript() string {
	turns := m.ctrl.Transcript()
	if len(turns) == 0 {
		return m.theme.Hint.Render("\n  Whenever you're ready.")
	}

	var sb strings.Builder
	for _, turn := range turns {
		label := m.theme.AssistantLabel
		if turn.Role == conversation.RoleUser {
			label = m.theme.UserLabel
		}
		sb.WriteString(label.Render(turn.Role.DisplayName()))
		sb.WriteString("  ")
		sb.WriteString(m.theme.Timestamp.Render(turn.Timestamp.Local().Format("15:04")))
		sb.WriteString("\n")

		if turn.Role == conversation.RoleAssistant {
			sb.WriteString(m.renderMarkdown(turn.Content))
		} else {
			sb.WriteString(m.theme.TurnBody.Render(turn.Content))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// =============================================================================
// CRISIS SCREEN
// =============================================================================

// renderCrisisScreen replaces the whole view while the session is locked.
// Resources are rendered in the order received.
func (m *Model) renderCrisisScreen() string {
	var sb strings.Builder

	sb.WriteString(m.theme.CrisisTitle.Render("You deserve support"))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.CrisisMessage.Render(m.ctrl.CrisisMessage()))
	sb.WriteString("\n")

	for _, r := range m.ctrl.CrisisResources() {
		sb.WriteString("\n")
		sb.WriteString(m.theme.CrisisResource.Render(r.Name))
		sb.WriteString("  ")
		sb.WriteString(m.theme.CrisisPhone.Render(r.Phone))
		sb.WriteString("  ")
		sb.WriteString(m.theme.Hint.Render(r.Available))
		if r.Description != "" {
			sb.WriteString("\n")
			sb.WriteString(m.theme.Hint.Render("  " + r.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.CrisisNotice.Render("This conversation is paused so you can reach out to someone."))

	if m.confirmingClear {
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.ConfirmTitle.Render("Clear this conversation and start over?"))
		sb.WriteString("\n")
		sb.WriteString(m.theme.ConfirmChoice.Render("y confirm · any other key cancel"))
	} else {
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.Hint.Render("c start over · ctrl+c quit"))
	}

	box := m.theme.CrisisBox.Width(min(m.width-4, 76)).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
