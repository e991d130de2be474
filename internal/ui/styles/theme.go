// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER AND STATUS STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	Hint        lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	TurnBody       lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Spinner        lipgloss.Style
	ThinkingText   lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	ConfirmBox    lipgloss.Style
	ConfirmTitle  lipgloss.Style
	ConfirmChoice lipgloss.Style

	// ==========================================================================
	// CRISIS SCREEN STYLES
	// ==========================================================================

	CrisisBox      lipgloss.Style
	CrisisTitle    lipgloss.Style
	CrisisMessage  lipgloss.Style
	CrisisResource lipgloss.Style
	CrisisPhone    lipgloss.Style
	CrisisNotice   lipgloss.Style
}

// NewTheme creates a theme, detecting terminal capabilities. The mode is
// "auto", "dark", or "light"; auto probes the terminal background.
func NewTheme(mode string) *Theme {
	isDark := true
	switch mode {
	case "light":
		isDark = false
	case "dark":
		isDark = true
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Lavender).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Lavender)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusError = lipgloss.NewStyle().
		Foreground(Amber).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Transcript
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Lavender)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TurnBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Lavender)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Confirm overlay
	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Padding(1, 3)

	t.ConfirmTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.ConfirmChoice = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Crisis screen
	t.CrisisBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(RoseDeep).
		Padding(1, 3)

	t.CrisisTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.CrisisMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.CrisisResource = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.CrisisPhone = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sage)

	t.CrisisNotice = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
}
