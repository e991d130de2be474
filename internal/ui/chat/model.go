// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/unconditional-app/unconditional-tui/internal/api"
	"github.com/unconditional-app/unconditional-tui/internal/conversation"
	"github.com/unconditional-app/unconditional-tui/internal/export"
	"github.com/unconditional-app/unconditional-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	// Session
	ctrl      *conversation.Controller
	transport conversation.Transport
	timeout   time.Duration

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Markdown rendering for assistant turns
	renderer *glamour.TermRenderer

	// Transient UI state
	initializing    bool
	confirmingClear bool
	statusMsg       string
	statusID        int

	// Export
	exportDir string
}

// New creates the conversation view. The transport is the same one the
// controller submits through; the model drives the async half of each
// exchange while the controller owns the state transitions.
func New(ctrl *conversation.Controller, transport conversation.Transport, theme *styles.Theme, timeout time.Duration, exportDir string) *Model {
	input := textinput.New()
	input.Placeholder = "Say what's on your mind..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Model{
		ctrl:         ctrl,
		transport:    transport,
		timeout:      timeout,
		theme:        theme,
		input:        input,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
		initializing: true,
		exportDir:    exportDir,
	}
}

// Init starts session initialization alongside the input blink and
// spinner tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.initCmd())
}

// =============================================================================
// COMMANDS
// =============================================================================

// initCmd runs session initialization off the update loop.
func (m *Model) initCmd() tea.Cmd {
	ctrl := m.ctrl
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return InitDoneMsg{Err: ctrl.Initialize(ctx)}
	}
}

// submitCmd performs the network half of a submission. Content and history
// are captured before the goroutine starts.
func (m *Model) submitCmd(content string, history []api.Message) tea.Cmd {
	transport := m.transport
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := transport.SubmitTurn(ctx, content, history)
		return TurnResultMsg{Resp: resp, Err: err}
	}
}

// clearCmd purges the session and fetches a fresh opening turn.
func (m *Model) clearCmd() tea.Cmd {
	ctrl := m.ctrl
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ClearDoneMsg{Err: ctrl.Clear(ctx)}
	}
}

// exportCmd writes the current session to disk.
func (m *Model) exportCmd(format string) tea.Cmd {
	snap := m.ctrl.Snapshot()
	dir := m.exportDir
	return func() tea.Msg {
		exporter, err := export.ForFormat(format)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(snap, exporter, dir)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// setStatus shows a transient status line message.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusID++
	id := m.statusID
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return statusExpiredMsg{id: id}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.initializing || m.ctrl.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case InitDoneMsg:
		m.initializing = false
		m.refreshTranscript()
		if msg.Err != nil {
			// The session is still usable; the failure is status-line only.
			return m, m.setStatus("Couldn't reach the conversation service. You can still type; sending will retry.")
		}
		return m, nil

	case TurnResultMsg:
		if err := m.ctrl.FinishSubmit(msg.Resp, msg.Err); err != nil {
			return m, m.setStatus(fmt.Sprintf("Unexpected response: %v", err))
		}
		m.refreshTranscript()
		return m, nil

	case ClearDoneMsg:
		m.refreshTranscript()
		if msg.Err != nil {
			return m, m.setStatus("Started fresh, but the opening message couldn't be fetched.")
		}
		return m, m.setStatus("Conversation cleared.")

	case ExportDoneMsg:
		if msg.Err != nil {
			return m, m.setStatus(fmt.Sprintf("Export failed: %v", msg.Err))
		}
		return m, m.setStatus("Exported to " + msg.Path)

	case statusExpiredMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes key presses by UI mode.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// Clear confirmation overlay captures all input until resolved.
	if m.confirmingClear {
		switch msg.String() {
		case "y", "Y", "enter":
			m.confirmingClear = false
			return m, tea.Batch(m.spinner.Tick, m.clearCmd())
		default:
			m.confirmingClear = false
			return m, nil
		}
	}

	// Locked sessions accept only clear-and-restart or quit.
	if m.ctrl.Locked() {
		if key.Matches(msg, m.keyMap.Clear) || msg.String() == "c" {
			m.confirmingClear = true
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Clear):
		m.confirmingClear = true
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m, m.handleSubmit()

	case key.Matches(msg, m.keyMap.Up), key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit processes the current input line: either a slash command
// or a conversation turn.
func (m *Model) handleSubmit() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return nil
	}

	if strings.HasPrefix(value, "/") {
		m.input.Reset()
		return m.handleCommand(value)
	}

	turn, err := m.ctrl.BeginSubmit(value)
	switch {
	case errors.Is(err, conversation.ErrBusy):
		return m.setStatus("Still waiting on the last message.")
	case errors.Is(err, conversation.ErrEmptyInput), errors.Is(err, conversation.ErrLocked):
		return nil
	case err != nil:
		return m.setStatus(fmt.Sprintf("Couldn't send: %v", err))
	}

	m.input.Reset()
	m.refreshTranscript()
	// History already includes the turn just appended.
	return tea.Batch(m.spinner.Tick, m.submitCmd(turn.Content, m.ctrl.History()))
}

// handleCommand dispatches slash commands.
func (m *Model) handleCommand(raw string) tea.Cmd {
	fields := strings.Fields(raw)
	switch fields[0] {
	case "/clear":
		m.confirmingClear = true
		return nil
	case "/export":
		format := "json"
		if len(fields) > 1 {
			format = fields[1]
		}
		return m.exportCmd(format)
	case "/help":
		return m.setStatus("enter send · ctrl+l clear · /export [json|md] · ctrl+c quit")
	case "/quit":
		return tea.Quit
	default:
		return m.setStatus("Unknown command " + fields[0])
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize recomputes component dimensions and rebuilds the markdown
// renderer at the new wrap width.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 1
	inputHeight := 3
	statusHeight := 1
	vpHeight := height - headerHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 6

	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Plain text fallback; renderMarkdown handles nil.
		renderer = nil
	}
	m.renderer = renderer

	m.refreshTranscript()
}

// refreshTranscript re-renders the transcript into the viewport and
// follows the tail.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// renderMarkdown renders assistant content for terminal display, falling
// back to the raw text if rendering fails.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
