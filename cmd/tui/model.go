package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/internal/model/chat"
	"github.com/dominators/sagara/backend/internal/model/dashboard"
	chatservice "github.com/dominators/sagara/backend/internal/service/chat"
)

// keys for the three quick-action buttons
var quickActionKeys = map[string]action.Kind{
	"f1": action.SpeciesReport,
	"f2": action.TemperatureAnalysis,
	"f3": action.HabitatMap,
}

type snapshotMsg struct {
	snapshot chat.Snapshot
	err      error
}

type model struct {
	ctx      context.Context
	session  *chatservice.SessionController
	actions  []action.QuickAction
	snapshot chat.Snapshot

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	busy   bool
	status string
	width  int
	height int
}

func newModel(ctx context.Context, session *chatservice.SessionController, actions []action.QuickAction) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Ask about marine data, analysis, or insights..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	m := model{
		ctx:      ctx,
		session:  session,
		actions:  actions,
		snapshot: session.Snapshot(),
		input:    input,
		timeline: viewport.New(80, 20),
		spinner:  sp,
		status:   "ready",
	}
	m.refreshTimeline()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.timeline.Width = max(20, msg.Width-2)
		m.timeline.Height = max(5, msg.Height-7)
		m.input.Width = max(20, msg.Width-6)
		m.refreshTimeline()
		return m, nil

	case snapshotMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		m.snapshot = msg.snapshot
		m.status = fmt.Sprintf("%d turns", len(m.snapshot.Conversation))
		m.refreshTimeline()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.timeline, cmd = m.timeline.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}

	if kind, ok := quickActionKeys[key]; ok {
		m.busy = true
		m.status = "running " + string(kind)
		return m, tea.Batch(m.spinner.Tick, m.quickActionCmd(kind))
	}

	switch key {
	case "ctrl+r":
		m.busy = true
		m.status = "refreshing real-time data"
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())
	case "enter":
		text := m.input.Value()
		// blank input is never submitted
		if strings.TrimSpace(text) == "" {
			m.status = "type a question first"
			return m, nil
		}
		m.input.SetValue("")
		m.busy = true
		m.status = "copilot is thinking"
		return m, tea.Batch(m.spinner.Tick, m.submitCmd(text))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.session.SubmitMessage(m.ctx, text)
		return snapshotMsg{snapshot: snapshot, err: err}
	}
}

func (m model) quickActionCmd(kind action.Kind) tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.session.TriggerQuickAction(m.ctx, kind)
		return snapshotMsg{snapshot: snapshot, err: err}
	}
}

func (m model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{snapshot: m.session.RefreshQualityScore(m.ctx)}
	}
}

func (m *model) refreshTimeline() {
	m.timeline.SetContent(renderConversation(m.snapshot.Conversation, m.timeline.Width))
	m.timeline.GotoBottom()
}

func renderConversation(turns []chat.Turn, width int) string {
	body := lipgloss.NewStyle().Width(max(20, width-2))

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if turn.Role == chat.RoleAssistant {
			b.WriteString(assistantRoleStyle.Render("🌊 Oceanic Copilot:"))
		} else {
			b.WriteString(userRoleStyle.Render("👤 You:"))
		}
		b.WriteString("\n")
		b.WriteString(body.Render(turn.Content))
		if turn.Suggestion != "" {
			b.WriteString("\n")
			b.WriteString(suggestionStyle.Render("suggested quick action: " + turn.Suggestion))
		}
	}
	return b.String()
}

func (m model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("🌊 SĀGARA Oceanic Copilot"),
		subtitleStyle.Render(" Smart Agentic Gateway for Aquatic Data "),
		qualityStyle.Render("Data Quality "+dashboard.FormatQuality(m.snapshot.QualityScore)),
	)

	var help []string
	for _, a := range m.actions {
		for key, kind := range quickActionKeys {
			if kind == a.Kind {
				help = append(help, fmt.Sprintf("%s %s %s", strings.ToUpper(key), a.Icon, a.Label))
			}
		}
	}
	help = append(help, "ctrl+r refresh", "esc quit")

	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}

	return strings.Join([]string{
		header,
		m.timeline.View(),
		m.input.View(),
		statusBarStyle.Render(status),
		helpStyle.Render(strings.Join(help, " • ")),
	}, "\n")
}
