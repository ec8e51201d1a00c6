package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calder-io/sift/metrics"
)

// StatsModel is a Bubble Tea model for the session stats view.
type StatsModel struct {
	snap     metrics.Snapshot
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a stats model for a metrics snapshot.
func NewStatsModel(snap metrics.Snapshot) StatsModel {
	return StatsModel{snap: snap}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Session Metrics"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Session:"),
		ValueStyle.Render(m.snap.SessionID)))
	b.WriteString(fmt.Sprintf("%s %s\n\n",
		LabelStyle.Render("Mode:"),
		ValueStyle.Render(m.snap.Mode)))

	decoder := []string{
		m.renderStatBox("Deltas", m.snap.DeltasReceived, highlightColor),
		m.renderStatBox("Bytes In", m.snap.BytesReceived, highlightColor),
		m.renderStatBox("Fallbacks", m.snap.DecodeFallbacks, warningColor),
		m.renderStatBox("Errors", m.snap.UpstreamErrors, errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, decoder...))
	b.WriteString("\n")

	extraction := []string{
		m.renderStatBox("Started", m.snap.ArtifactsStarted, highlightColor),
		m.renderStatBox("Completed", m.snap.ArtifactsCompleted, successColor),
		m.renderStatBox("Display Bytes", m.snap.DisplayBytes, highlightColor),
		m.renderStatBox("Sentinel", m.snap.SentinelReceived, successColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, extraction...))

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m StatsModel) renderStatBox(label string, value int64, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunStats runs the stats TUI for a metrics snapshot.
func RunStats(snap metrics.Snapshot) error {
	model := NewStatsModel(snap)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders the stats view without full TUI (for tests).
func RenderStatsStatic(snap metrics.Snapshot) string {
	model := NewStatsModel(snap)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
