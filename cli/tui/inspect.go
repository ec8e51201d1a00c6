package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calder-io/sift/archive"
)

// inspect panes.
const (
	paneTranscript = iota
	paneArtifacts
)

// InspectModel is a Bubble Tea model for the session inspect view.
// Tab switches between the transcript pane and the artifact panel;
// left/right cycles through artifacts.
type InspectModel struct {
	session  *archive.ArchivedSession
	pane     int
	selected int
	body     viewport.Model
	width    int
	height   int
	ready    bool
	quitting bool
}

// NewInspectModel creates an inspect model for an archived session.
func NewInspectModel(session *archive.ArchivedSession) InspectModel {
	return InspectModel{session: session}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := msg.Height - headerHeight - 3
		if bodyHeight < 3 {
			bodyHeight = 3
		}
		if !m.ready {
			m.body = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.body.Width = msg.Width
			m.body.Height = bodyHeight
		}
		m.body.SetContent(m.bodyContent())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Tab):
			if m.pane == paneTranscript {
				m.pane = paneArtifacts
			} else {
				m.pane = paneTranscript
			}
			m.body.GotoTop()
			m.body.SetContent(m.bodyContent())
			return m, nil

		case key.Matches(msg, keys.Prev):
			if m.pane == paneArtifacts && m.selected > 0 {
				m.selected--
				m.body.GotoTop()
				m.body.SetContent(m.bodyContent())
			}
			return m, nil

		case key.Matches(msg, keys.Next):
			if m.pane == paneArtifacts && m.selected < len(m.session.Artifacts)-1 {
				m.selected++
				m.body.GotoTop()
				m.body.SetContent(m.bodyContent())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	help := HelpStyle.Render("tab: switch pane  ←/→: artifacts  ↑/↓: scroll  q: quit")
	return m.renderHeader() + "\n" + m.body.View() + "\n" + help
}

func (m InspectModel) renderHeader() string {
	s := m.session

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Session Details"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Session", s.SessionID},
		{"Mode", s.Mode},
		{"Outcome", s.Outcome},
		{"Started", s.StartedTs},
		{"Archived", s.ArchivedTs},
		{"Artifacts", fmt.Sprintf("%d", s.ArtifactCount)},
	}

	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		value := row[1]
		if row[0] == "Outcome" {
			value = OutcomeStyle(s.Outcome).Render(value)
		} else {
			value = ValueStyle.Render(value)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	return b.String()
}

// bodyContent renders the active pane for the viewport.
func (m InspectModel) bodyContent() string {
	if m.pane == paneTranscript {
		title := PanelTitleStyle.Render("Transcript")
		return title + "\n\n" + m.session.Transcript
	}
	return m.renderArtifact()
}

func (m InspectModel) renderArtifact() string {
	artifacts := m.session.Artifacts
	if len(artifacts) == 0 {
		return PanelTitleStyle.Render("Artifacts") + "\n\n" +
			ValueStyle.Render("no artifacts in this session")
	}

	a := artifacts[m.selected]
	title := PanelTitleStyle.Render(
		fmt.Sprintf("Artifact %d/%d: %s", m.selected+1, len(artifacts), a.Title))

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Language:"),
		ValueStyle.Render(a.Language)))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Size:"),
		ValueStyle.Render(fmt.Sprintf("%d bytes", len(a.Content)))))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(a.Content))

	return b.String()
}

// headerHeight is the line count of the header block:
// title, blank line, six field rows.
const headerHeight = 8

// RunInspect runs the inspect TUI for an archived session.
func RunInspect(session *archive.ArchivedSession) error {
	model := NewInspectModel(session)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders the inspect view without full TUI (for tests).
func RenderInspectStatic(session *archive.ArchivedSession) string {
	model := NewInspectModel(session)
	model.width = 80
	model.height = 24
	model.body = viewport.New(80, 16)
	model.ready = true
	model.body.SetContent(model.bodyContent())
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
