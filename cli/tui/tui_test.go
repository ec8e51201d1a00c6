package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder-io/sift/archive"
	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/types"
)

func sampleSession() *archive.ArchivedSession {
	return &archive.ArchivedSession{
		SessionID:     "sess-1",
		Mode:          "artifact",
		Outcome:       "completed",
		StartedTs:     "2026-08-27T10:30:00Z",
		ArchivedTs:    "2026-08-27T10:31:00Z",
		ArtifactCount: 1,
		Transcript:    "intro [Code: py] outro",
		Artifacts: []types.Artifact{
			{ID: "a1", Kind: types.ArtifactKindCode, Language: "py", Title: "py snippet", Content: "print(1)"},
		},
	}
}

func TestInspectView_RendersSessionFields(t *testing.T) {
	out := RenderInspectStatic(sampleSession())

	for _, want := range []string{"sess-1", "artifact", "completed", "intro"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect view missing %q", want)
		}
	}
}

func TestInspectModel_TabSwitchesToArtifacts(t *testing.T) {
	m := NewInspectModel(sampleSession())

	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = model.(InspectModel)

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = model.(InspectModel)

	if m.pane != paneArtifacts {
		t.Fatalf("pane = %d, want artifact pane", m.pane)
	}
	if !strings.Contains(m.bodyContent(), "print(1)") {
		t.Errorf("artifact pane missing content: %q", m.bodyContent())
	}
}

func TestInspectModel_ArtifactNavigationBounds(t *testing.T) {
	s := sampleSession()
	s.Artifacts = append(s.Artifacts, types.Artifact{ID: "a2", Language: "go", Title: "go snippet", Content: "x"})

	m := NewInspectModel(s)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = model.(InspectModel)
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = model.(InspectModel)

	// Left at position 0 stays put.
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = model.(InspectModel)
	if m.selected != 0 {
		t.Errorf("selected = %d, want 0", m.selected)
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = model.(InspectModel)
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1", m.selected)
	}

	// Right at the last artifact stays put.
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = model.(InspectModel)
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1", m.selected)
	}
}

func TestInspectModel_QuitKey(t *testing.T) {
	m := NewInspectModel(sampleSession())

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = model.(InspectModel)

	if !m.quitting {
		t.Error("expected quitting state after q")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if m.View() != "" {
		t.Error("quitting view must be empty")
	}
}

func TestStatsView_RendersCounters(t *testing.T) {
	snap := metrics.Snapshot{
		SessionID:          "sess-1",
		Mode:               "artifact",
		DeltasReceived:     42,
		ArtifactsStarted:   3,
		ArtifactsCompleted: 2,
	}

	out := RenderStatsStatic(snap)
	for _, want := range []string{"sess-1", "42", "Deltas", "Completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats view missing %q", want)
		}
	}
}

func TestOutcomeStyle(t *testing.T) {
	// Distinct outcomes map to distinct styles; unknown falls back.
	if OutcomeStyle("completed").GetForeground() == OutcomeStyle("failed").GetForeground() {
		t.Error("completed and failed must render differently")
	}
	if OutcomeStyle("unknown").GetForeground() != ValueStyle.GetForeground() {
		t.Error("unknown outcome must use the value style")
	}
}
