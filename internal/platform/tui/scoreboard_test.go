package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-threes/internal/core"
)

func staticSource(title string, scores ...int) ScoreSource {
	return ScoreSource{
		Title: title,
		Load: func() ([]ScoreRow, error) {
			rows := make([]ScoreRow, len(scores))
			for i, s := range scores {
				rows[i] = ScoreRow{Score: s, Moves: s / 3, Player: title, When: time.Now()}
			}
			return rows, nil
		},
	}
}

func TestScoreboardSwitchesBoards(t *testing.T) {
	m := NewScoreboardModel([]ScoreSource{
		staticSource("Local", 300, 120),
		staticSource("Shared", 999),
	}, 100, 30)

	if len(m.Rows()) != 2 || m.Rows()[0].Score != 300 {
		t.Fatalf("initial rows = %+v", m.Rows())
	}
	if !strings.Contains(m.View(), "Local") {
		t.Error("view should name the selected board")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if len(m.Rows()) != 1 || m.Rows()[0].Score != 999 {
		t.Errorf("after tab rows = %+v", m.Rows())
	}

	// Wraps around
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if len(m.Rows()) != 2 {
		t.Errorf("second tab should wrap to the first board, rows = %+v", m.Rows())
	}
}

func TestScoreboardMessages(t *testing.T) {
	failing := ScoreSource{
		Title: "Broken",
		Load:  func() ([]ScoreRow, error) { return nil, errors.New("connection refused") },
	}

	tests := []struct {
		name    string
		sources []ScoreSource
		want    string
	}{
		{"no sources", nil, "No score database configured"},
		{"empty board", []ScoreSource{staticSource("Local")}, "No scores recorded yet"},
		{"load error", []ScoreSource{failing}, "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewScoreboardModel(tt.sources, 80, 24)
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("view missing %q", tt.want)
			}
		})
	}
}

func TestScoreboardBackAndQuit(t *testing.T) {
	m := NewScoreboardModel(nil, 80, 24)
	next, _ := m.Update(runeKey('b'))
	if !next.(ScoreboardModel).IsGoingBack() {
		t.Error("b should go back")
	}

	next, _ = m.Update(runeKey('q'))
	if !next.(ScoreboardModel).IsQuitting() {
		t.Error("q should quit")
	}
}

func TestSessionFlow(t *testing.T) {
	step := func(m SessionModel, msg tea.Msg) SessionModel {
		next, _ := m.Update(msg)
		return next.(SessionModel)
	}

	m := NewSessionModel(core.DefaultConfig(), Options{}, []ScoreSource{staticSource("Local", 42)})
	view := m.View()
	for _, want := range []string{"Play Threes", "High Scores"} {
		if !strings.Contains(view, want) {
			t.Errorf("menu missing %q", want)
		}
	}

	m = step(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.screen != screenScores || !strings.Contains(m.View(), "42") {
		t.Fatalf("tab should open the scoreboard, screen = %v", m.screen)
	}

	m = step(m, runeKey('b'))
	if m.screen != screenMenu || m.quitting {
		t.Fatalf("b should return to the menu, screen = %v", m.screen)
	}

	m = step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenGame || !strings.Contains(m.View(), "Score: 0") {
		t.Fatalf("enter should start the game, screen = %v", m.screen)
	}

	m = step(m, runeKey('q'))
	if !m.quitting || m.View() != "" {
		t.Error("q should end the session")
	}
}
