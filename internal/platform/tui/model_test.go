package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-threes/internal/agent"
	"github.com/vovakirdan/tui-threes/internal/core"
	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/storage"
)

type fakeRecorder struct {
	players []string
	scores  []int
}

func (f *fakeRecorder) Record(_ context.Context, player string, res *threes.GameResult) (string, error) {
	f.players = append(f.players, player)
	f.scores = append(f.scores, res.Score)
	return "1", nil
}

func testConfig(seed uint64) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

// playToEnd presses move keys in rotation until the game is over.
func playToEnd(t *testing.T, m Model) Model {
	t.Helper()
	keys := []tea.KeyMsg{
		{Type: tea.KeyUp}, {Type: tea.KeyLeft}, {Type: tea.KeyDown}, {Type: tea.KeyRight},
	}
	for i := 0; i < 20000 && !m.State().GameOver; i++ {
		m = send(t, m, keys[i%len(keys)])
		m = send(t, m, TickMsg{})
	}
	if !m.State().GameOver {
		t.Fatal("game did not finish")
	}
	return m
}

func TestModelMovesOnTick(t *testing.T) {
	m := NewModel(threes.NewArcade(), testConfig(8), Options{})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.State().Moves != 0 {
		t.Fatal("a key alone should not move before the tick")
	}
	m = send(t, m, TickMsg{})
	if m.State().Moves != 1 {
		t.Errorf("moves = %d after one tick, want 1", m.State().Moves)
	}

	m = send(t, m, TickMsg{})
	if m.State().Moves != 1 {
		t.Errorf("an empty tick should not move, moves = %d", m.State().Moves)
	}
}

func TestModelSavesFinishedGame(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	rec := &fakeRecorder{}
	m := NewModel(threes.NewArcade(), testConfig(21), Options{Store: store, Leaderboard: rec, Player: "bob"})
	m = playToEnd(t, m)

	// Extra ticks must not save twice
	m = send(t, m, TickMsg{})

	top, err := store.TopScores(threes.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 {
		t.Fatalf("saved %d scores, want 1", len(top))
	}
	if top[0].Score != m.State().Score || top[0].Player != "bob" || top[0].Seed != 21 || !top[0].HasLog {
		t.Errorf("saved entry = %+v, state = %+v", top[0], m.State())
	}

	log, err := store.ScoreLog(top[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	res, err := threes.Replay(log)
	if err != nil || res.Score != top[0].Score {
		t.Errorf("stored log replays to %v, %v; want %d", res, err, top[0].Score)
	}

	if len(rec.scores) != 1 || rec.players[0] != "bob" || rec.scores[0] != top[0].Score {
		t.Errorf("leaderboard got %v %v", rec.players, rec.scores)
	}
}

func TestModelRestartAfterGameOver(t *testing.T) {
	m := NewModel(threes.NewArcade(), testConfig(3), Options{})

	m = send(t, m, runeKey('r'))
	m = send(t, m, TickMsg{})
	if m.State().Moves != 0 {
		t.Fatal("restart before game over should be ignored")
	}

	m = playToEnd(t, m)
	m = send(t, m, runeKey('r'))
	m = send(t, m, TickMsg{})
	if m.State().GameOver || m.State().Moves != 0 {
		t.Errorf("after restart state = %+v", m.State())
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(threes.NewArcade(), testConfig(1), Options{})
	next, cmd := m.Update(runeKey('q'))
	if cmd == nil || !next.(Model).IsQuitting() {
		t.Error("q should quit")
	}
	if next.(Model).View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestModelView(t *testing.T) {
	m := NewModel(threes.NewArcade(), testConfig(1), Options{})
	view := m.View()
	for _, want := range []string{"THREES", "Score: 0", "Next"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = send(t, m, tea.WindowSizeMsg{Width: 20, Height: 8})
	if !strings.Contains(m.View(), "too small") {
		t.Error("small window should show the resize hint")
	}
}

func TestReplayModelSteps(t *testing.T) {
	res, err := agent.PlaySeed(12, agent.NewRandom(2), false, true)
	if err != nil {
		t.Fatal(err)
	}

	m := NewReplayModel(*res.Log, "test replay", 80, 24)
	step := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(ReplayModel)
	}

	step(runeKey('a'))
	step(tea.KeyMsg{Type: tea.KeySpace})
	if m.Position() != 2 {
		t.Fatalf("position = %d, want 2", m.Position())
	}
	if !strings.Contains(m.View(), "Move 2/") {
		t.Error("view should show the move counter")
	}

	for range res.NumMoves + 5 {
		step(runeKey('a'))
	}
	if m.Position() != res.NumMoves || m.Err() != nil {
		t.Errorf("position = %d err = %v, want %d", m.Position(), m.Err(), res.NumMoves)
	}
	if !strings.Contains(m.View(), "Replay finished") {
		t.Error("view should report the end of the replay")
	}

	step(runeKey('r'))
	if m.Position() != 0 {
		t.Errorf("restart left position at %d", m.Position())
	}
}

func TestReplayModelAutoplay(t *testing.T) {
	res, err := agent.PlaySeed(4, agent.NewRandom(4), false, true)
	if err != nil {
		t.Fatal(err)
	}

	m := NewReplayModel(*res.Log, "auto", 80, 24)
	next, cmd := m.Update(runeKey('p'))
	m = next.(ReplayModel)
	if cmd == nil {
		t.Fatal("starting autoplay should schedule a tick")
	}

	next, _ = m.Update(autoplayMsg{gen: m.autoGen})
	m = next.(ReplayModel)
	next, _ = m.Update(autoplayMsg{gen: m.autoGen - 1})
	m = next.(ReplayModel)
	if m.Position() != 1 {
		t.Errorf("position = %d, want 1 (stale ticks ignored)", m.Position())
	}
}

func TestReplayModelStopsOnOverlongLog(t *testing.T) {
	res, err := agent.PlaySeed(9, agent.NewRandom(9), false, true)
	if err != nil {
		t.Fatal(err)
	}
	log := *res.Log
	log.Moves = append(log.Moves, threes.Left)

	m := NewReplayModel(log, "overlong", 80, 24)
	for range len(log.Moves) + 2 {
		next, _ := m.Update(runeKey('a'))
		m = next.(ReplayModel)
	}
	if !errors.Is(m.Err(), threes.ErrGameOver) {
		t.Errorf("err = %v, want ErrGameOver", m.Err())
	}
	if m.Position() != res.NumMoves {
		t.Errorf("position = %d, want %d", m.Position(), res.NumMoves)
	}
	if !strings.Contains(m.View(), "Replay stopped") {
		t.Error("view should report the replay error")
	}
}
