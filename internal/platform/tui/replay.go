package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-threes/internal/core"
	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

// DefaultAutoplayDelay is the pause between moves while autoplaying.
const DefaultAutoplayDelay = 250 * time.Millisecond

// ReplayModel steps through a logged game.
type ReplayModel struct {
	title     string
	log       threes.GameLog
	replayer  *threes.Replayer
	screen    *core.Screen
	keyMapper *KeyMapper
	width     int
	height    int
	delay     time.Duration
	autoplay  bool
	autoGen   int // invalidates autoplay ticks from an earlier toggle
	err       error
	quitting  bool
}

// NewReplayModel creates a replay of log titled title.
func NewReplayModel(log threes.GameLog, title string, width, height int) ReplayModel {
	return ReplayModel{
		title:     title,
		log:       log,
		replayer:  threes.NewReplayer(log),
		screen:    core.NewScreen(width, height),
		keyMapper: NewKeyMapper(),
		width:     width,
		height:    height,
		delay:     DefaultAutoplayDelay,
	}
}

// Init initializes the replay.
func (m ReplayModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the replay.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		action, isQuit := m.keyMapper.MapReplayKey(msg)
		if isQuit {
			m.quitting = true
			return m, tea.Quit
		}
		switch action {
		case core.ActionAdvance:
			m.autoplay = false
			m.step()
		case core.ActionPause:
			m.autoplay = !m.autoplay && !m.finished()
			m.autoGen++
			if m.autoplay {
				return m, autoplayCmd(m.delay, m.autoGen)
			}
		case core.ActionRestart:
			m.replayer = threes.NewReplayer(m.log)
			m.err = nil
			m.autoplay = false
		}
		return m, nil

	case autoplayMsg:
		if !m.autoplay || msg.gen != m.autoGen {
			return m, nil
		}
		m.step()
		if m.finished() {
			m.autoplay = false
			return m, nil
		}
		return m, autoplayCmd(m.delay, m.autoGen)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
	}

	return m, nil
}

// step applies the next logged move, keeping the first error.
func (m *ReplayModel) step() {
	if m.finished() {
		return
	}
	m.err = m.replayer.Step()
}

func (m ReplayModel) finished() bool {
	return m.err != nil || m.replayer.Done()
}

// Position returns the number of moves replayed so far.
func (m ReplayModel) Position() int {
	return m.replayer.Position()
}

// Err returns the error that stopped the replay, if any.
func (m ReplayModel) Err() error {
	return m.err
}

// View renders the replay.
func (m ReplayModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	g := m.replayer.Game()

	boardW, boardH := threes.BoardSize()
	totalW := boardW + 11
	x := max((m.width-totalW)/2, 0)

	m.screen.DrawTextCentered(0, m.title)
	m.screen.DrawText(x, 1, fmt.Sprintf("Score: %d", g.Score()))
	moves := fmt.Sprintf("Move %d/%d", m.replayer.Position(), m.replayer.Len())
	m.screen.DrawText(x+totalW-len(moves), 1, moves)

	threes.RenderBoard(m.screen, g.Board(), x, 3)
	threes.RenderNext(m.screen, g.NextRank(), x+boardW+2, 3)

	status := "A/Space: Next move | P: Autoplay | R: Restart | Q: Quit"
	switch {
	case m.err != nil:
		m.screen.DrawTextColored(x, 4+boardH, "Replay stopped: "+m.err.Error(), core.ColorRed)
	case m.replayer.Done():
		m.screen.DrawTextCentered(4+boardH, fmt.Sprintf("Replay finished. Final score: %d", g.Score()))
	case m.autoplay:
		status = "Autoplaying... P: Stop | Q: Quit"
	}
	m.screen.DrawTextCentered(6+boardH, status)

	return RenderScreen(m.screen)
}

// RunReplay shows a replay until the user quits.
func RunReplay(log threes.GameLog, title string, width, height int) error {
	p := tea.NewProgram(
		NewReplayModel(log, title, width, height),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(ReplayModel); ok {
		return m.Err()
	}
	return nil
}
