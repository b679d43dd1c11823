package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-threes/internal/core"
	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/registry"
	"github.com/vovakirdan/tui-threes/internal/storage"
)

// Recorder publishes finished games to a shared leaderboard.
type Recorder interface {
	Record(ctx context.Context, player string, res *threes.GameResult) (string, error)
}

// Options wires a play session to persistence and logging. Every field
// is optional.
type Options struct {
	Store       *storage.Store
	Leaderboard Recorder
	Player      string
	Source      string // storage.SourcePlay when empty
	Logger      *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// resultGame is implemented by games that expose a full result with its
// replay log.
type resultGame interface {
	Game() *threes.Game
}

// resizer is implemented by games that can follow a terminal resize
// without restarting.
type resizer interface {
	Resize(w, h int)
}

// Model is the Bubble Tea model for playing a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	quitting   bool
	backToMenu bool
	embedded   bool // running inside a session; Back returns to the menu
	scoreSaved bool // Whether score has been saved for current game over
}

// NewModel creates a new Bubble Tea model for the given game.
// A zero cfg.Seed draws the game seed from entropy.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if opts.Source == "" {
		opts.Source = storage.SourcePlay
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		opts:       opts,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
	}
	m.game.Reset(m.config)
	m.gameState = m.game.State()
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	if action == core.ActionBack && m.embedded && (m.gameState.GameOver || m.gameState.Paused) {
		m.backToMenu = true
		return m, nil
	}

	if action == core.ActionRestart && !m.gameState.GameOver {
		return m, nil
	}
	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(resizer); ok {
		r.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	m.gameState = m.game.State()

	return m, nil
}

// handleTick applies the input gathered since the last tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		// Later games always draw a fresh seed
		m.config.Seed = 0
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	if !m.inputFrame.Empty() {
		result := m.game.Step(m.inputFrame)
		m.gameState = result.State
	}

	// Save score on game over (once)
	if m.gameState.GameOver && !m.scoreSaved {
		m.saveResult()
		m.scoreSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveResult stores the finished game locally and on the shared
// leaderboard. Failures are logged; play continues regardless.
func (m Model) saveResult() {
	logger := m.opts.logger()

	var res *threes.GameResult
	if rg, ok := m.game.(resultGame); ok {
		res = rg.Game().Result()
	}

	if m.opts.Store != nil {
		var err error
		if res != nil {
			_, err = m.opts.Store.SaveResult(storage.ScoreEntry{
				GameID: m.game.ID(),
				Player: m.opts.Player,
				Source: m.opts.Source,
			}, res)
		} else {
			_, err = m.opts.Store.SaveScore(m.game.ID(), m.gameState.Score)
		}
		if err != nil {
			logger.Warn("could not save score", "game", m.game.ID(), "error", err)
		}
	}

	if m.opts.Leaderboard != nil && res != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := m.opts.Leaderboard.Record(ctx, m.opts.Player, res); err != nil {
			logger.Warn("could not record leaderboard entry", "error", err)
		}
	}

	logger.Info("game finished",
		"game", m.game.ID(),
		"player", m.opts.Player,
		"score", m.gameState.Score,
		"moves", m.gameState.Moves,
	)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".threes", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// State returns the last observed game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given game.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	p := tea.NewProgram(
		NewModel(game, cfg, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
