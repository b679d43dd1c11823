package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-threes/internal/core"
	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/platform/tui"
	"github.com/vovakirdan/tui-threes/internal/prng"
	"github.com/vovakirdan/tui-threes/internal/registry"
	"github.com/vovakirdan/tui-threes/internal/storage"
)

var (
	flagFPS    int
	flagPlayer string
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing Threes in the terminal.

Controls:
  Arrows/WASD/HJKL - Slide tiles
  P                - Pause
  R                - Restart (after game over)
  Ctrl+S           - Save a screenshot
  Q/Ctrl+C         - Quit

Finished games are saved with their move log, so they can be replayed
with 'threes replay --score <id>'.

Examples:
  threes play
  threes play --seed 42
  threes play --player alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Name saved with your scores (default: $USER)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := threes.ID
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q (run 'threes list' to see available games)", gameID)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	width, height := terminalSize()
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     prng.Resolve(flagSeed),
		Logging:  true,
	}

	player := flagPlayer
	if player == "" {
		player = playerName()
	}
	opts := tui.Options{
		Player: player,
		Source: storage.SourcePlay,
	}

	// Continue without storage - game still works
	store, err := openStore()
	if err != nil {
		logger.Warn("scores will not be saved", "err", err)
	} else {
		defer store.Close()
		opts.Store = store
	}

	board, err := openLeaderboard()
	if err != nil {
		logger.Warn("shared leaderboard unavailable", "err", err)
	} else if board != nil {
		defer board.Close()
		opts.Leaderboard = board
	}

	logger.Debug("starting game", "game", gameID, "seed", cfg.Seed)

	// The TUI owns the terminal until it exits, so it gets no logger.
	if err := tui.Run(game, cfg, opts); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
