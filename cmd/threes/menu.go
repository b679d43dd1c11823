package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-threes/internal/core"
	"github.com/vovakirdan/tui-threes/internal/platform/tui"
	"github.com/vovakirdan/tui-threes/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a menu of games and scoreboards",
	Long: `Start in interactive menu mode, the same flow SSH players get.

After a game ends, press B to return to the menu and play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Tab          - High scores
  Q            - Quit

Examples:
  threes menu
  threes menu --db ./scores.db`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagPlayer, "player", "", "Name saved with your scores (default: $USER)")
}

func runMenu(_ *cobra.Command, _ []string) error {
	player := flagPlayer
	if player == "" {
		player = playerName()
	}
	opts := tui.Options{Player: player, Source: storage.SourcePlay}

	var sources []tui.ScoreSource
	store, err := openStore()
	if err != nil {
		logger.Warn("scores will not be saved", "err", err)
	} else {
		defer store.Close()
		opts.Store = store
		sources = append(sources, tui.LocalScores(store))
	}

	board, err := openLeaderboard()
	if err != nil {
		logger.Warn("shared leaderboard unavailable", "err", err)
	} else if board != nil {
		defer board.Close()
		opts.Leaderboard = board
		sources = append(sources, tui.SharedScores(board))
	}

	width, height := terminalSize()
	cfg := core.DefaultConfig()
	cfg.ScreenW = width
	cfg.ScreenH = height

	return tui.RunSession(cfg, opts, sources)
}
