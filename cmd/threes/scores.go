package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/platform/tui"
	"github.com/vovakirdan/tui-threes/internal/storage"
	"github.com/vovakirdan/tui-threes/internal/storage/redis"
)

var (
	flagLimit       int
	flagInteractive bool
	flagRuns        bool
	flagProgressRun int64
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top scores from the local database, and from the shared
leaderboard when one is configured.

Examples:
  threes scores
  threes scores --limit 25
  threes scores -i          # interactive scoreboard
  threes scores --runs      # stored training runs
  threes scores --run 3     # progress of training run 3
  threes scores --clear     # delete local scores`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Open the interactive scoreboard")
	scoresCmd.Flags().BoolVar(&flagRuns, "runs", false, "List stored training runs instead of scores")
	scoresCmd.Flags().Int64Var(&flagProgressRun, "run", 0, "Show the progress report of a stored training run")
	scoresCmd.Flags().IntVar(&flagBlocks, "blocks", 10, "Generation ranges in the progress report")
	scoresCmd.Flags().IntVar(&flagWindow, "window", 10, "Generations in the rolling mean of the progress report")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all local scores")
}

func runScores(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearScores(threes.ID); err != nil {
			return err
		}
		fmt.Println("Local scores cleared.")
		return nil
	case flagRuns:
		return printTrainingRuns(store)
	case cmd.Flags().Changed("run"):
		out, err := store.TrainingOutcomes(flagProgressRun)
		if err != nil {
			return err
		}
		fmt.Printf("Run #%d\n", flagProgressRun)
		return printProgress(out)
	}

	board, err := openLeaderboard()
	if err != nil {
		logger.Warn("shared leaderboard unavailable", "err", err)
	}
	if board != nil {
		defer board.Close()
	}

	if flagInteractive {
		sources := []tui.ScoreSource{tui.LocalScores(store)}
		if board != nil {
			sources = append(sources, tui.SharedScores(board))
		}
		width, height := terminalSize()
		return tui.RunScoreboard(sources, width, height)
	}

	if err := printLocalScores(store); err != nil {
		return err
	}
	if board != nil {
		return printSharedScores(cmd.Context(), board)
	}
	return nil
}

func printLocalScores(store *storage.Store) error {
	scores, err := store.TopScores(threes.ID, flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("High Scores - Threes")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'threes play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-6s  %-12s  %-7s  %-6s  %s\n", "Rank", "Score", "Moves", "Player", "Source", "ID", "Date")
	fmt.Printf("  %-4s  %-8s  %-6s  %-12s  %-7s  %-6s  %s\n", "----", "-----", "-----", "------", "------", "--", "----")

	for i, e := range scores {
		player := e.Player
		if player == "" {
			player = "-"
		}
		fmt.Printf("  %-4d  %-8d  %-6d  %-12s  %-7s  %-6d  %s\n",
			i+1, e.Score, e.Moves, player, e.Source, e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	stats, err := store.GetGameStats(threes.ID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Games: %d  Best: %d  Average: %.1f  Total moves: %d\n",
		stats.GamesCount, stats.HighScore, stats.AvgScore, stats.TotalMoves)
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("Last played: %s\n", stats.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func printSharedScores(ctx context.Context, board *redis.Leaderboard) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entries, err := board.Top(ctx, int64(flagLimit))
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Shared Leaderboard")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No shared scores yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-6s  %-12s  %-12s  %s\n", "Rank", "Score", "Moves", "Player", "ID", "Date")
	fmt.Printf("  %-4s  %-8s  %-6s  %-12s  %-12s  %s\n", "----", "-----", "-----", "------", "--", "----")
	for i, e := range entries {
		fmt.Printf("  %-4d  %-8d  %-6d  %-12s  %-12s  %s\n",
			i+1, e.Score, e.Moves, e.Player, e.ID, e.RecordedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
	fmt.Println("Replay a shared game with 'threes replay --shared <id>'.")
	return nil
}

func printTrainingRuns(store *storage.Store) error {
	runs, err := store.TrainingRuns(flagLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No training runs stored. Run 'threes train' first.")
		return nil
	}

	fmt.Printf("  %-4s  %-6s  %-8s  %-5s  %-5s  %-7s  %-6s  %s\n", "Run", "Gens", "Episodes", "LR", "DF", "Explore", "Best", "Date")
	fmt.Printf("  %-4s  %-6s  %-8s  %-5s  %-5s  %-7s  %-6s  %s\n", "---", "----", "--------", "--", "--", "-------", "----", "----")
	for _, r := range runs {
		fmt.Printf("  %-4d  %-6d  %-8d  %-5.2f  %-5.2f  %-7.2f  %-6d  %s\n",
			r.ID, r.Generations, r.EpisodesPerGen, r.LearningRate, r.DiscountFactor,
			r.ExplorationRate, r.BestScore, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
