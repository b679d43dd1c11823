package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/platform/tui"
	"github.com/vovakirdan/tui-threes/internal/storage/redis"
	"github.com/vovakirdan/tui-threes/internal/training"
)

var (
	flagTrainLog string
	flagGenID    int
	flagRunID    int64
	flagScoreID  int64
	flagSharedID string
	flagHeadless bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Step through a stored game",
	Long: `Replay a logged game move by move.

Sources, in order of precedence:
  --shared <id>       an entry on the shared leaderboard
  --score <id>        a saved score (interactive play or best random game)
  --train_log <file>  a JSON result file written by 'threes train'
  --run <id>          a training run in the scores database (default: latest)

For training logs --gen_id picks the generation; without it the
best-scoring generation is shown.

Controls:
  A/Space/Right  - Next move
  P              - Toggle autoplay
  R              - Restart from the empty board
  Q              - Quit

Examples:
  threes replay --gen_id 12
  threes replay --train_log train_results.json --gen_id 3
  threes replay --score 17 --headless
  threes replay --shared 000000000042`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagTrainLog, "train_log", "", "Training result file to read")
	replayCmd.Flags().IntVar(&flagGenID, "gen_id", 0, "Generation to replay (default: best)")
	replayCmd.Flags().Int64Var(&flagRunID, "run", 0, "Stored training run id (default: latest)")
	replayCmd.Flags().Int64Var(&flagScoreID, "score", 0, "Stored score id")
	replayCmd.Flags().StringVar(&flagSharedID, "shared", "", "Shared leaderboard entry id")
	replayCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Print every board instead of opening the TUI")
}

func runReplay(cmd *cobra.Command, _ []string) error {
	log, title, err := loadReplayLog(cmd)
	if err != nil {
		return err
	}

	if flagHeadless {
		return printReplay(os.Stdout, log, title)
	}

	width, height := terminalSize()
	return tui.RunReplay(log, title, width, height)
}

// loadReplayLog finds the game named by the flags.
func loadReplayLog(cmd *cobra.Command) (threes.GameLog, string, error) {
	if cmd.Flags().Changed("shared") {
		board, err := openLeaderboard()
		if err != nil {
			return threes.GameLog{}, "", err
		}
		if board != nil {
			defer board.Close()
		}
		return sharedReplayLog(cmd.Context(), board, flagSharedID)
	}

	if cmd.Flags().Changed("score") {
		store, err := openStore()
		if err != nil {
			return threes.GameLog{}, "", err
		}
		defer store.Close()

		log, err := store.ScoreLog(flagScoreID)
		if err != nil {
			return threes.GameLog{}, "", err
		}
		return log, fmt.Sprintf("Score #%d", flagScoreID), nil
	}

	var (
		out    *training.Outcomes
		source string
	)
	if flagTrainLog != "" {
		o, err := training.ReadFile(flagTrainLog)
		if err != nil {
			return threes.GameLog{}, "", err
		}
		out, source = o, flagTrainLog
	} else {
		store, err := openStore()
		if err != nil {
			return threes.GameLog{}, "", err
		}
		defer store.Close()

		runID := flagRunID
		if !cmd.Flags().Changed("run") {
			run, err := store.LatestTrainingRun()
			if err != nil {
				return threes.GameLog{}, "", fmt.Errorf("no --train_log given: %w", err)
			}
			runID = run.ID
		}
		o, err := store.TrainingOutcomes(runID)
		if err != nil {
			return threes.GameLog{}, "", err
		}
		out, source = o, fmt.Sprintf("run #%d", runID)
	}

	genID := flagGenID
	if !cmd.Flags().Changed("gen_id") {
		best, ok := out.Best()
		if !ok {
			return threes.GameLog{}, "", errors.New("training log has no games")
		}
		genID = best.GenID
	}

	log, err := out.Log(genID)
	if err != nil {
		return threes.GameLog{}, "", err
	}
	return log, fmt.Sprintf("%s, generation %d", source, genID), nil
}

// sharedReplayLog fetches the log of a shared leaderboard entry.
func sharedReplayLog(ctx context.Context, board *redis.Leaderboard, id string) (threes.GameLog, string, error) {
	if board == nil {
		return threes.GameLog{}, "", errors.New("no shared leaderboard configured (set leaderboard.addr)")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log, err := board.Log(ctx, id)
	if err != nil {
		return threes.GameLog{}, "", err
	}
	return log, fmt.Sprintf("shared entry %s", id), nil
}

// printReplay writes every board of the game to w.
func printReplay(w io.Writer, log threes.GameLog, title string) error {
	var sb strings.Builder
	r := threes.NewReplayer(log)

	fmt.Fprintf(&sb, "Replaying %s (seed %d, %d moves)\n\n", title, log.Seed, r.Len())
	fmt.Fprintln(&sb, r.Game().Render())

	for !r.Done() {
		move := log.Moves[r.Position()]
		if err := r.Step(); err != nil {
			return err
		}
		fmt.Fprintf(&sb, "\nMove %d/%d: %s  Score: %d\n", r.Position(), r.Len(), move, r.Game().Score())
		fmt.Fprintln(&sb, r.Game().Render())
	}

	if !r.Game().IsOver() {
		return fmt.Errorf("%w: %d moves", threes.ErrIncompleteLog, r.Len())
	}
	fmt.Fprintf(&sb, "\nFinal score: %d\n", r.Game().Score())

	_, err := io.WriteString(w, sb.String())
	return err
}
