package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-threes/internal/agent"
	"github.com/vovakirdan/tui-threes/internal/prng"
	"github.com/vovakirdan/tui-threes/internal/storage"
	"github.com/vovakirdan/tui-threes/internal/training"
)

var (
	flagGenerations int
	flagEpisodes    int
	flagLearnRate   float64
	flagDiscount    float64
	flagExplore     float64
	flagResultFile  string
	flagHottest     int
	flagNoStore     bool
	flagBlocks      int
	flagWindow      int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a Q-learning agent",
	Long: `Train a tabular Q-learning agent. Each generation plays a number of
learning episodes and then one logged test game.

The test games are written to a JSON result file and to the scores
database; step through them with 'threes replay --gen_id <n>'.
Interrupting a run keeps the generations finished so far.

Examples:
  threes train
  threes train --generations 500 --episodes 2000
  threes train --lr 0.3 --df 0.95 --explore 0.05 --seed 42
  threes train --result_file run1.json`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generations to train (default from config)")
	trainCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Learning episodes per generation (default from config)")
	trainCmd.Flags().Float64Var(&flagLearnRate, "lr", 0, "Learning rate (default from config)")
	trainCmd.Flags().Float64Var(&flagDiscount, "df", 0, "Discount factor (default from config)")
	trainCmd.Flags().Float64Var(&flagExplore, "explore", 0, "Exploration rate (default from config)")
	trainCmd.Flags().StringVar(&flagResultFile, "result_file", "", "JSON file for the test games (default from config)")
	trainCmd.Flags().IntVar(&flagHottest, "hottest", 3, "Most-read Q tables to print after training")
	trainCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "Do not store the run in the scores database")
	trainCmd.Flags().IntVar(&flagBlocks, "blocks", 10, "Generation ranges in the progress report")
	trainCmd.Flags().IntVar(&flagWindow, "window", 10, "Generations in the rolling mean of the progress report")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg := appCfg
	flags := cmd.Flags()
	if flags.Changed("generations") {
		cfg.Train.Generations = flagGenerations
	}
	if flags.Changed("episodes") {
		cfg.Train.EpisodesPerGen = flagEpisodes
	}
	if flags.Changed("lr") {
		cfg.Train.LearningRate = flagLearnRate
	}
	if flags.Changed("df") {
		cfg.Train.DiscountFactor = flagDiscount
	}
	if flags.Changed("explore") {
		cfg.Train.ExplorationRate = flagExplore
	}
	if flags.Changed("result_file") {
		cfg.Train.ResultFile = flagResultFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Game seeds and the agent's own generator both come from the master seed
	seed := prng.Resolve(flagSeed)
	split := prng.NewSplitter(seed)
	gameSeed, agentSeed := split.Next(), split.Next()

	params := cfg.AgentParams()
	learner := agent.NewQAgent(agentSeed, params)

	trainer := training.New(training.Config{
		Generations:    cfg.Train.Generations,
		EpisodesPerGen: cfg.Train.EpisodesPerGen,
		Seed:           gameSeed,
	}, logger)

	out, err := trainer.Train(cmd.Context(), learner)
	switch {
	case errors.Is(err, context.Canceled) && out != nil && len(out.GamesPlayed) > 0:
		logger.Warn("training interrupted", "generations", len(out.GamesPlayed))
	case err != nil:
		return err
	}

	if cfg.Train.ResultFile != "" {
		if err := out.WriteFile(cfg.Train.ResultFile); err != nil {
			return err
		}
		logger.Info("wrote test games", "file", cfg.Train.ResultFile)
	}

	if !flagNoStore {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := store.SaveTrainingRun(storage.TrainingRun{
			Seed:            seed,
			Generations:     len(out.GamesPlayed),
			EpisodesPerGen:  cfg.Train.EpisodesPerGen,
			LearningRate:    params.LearningRate,
			DiscountFactor:  params.DiscountFactor,
			ExplorationRate: params.ExplorationRate,
		}, out)
		if err != nil {
			return err
		}
		logger.Info("stored training run", "run", runID)
	}

	if best, ok := out.Best(); ok {
		fmt.Printf("Best test game: generation %d, score %d\n\n", best.GenID, best.Score)
	}
	if err := printProgress(out); err != nil {
		return err
	}
	fmt.Println()
	return learner.Summary(os.Stdout, flagHottest)
}

// printProgress prints the progress report of a training run.
func printProgress(out *training.Outcomes) error {
	progress, err := out.Progress(flagBlocks, flagWindow)
	if err != nil {
		return err
	}
	return progress.Write(os.Stdout)
}
