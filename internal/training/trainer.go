// Package training runs generations of learning games for an agent and
// records one replayable test game per generation.
package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-threes/internal/agent"
	"github.com/vovakirdan/tui-threes/internal/prng"
)

// Config sizes a training run.
type Config struct {
	Generations    int
	EpisodesPerGen int
	Seed           uint64 // master seed; every game seed derives from it
}

// Validate checks the run size.
func (c Config) Validate() error {
	if c.Generations <= 0 {
		return errors.New("training: generations must be positive")
	}
	if c.EpisodesPerGen < 0 {
		return errors.New("training: episodes per generation must not be negative")
	}
	return nil
}

// Trainer plays learning episodes followed by a logged test game, once per
// generation.
type Trainer struct {
	cfg    Config
	logger *log.Logger

	// OnGeneration, when set, is called after each test game.
	OnGeneration func(PlayedGame)
}

// New creates a trainer. A nil logger discards output.
func New(cfg Config, logger *log.Logger) *Trainer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Trainer{cfg: cfg, logger: logger}
}

// Train runs every generation against learner. Game seeds are drawn in
// order from the master seed, so a run is reproducible for a given agent.
// On cancellation the generations finished so far are returned with the
// context error.
func (t *Trainer) Train(ctx context.Context, learner agent.Learner) (*Outcomes, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}

	seeds := prng.NewSplitter(t.cfg.Seed)
	out := &Outcomes{GamesPlayed: make([]PlayedGame, 0, t.cfg.Generations)}

	t.logger.Info("training started",
		"generations", t.cfg.Generations,
		"episodes", t.cfg.EpisodesPerGen,
		"seed", t.cfg.Seed,
	)

	for gen := range t.cfg.Generations {
		start := time.Now()

		for ep := range t.cfg.EpisodesPerGen {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if _, err := agent.PlaySeed(seeds.Next(), learner, true, false); err != nil {
				return out, fmt.Errorf("training: generation %d episode %d: %w", gen, ep, err)
			}
		}

		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := agent.PlaySeed(seeds.Next(), learner, false, true)
		if err != nil {
			return out, fmt.Errorf("training: generation %d test game: %w", gen, err)
		}

		played := PlayedGame{GenID: gen, Score: res.Score, GameLog: res.Log}
		out.GamesPlayed = append(out.GamesPlayed, played)

		t.logger.Debug("generation finished",
			"gen", gen,
			"score", res.Score,
			"moves", res.NumMoves,
			"took", time.Since(start),
		)
		if t.OnGeneration != nil {
			t.OnGeneration(played)
		}
	}

	if best, ok := out.Best(); ok {
		t.logger.Info("training finished", "generations", len(out.GamesPlayed), "best_gen", best.GenID, "best_score", best.Score)
	}
	return out, nil
}
