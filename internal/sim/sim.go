// Package sim plays batches of independent games in parallel and
// summarizes their scores.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-threes/internal/agent"
	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/prng"
)

// AgentFactory builds the agent for one game from that game's agent seed.
type AgentFactory func(seed uint64) agent.Agent

// RandomAgents is the factory for uniform random players.
func RandomAgents(seed uint64) agent.Agent {
	return agent.NewRandom(seed)
}

// Config sizes a batch.
type Config struct {
	Games   int
	Workers int    // 0 means GOMAXPROCS
	Seed    uint64 // master seed
}

// Validate checks the batch size.
func (c Config) Validate() error {
	if c.Games <= 0 {
		return errors.New("sim: games must be positive")
	}
	if c.Workers < 0 {
		return errors.New("sim: workers must not be negative")
	}
	return nil
}

// Outcome is one finished game of a batch.
type Outcome struct {
	Index     int
	Seed      uint64 // game seed
	AgentSeed uint64
	Result    *threes.GameResult
}

// Runner plays batches of games.
type Runner struct {
	cfg    Config
	logger *log.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(cfg Config, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{cfg: cfg, logger: logger}
}

// gameSeeds derives the game and agent seed of each game from the master
// seed. It runs before any worker starts.
func gameSeeds(master uint64, n int) [][2]uint64 {
	split := prng.NewSplitter(master)
	seeds := make([][2]uint64, n)
	for i := range seeds {
		seeds[i] = [2]uint64{split.Next(), split.Next()}
	}
	return seeds
}

// Run plays cfg.Games games, each with a fresh agent, spread over the
// workers. Outcomes are returned in game order regardless of scheduling.
func (r *Runner) Run(ctx context.Context, newAgent AgentFactory) ([]Outcome, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	workers := r.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	seeds := gameSeeds(r.cfg.Seed, r.cfg.Games)
	outcomes := make([]Outcome, r.cfg.Games)

	r.logger.Debug("batch started", "games", r.cfg.Games, "workers", workers, "seed", r.cfg.Seed)

	var done atomic.Int64
	step := max(int64(r.cfg.Games/10), 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := agent.PlaySeed(s[0], newAgent(s[1]), false, false)
			if err != nil {
				return fmt.Errorf("sim: game %d: %w", i, err)
			}
			outcomes[i] = Outcome{Index: i, Seed: s[0], AgentSeed: s[1], Result: res}

			if n := done.Add(1); n%step == 0 {
				r.logger.Debug("batch progress", "done", n, "of", r.cfg.Games)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Rerun plays an outcome's game again with logging on, so it can be saved
// and replayed.
func Rerun(o Outcome, newAgent AgentFactory) (*threes.GameResult, error) {
	res, err := agent.PlaySeed(o.Seed, newAgent(o.AgentSeed), false, true)
	if err != nil {
		return nil, fmt.Errorf("sim: rerun game %d: %w", o.Index, err)
	}
	if res.Score != o.Result.Score {
		return nil, fmt.Errorf("sim: rerun game %d scored %d, first run %d", o.Index, res.Score, o.Result.Score)
	}
	return res, nil
}

// Timed runs the batch and measures wall time.
func (r *Runner) Timed(ctx context.Context, newAgent AgentFactory) ([]Outcome, time.Duration, error) {
	start := time.Now()
	out, err := r.Run(ctx, newAgent)
	return out, time.Since(start), err
}
