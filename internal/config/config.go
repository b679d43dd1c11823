// Package config provides YAML-based configuration for training, batch
// simulation, the Q-learning agent and the SSH server.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/tui-threes/internal/agent"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid")

// Config is the full configuration file.
type Config struct {
	Train       TrainConfig       `yaml:"train"`
	Simulate    SimulateConfig    `yaml:"simulate"`
	Agent       AgentConfig       `yaml:"agent"`
	Serve       ServeConfig       `yaml:"serve"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// TrainConfig sizes a training run and sets the learning rates.
type TrainConfig struct {
	Generations     int     `yaml:"generations"`
	EpisodesPerGen  int     `yaml:"episodes_per_gen"`
	LearningRate    float64 `yaml:"learning_rate"`
	DiscountFactor  float64 `yaml:"discount_factor"`
	ExplorationRate float64 `yaml:"exploration_rate"`
	ResultFile      string  `yaml:"result_file"`
}

// SimulateConfig sizes a batch of random games.
type SimulateConfig struct {
	Games   int `yaml:"games"`
	Workers int `yaml:"workers"` // 0 = one per CPU
}

// AgentConfig holds the Q-table priors.
type AgentConfig struct {
	Priors agent.Priors `yaml:"priors"`
}

// ServeConfig configures the SSH server.
type ServeConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	MaxTimeout  time.Duration `yaml:"max_timeout"`
}

// LeaderboardConfig points at an optional shared Redis leaderboard.
// An empty address disables it.
type LeaderboardConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Enabled reports whether a leaderboard address is configured.
func (l LeaderboardConfig) Enabled() bool {
	return l.Addr != ""
}

// AgentParams returns the Q-learning parameters described by the config.
func (c Config) AgentParams() agent.Params {
	return agent.Params{
		LearningRate:    c.Train.LearningRate,
		DiscountFactor:  c.Train.DiscountFactor,
		ExplorationRate: c.Train.ExplorationRate,
		Priors:          c.Agent.Priors,
	}
}

// Validate rejects settings the commands cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Train.Generations <= 0:
		return fmt.Errorf("%w: train.generations must be positive", ErrInvalid)
	case c.Train.EpisodesPerGen < 0:
		return fmt.Errorf("%w: train.episodes_per_gen must not be negative", ErrInvalid)
	case c.Simulate.Games <= 0:
		return fmt.Errorf("%w: simulate.games must be positive", ErrInvalid)
	case c.Simulate.Workers < 0:
		return fmt.Errorf("%w: simulate.workers must not be negative", ErrInvalid)
	case c.Serve.IdleTimeout < 0 || c.Serve.MaxTimeout < 0:
		return fmt.Errorf("%w: serve timeouts must not be negative", ErrInvalid)
	case c.Leaderboard.DB < 0:
		return fmt.Errorf("%w: leaderboard.db must not be negative", ErrInvalid)
	}

	p := c.Agent.Priors
	for _, v := range []float64{p.Down, p.Up, p.Left, p.Right} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: agent.priors must be finite", ErrInvalid)
		}
	}

	if err := c.AgentParams().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
