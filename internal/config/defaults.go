package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/tui-threes/internal/agent"
)

//go:embed defaults/threes.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	p := agent.DefaultParams()
	return Config{
		Train: TrainConfig{
			Generations:     100,
			EpisodesPerGen:  1000,
			LearningRate:    p.LearningRate,
			DiscountFactor:  p.DiscountFactor,
			ExplorationRate: p.ExplorationRate,
			ResultFile:      "train_results.json",
		},
		Simulate: SimulateConfig{
			Games:   100000,
			Workers: 0,
		},
		Agent: AgentConfig{
			Priors: p.Priors,
		},
		Serve: ServeConfig{
			Address:     ":2222",
			HostKeyPath: ".ssh/threes_ed25519",
			IdleTimeout: 10 * time.Minute,
			MaxTimeout:  2 * time.Hour,
		},
		Leaderboard: LeaderboardConfig{
			Prefix: "threes",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
