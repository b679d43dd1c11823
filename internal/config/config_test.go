package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// isolate points the user and local search paths at empty directories.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestEmbeddedMatchesDefault(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal(DefaultYAML(), &cfg); err != nil {
		t.Fatalf("embedded yaml: %v", err)
	}
	if cfg != Default() {
		t.Errorf("embedded yaml = %+v\nDefault() = %+v", cfg, Default())
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := isolate(t)

	writeFile(t, filepath.Join("configs", fileName), "train:\n  generations: 7\n")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Train.Generations != 7 {
		t.Errorf("local config: generations = %d, want 7", cfg.Train.Generations)
	}
	if cfg.Train.EpisodesPerGen != 1000 {
		t.Errorf("unset keys should keep defaults, episodes = %d", cfg.Train.EpisodesPerGen)
	}

	writeFile(t, filepath.Join(home, ".threes", "configs", fileName), "train:\n  generations: 9\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Train.Generations != 9 {
		t.Errorf("user config should win over local: generations = %d", cfg.Train.Generations)
	}
}

func TestLoadSkipsBrokenSearchFiles(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".threes", "configs", fileName), "train: [not, a, map")
	writeFile(t, filepath.Join("configs", fileName), "simulate:\n  games: 12\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulate.Games != 12 {
		t.Errorf("games = %d, want 12 from the local file", cfg.Simulate.Games)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	writeFile(t, good, `
agent:
  priors:
    left: 5
serve:
  idle_timeout: 90s
leaderboard:
  addr: localhost:6379
`)
	cfg, err := Load(good)
	if err != nil {
		t.Fatalf("Load(good): %v", err)
	}
	if cfg.Agent.Priors.Left != 5 || cfg.Agent.Priors.Up != 40 {
		t.Errorf("priors = %+v", cfg.Agent.Priors)
	}
	if cfg.Serve.IdleTimeout != 90*time.Second {
		t.Errorf("idle timeout = %v", cfg.Serve.IdleTimeout)
	}
	if !cfg.Leaderboard.Enabled() {
		t.Error("leaderboard should be enabled")
	}

	tests := []struct {
		name string
		body string
		err  error
	}{
		{"malformed", "train: [", nil},
		{"invalid rate", "train:\n  learning_rate: 1.5\n", ErrInvalid},
		{"no games", "simulate:\n  games: 0\n", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeFile(t, path, tt.body)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing custom file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"generations", func(c *Config) { c.Train.Generations = 0 }},
		{"episodes", func(c *Config) { c.Train.EpisodesPerGen = -1 }},
		{"discount", func(c *Config) { c.Train.DiscountFactor = -0.1 }},
		{"exploration", func(c *Config) { c.Train.ExplorationRate = 2 }},
		{"workers", func(c *Config) { c.Simulate.Workers = -2 }},
		{"timeout", func(c *Config) { c.Serve.IdleTimeout = -time.Second }},
		{"redis db", func(c *Config) { c.Leaderboard.DB = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestAgentParams(t *testing.T) {
	cfg := Default()
	cfg.Train.LearningRate = 0.25
	cfg.Agent.Priors.Right = 3

	p := cfg.AgentParams()
	if p.LearningRate != 0.25 || p.Priors.Right != 3 || p.DiscountFactor != 0.9 {
		t.Errorf("AgentParams() = %+v", p)
	}
}
