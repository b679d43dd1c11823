package training

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-threes/internal/agent"
	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

func smallConfig() Config {
	return Config{Generations: 3, EpisodesPerGen: 4, Seed: 2024}
}

func TestTrainRecordsOneGamePerGeneration(t *testing.T) {
	var seen []int
	tr := New(smallConfig(), nil)
	tr.OnGeneration = func(g PlayedGame) { seen = append(seen, g.GenID) }

	out, err := tr.Train(context.Background(), agent.NewQAgent(1, agent.DefaultParams()))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if len(out.GamesPlayed) != 3 {
		t.Fatalf("got %d games, want 3", len(out.GamesPlayed))
	}
	for i, g := range out.GamesPlayed {
		if g.GenID != i {
			t.Errorf("game %d has gen_id %d", i, g.GenID)
		}
		if g.GameLog == nil {
			t.Fatalf("generation %d has no log", i)
		}

		res, err := threes.Replay(*g.GameLog)
		if err != nil {
			t.Fatalf("generation %d replay: %v", i, err)
		}
		if res.Score != g.Score {
			t.Errorf("generation %d replays to %d, recorded %d", i, res.Score, g.Score)
		}
	}
	if len(seen) != 3 {
		t.Errorf("OnGeneration called %d times", len(seen))
	}
}

func TestTrainIsReproducible(t *testing.T) {
	run := func() []int {
		out, err := New(smallConfig(), nil).Train(context.Background(), agent.NewQAgent(5, agent.DefaultParams()))
		if err != nil {
			t.Fatal(err)
		}
		return out.Scores()
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("generation %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := New(smallConfig(), nil).Train(ctx, agent.NewQAgent(1, agent.DefaultParams()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if out == nil || len(out.GamesPlayed) != 0 {
		t.Errorf("cancelled run returned %+v", out)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Generations: 1, EpisodesPerGen: 10}, false},
		{"no episodes", Config{Generations: 1}, false},
		{"no generations", Config{EpisodesPerGen: 10}, true},
		{"negative episodes", Config{Generations: 1, EpisodesPerGen: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutcomesFile(t *testing.T) {
	out, err := New(Config{Generations: 2, EpisodesPerGen: 1, Seed: 9}, nil).
		Train(context.Background(), agent.NewQAgent(9, agent.DefaultParams()))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "train_results.json")
	if err := out.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	log, err := loaded.Log(1)
	if err != nil {
		t.Fatalf("Log(1): %v", err)
	}
	want, _ := out.Log(1)
	if log.Seed != want.Seed || len(log.Moves) != len(want.Moves) {
		t.Errorf("loaded log %d/%d moves, want %d/%d", log.Seed, len(log.Moves), want.Seed, len(want.Moves))
	}

	if _, err := loaded.Find(7); !errors.Is(err, ErrGenerationNotFound) {
		t.Errorf("Find(7) err = %v, want ErrGenerationNotFound", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile on a missing file should fail")
	}
}

func TestOutcomesBest(t *testing.T) {
	o := Outcomes{GamesPlayed: []PlayedGame{
		{GenID: 0, Score: 30},
		{GenID: 1, Score: 90},
		{GenID: 2, Score: 90},
	}}

	best, ok := o.Best()
	if !ok || best.GenID != 1 {
		t.Errorf("Best() = %+v, %v; want gen 1", best, ok)
	}

	if _, ok := (&Outcomes{}).Best(); ok {
		t.Error("Best() on empty outcomes should report false")
	}
}
