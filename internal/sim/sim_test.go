package sim

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

func TestRunIsOrderedAndReproducible(t *testing.T) {
	cfg := Config{Games: 24, Workers: 4, Seed: 77}

	a, err := NewRunner(cfg, nil).Run(context.Background(), RandomAgents)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := NewRunner(Config{Games: 24, Workers: 1, Seed: 77}, nil).Run(context.Background(), RandomAgents)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(a) != cfg.Games {
		t.Fatalf("got %d outcomes, want %d", len(a), cfg.Games)
	}
	for i := range a {
		if a[i].Index != i {
			t.Errorf("outcome %d has index %d", i, a[i].Index)
		}
		if a[i].Seed != b[i].Seed || a[i].Result.Score != b[i].Result.Score {
			t.Errorf("game %d differs across worker counts: %d/%d vs %d/%d",
				i, a[i].Seed, a[i].Result.Score, b[i].Seed, b[i].Result.Score)
		}
		if a[i].Result.Log != nil {
			t.Errorf("game %d kept a log", i)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(Config{Games: 8, Workers: 2, Seed: 1}, nil).Run(ctx, RandomAgents)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRerunReproducesScore(t *testing.T) {
	out, err := NewRunner(Config{Games: 6, Seed: 3}, nil).Run(context.Background(), RandomAgents)
	if err != nil {
		t.Fatal(err)
	}

	rep, err := Analyze(out, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Rerun(rep.Best, RandomAgents)
	if err != nil {
		t.Fatalf("Rerun: %v", err)
	}
	if res.Log == nil {
		t.Fatal("rerun has no log")
	}

	replayed, err := threes.Replay(*res.Log)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if replayed.Score != rep.Max {
		t.Errorf("replayed score %d, want %d", replayed.Score, rep.Max)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Games: 10}, false},
		{"explicit workers", Config{Games: 10, Workers: 3}, false},
		{"no games", Config{}, true},
		{"negative workers", Config{Games: 1, Workers: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func fakeOutcomes(scores ...int) []Outcome {
	out := make([]Outcome, len(scores))
	for i, s := range scores {
		out[i] = Outcome{Index: i, Seed: uint64(i + 1), Result: &threes.GameResult{Score: s}}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	scores := make([]int, 100)
	for i := range scores {
		scores[i] = i + 1
	}
	rep, err := Analyze(fakeOutcomes(scores...), 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if rep.Min != 1 || rep.Max != 100 {
		t.Errorf("min/max = %d/%d, want 1/100", rep.Min, rep.Max)
	}
	if rep.Mean != 50.5 {
		t.Errorf("mean = %v, want 50.5", rep.Mean)
	}
	if rep.GamesPerSecond() != 50 {
		t.Errorf("games/s = %v, want 50", rep.GamesPerSecond())
	}
	if rep.Best.Index != 99 {
		t.Errorf("best index = %d, want 99", rep.Best.Index)
	}

	want := map[float64]int{1: 1, 10: 10, 50: 50, 90: 90, 99: 99, 99.9: 100}
	for _, p := range rep.Percentiles {
		if want[p.P] != p.Score {
			t.Errorf("p%v = %d, want %d", p.P, p.Score, want[p.P])
		}
	}
}

func TestAnalyzeTiesAndSpread(t *testing.T) {
	rep, err := Analyze(fakeOutcomes(4, 8, 8, 4), 0)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Best.Index != 1 {
		t.Errorf("best index = %d, want first top scorer 1", rep.Best.Index)
	}
	if rep.StdDev != 2 {
		t.Errorf("stddev = %v, want 2", rep.StdDev)
	}
	if rep.GamesPerSecond() != 0 {
		t.Errorf("games/s with no elapsed time = %v", rep.GamesPerSecond())
	}

	if _, err := Analyze(nil, 0); err == nil {
		t.Error("Analyze(nil) should fail")
	}
}

func TestReportWrite(t *testing.T) {
	out := fakeOutcomes(3, 9, 27)
	out[2].Result.FinalRender = "FINAL"

	rep, err := Analyze(out, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := rep.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	for _, want := range []string{
		"Played 3 games in 1.00s (3 games/s). Max Score: 27",
		"p99.9: 27",
		"   p50: 9",
		"   min: 3",
		"winning board (game 2, seed 3)",
		"FINAL",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}
