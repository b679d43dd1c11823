package sim

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vovakirdan/tui-threes/internal/stats"
)

// ReportPercentiles are the percentiles printed by Report.Write.
var ReportPercentiles = []float64{1, 10, 50, 90, 99, 99.9}

// Percentile is one score quantile.
type Percentile = stats.Percentile

// Report summarizes the scores of a batch.
type Report struct {
	Games       int
	Elapsed     time.Duration
	Min         int
	Max         int
	Mean        float64
	StdDev      float64
	Percentiles []Percentile
	Best        Outcome
}

// Analyze computes the score distribution of outcomes. The best outcome is
// the earliest game with the top score.
func Analyze(outcomes []Outcome, elapsed time.Duration) (Report, error) {
	if len(outcomes) == 0 {
		return Report{}, fmt.Errorf("sim: no games to analyze: %w", stats.ErrNoScores)
	}

	scores := make([]int, len(outcomes))
	best := outcomes[0]
	for i, o := range outcomes {
		scores[i] = o.Result.Score
		if o.Result.Score > best.Result.Score {
			best = o
		}
	}

	sum, err := stats.Summarize(scores, ReportPercentiles)
	if err != nil {
		return Report{}, fmt.Errorf("sim: %w", err)
	}
	return Report{
		Games:       len(outcomes),
		Elapsed:     elapsed,
		Min:         sum.Min,
		Max:         sum.Max,
		Mean:        sum.Mean,
		StdDev:      sum.StdDev,
		Percentiles: sum.Percentiles,
		Best:        best,
	}, nil
}

// GamesPerSecond returns the batch throughput.
func (r Report) GamesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Games) / r.Elapsed.Seconds()
}

// Write prints the report and the best final board.
func (r Report) Write(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Played %d games in %.2fs (%.0f games/s). Max Score: %d\n",
		r.Games, r.Elapsed.Seconds(), r.GamesPerSecond(), r.Max)
	fmt.Fprintf(&sb, "  %6s: %d\n", "min", r.Min)
	for _, p := range r.Percentiles {
		fmt.Fprintf(&sb, "  %6s: %d\n", "p"+formatP(p.P), p.Score)
	}
	fmt.Fprintf(&sb, "  %6s: %d\n", "max", r.Max)
	fmt.Fprintf(&sb, "  %6s: %.1f\n", "mean", r.Mean)
	fmt.Fprintf(&sb, "  %6s: %.1f\n", "stddev", r.StdDev)
	if r.Best.Result != nil {
		fmt.Fprintf(&sb, "winning board (game %d, seed %d)\n%s\n", r.Best.Index, r.Best.Seed, r.Best.Result.FinalRender)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatP(p float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", p), ".0")
}
