package training

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/vovakirdan/tui-threes/internal/stats"
)

// ProgressQuantiles are the percentiles reported for each block of
// generations.
var ProgressQuantiles = []float64{10, 50, 90, 100}

// ProgressBlock summarizes a contiguous range of generations.
type ProgressBlock struct {
	FirstGen int
	LastGen  int
	stats.Summary
	// Rolling is the windowed mean of the test scores ending at LastGen,
	// NaN until a full window has been played.
	Rolling float64
}

// Progress shows how test scores moved over a training run.
type Progress struct {
	Window  int
	Overall stats.Summary
	Blocks  []ProgressBlock
}

// RollingMean returns the mean of every full window of scores in order.
// It returns nil when window is not positive or longer than scores.
func RollingMean(scores []int, window int) []float64 {
	if window <= 0 || window > len(scores) {
		return nil
	}

	out := make([]float64, 0, len(scores)-window+1)
	sum := 0
	for i, s := range scores {
		sum += s
		if i >= window {
			sum -= scores[i-window]
		}
		if i >= window-1 {
			out = append(out, float64(sum)/float64(window))
		}
	}
	return out
}

// Progress splits the run into at most blocks ranges of generations and
// summarizes each one.
func (o *Outcomes) Progress(blocks, window int) (Progress, error) {
	if blocks <= 0 {
		return Progress{}, fmt.Errorf("training: blocks must be positive, got %d", blocks)
	}

	scores := o.Scores()
	overall, err := stats.Summarize(scores, ProgressQuantiles)
	if err != nil {
		return Progress{}, fmt.Errorf("training: progress: %w", err)
	}
	rolling := RollingMean(scores, window)

	p := Progress{Window: window, Overall: overall}
	size := (len(scores) + blocks - 1) / blocks
	for start := 0; start < len(scores); start += size {
		end := min(start+size, len(scores))
		sum, err := stats.Summarize(scores[start:end], ProgressQuantiles)
		if err != nil {
			return Progress{}, fmt.Errorf("training: progress: %w", err)
		}

		b := ProgressBlock{
			FirstGen: o.GamesPlayed[start].GenID,
			LastGen:  o.GamesPlayed[end-1].GenID,
			Summary:  sum,
			Rolling:  math.NaN(),
		}
		if i := end - window; rolling != nil && i >= 0 {
			b.Rolling = rolling[i]
		}
		p.Blocks = append(p.Blocks, b)
	}
	return p, nil
}

// Write prints one row per block followed by the whole-run summary.
func (p Progress) Write(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Training progress (%d generations, rolling mean over %d)\n", p.Overall.Count, p.Window)
	fmt.Fprintf(&sb, "  %-11s  %7s  %7s  %7s  %7s  %9s\n", "Gens", "p10", "p50", "p90", "max", "rolling")
	for _, b := range p.Blocks {
		fmt.Fprintf(&sb, "  %-11s", fmt.Sprintf("%d-%d", b.FirstGen, b.LastGen))
		for _, q := range b.Percentiles {
			fmt.Fprintf(&sb, "  %7d", q.Score)
		}
		if math.IsNaN(b.Rolling) {
			fmt.Fprintf(&sb, "  %9s\n", "-")
		} else {
			fmt.Fprintf(&sb, "  %9.1f\n", b.Rolling)
		}
	}
	fmt.Fprintf(&sb, "Overall: mean %.1f, stddev %.1f, min %d, max %d\n",
		p.Overall.Mean, p.Overall.StdDev, p.Overall.Min, p.Overall.Max)

	_, err := io.WriteString(w, sb.String())
	return err
}
