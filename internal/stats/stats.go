// Package stats summarizes score distributions with an HDR histogram.
//
// Scores below 2048 are recorded exactly; larger scores keep three
// significant digits, so quantiles are within 0.1% of the true value.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// ErrNoScores is returned when there is nothing to summarize.
var ErrNoScores = errors.New("stats: no scores")

const sigFigs = 3

// Percentile is one score quantile. P is in percent.
type Percentile struct {
	P     float64
	Score int
}

// Summary describes a set of scores.
type Summary struct {
	Count       int
	Min         int
	Max         int
	Mean        float64
	StdDev      float64
	Percentiles []Percentile
}

// Summarize records scores in a histogram and reads the quantiles ps
// (in percent) back out of it. Min and Max are exact.
func Summarize(scores []int, ps []float64) (Summary, error) {
	if len(scores) == 0 {
		return Summary{}, ErrNoScores
	}

	h := hdrhistogram.New(1, math.MaxInt32, sigFigs)
	s := Summary{Count: len(scores), Min: scores[0], Max: scores[0]}
	for _, v := range scores {
		if v < 0 {
			return Summary{}, fmt.Errorf("stats: negative score %d", v)
		}
		if err := h.RecordValue(int64(v)); err != nil {
			return Summary{}, fmt.Errorf("stats: record %d: %w", v, err)
		}
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}

	s.Mean = h.Mean()
	s.StdDev = h.StdDev()
	for _, p := range ps {
		// Bucket edges can fall outside the observed range.
		q := int(h.ValueAtQuantile(p))
		s.Percentiles = append(s.Percentiles, Percentile{P: p, Score: min(max(q, s.Min), s.Max)})
	}
	return s, nil
}

// Quantile returns the score recorded for p, or false when p was not
// requested.
func (s Summary) Quantile(p float64) (int, bool) {
	for _, q := range s.Percentiles {
		if q.P == p {
			return q.Score, true
		}
	}
	return 0, false
}
