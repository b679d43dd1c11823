package agent

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/prng"
)

// Priors are the initial Q values of a board nobody has seen yet.
type Priors struct {
	Down  float64 `yaml:"down"`
	Up    float64 `yaml:"up"`
	Left  float64 `yaml:"left"`
	Right float64 `yaml:"right"`
}

// Rewards returns the priors indexed by direction.
func (p Priors) Rewards() ActionRewards {
	var r ActionRewards
	r[threes.Down] = p.Down
	r[threes.Up] = p.Up
	r[threes.Left] = p.Left
	r[threes.Right] = p.Right
	return r
}

// Params configures a QAgent.
type Params struct {
	LearningRate    float64
	DiscountFactor  float64
	ExplorationRate float64
	Priors          Priors
}

// DefaultParams returns the training defaults. The priors favour pushing
// tiles left and up.
func DefaultParams() Params {
	return Params{
		LearningRate:    0.9,
		DiscountFactor:  0.9,
		ExplorationRate: 0.7,
		Priors: Priors{
			Down:  -40,
			Up:    40,
			Left:  80,
			Right: -80,
		},
	}
}

// Validate checks that the rates are within [0, 1].
func (p Params) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"learning rate", p.LearningRate},
		{"discount factor", p.DiscountFactor},
		{"exploration rate", p.ExplorationRate},
	}
	for _, r := range rates {
		if math.IsNaN(r.v) || r.v < 0 || r.v > 1 {
			return fmt.Errorf("agent: %s %v outside [0, 1]", r.name, r.v)
		}
	}
	return nil
}

// QAgent is a tabular Q-learning player. With probability ExplorationRate
// it defers to a random agent, otherwise it plays the best known move.
// Not safe for concurrent use.
type QAgent struct {
	rng      *rand.Rand
	explorer *Random
	table    *QTable
	params   Params
}

// NewQAgent creates an agent with an empty table.
func NewQAgent(seed uint64, p Params) *QAgent {
	rng := prng.New(seed)
	return &QAgent{
		rng:      rng,
		explorer: NewRandom(rng.Uint64()),
		table:    NewQTable(p.Priors.Rewards()),
		params:   p,
	}
}

// Table returns the agent's Q table.
func (q *QAgent) Table() *QTable {
	return q.table
}

// Params returns the agent's parameters.
func (q *QAgent) Params() Params {
	return q.params
}

// ChooseDirection explores or exploits.
func (q *QAgent) ChooseDirection(v View) threes.Direction {
	if q.rng.Float64() < q.params.ExplorationRate {
		return q.explorer.ChooseDirection(v)
	}
	return q.table.BestOf(v.Board(), v.AvailableMoves())
}

// Observe applies q ← q(1−α) + α(r + γ·max q(next)).
func (q *QAgent) Observe(prev threes.Board, action threes.Direction, next threes.Board, reward float64) {
	lr, df := q.params.LearningRate, q.params.DiscountFactor

	_, maxNext := q.table.MaxAction(next)
	updated := q.table.Value(prev, action)*(1-lr) + lr*(reward+df*maxNext)
	q.table.Set(prev, action, updated)
}

// TableStats summarizes a Q table.
type TableStats struct {
	Tables   int
	Fullness [len(threes.Directions) + 1]int // tables by count of non-zero entries
}

// Stats counts tables by fullness.
func (q *QAgent) Stats() TableStats {
	s := TableStats{Tables: q.table.Len()}
	for _, rt := range q.table.tables {
		s.Fullness[rt.Fullness()]++
	}
	return s
}

type hotTable struct {
	board threes.Board
	table *RewardTable
}

// Hottest returns up to n boards with the most reads, most-read first.
func (q *QAgent) Hottest(n int) []threes.Board {
	hot := q.hottest(n)
	boards := make([]threes.Board, len(hot))
	for i, h := range hot {
		boards[i] = h.board
	}
	return boards
}

func (q *QAgent) hottest(n int) []hotTable {
	all := make([]hotTable, 0, q.table.Len())
	for b, rt := range q.table.tables {
		all = append(all, hotTable{board: b, table: rt})
	}
	slices.SortFunc(all, func(a, b hotTable) int {
		return cmp.Compare(b.table.Reads, a.table.Reads)
	})
	return all[:min(max(n, 0), len(all))]
}

// Summary writes table size, fullness counts and the n most-read tables.
func (q *QAgent) Summary(w io.Writer, n int) error {
	var sb strings.Builder
	stats := q.Stats()

	fmt.Fprintf(&sb, "qtable %d entries\n", stats.Tables)
	fmt.Fprintln(&sb, "Q table fullness:")
	for full, count := range stats.Fullness {
		fmt.Fprintf(&sb, "  %d non-zero: %d\n", full, count)
	}

	for i, h := range q.hottest(n) {
		fmt.Fprintf(&sb, "\n#%d table [%d reads]\n%s\n", i, h.table.Reads, h.board.Render())
		for _, d := range threes.Directions {
			fmt.Fprintf(&sb, "  %-5s %.3f\n", d, h.table.Rewards[d])
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
