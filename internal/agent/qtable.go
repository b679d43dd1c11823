package agent

import (
	"math"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

// ActionRewards holds one Q value per direction, indexed by Direction.
type ActionRewards [len(threes.Directions)]float64

// RewardTable is the learned state for one board.
type RewardTable struct {
	Rewards ActionRewards
	Reads   int64
}

// QTable maps exact boards to their reward tables.
type QTable struct {
	tables map[threes.Board]*RewardTable
	priors ActionRewards
}

// NewQTable creates an empty table; unseen boards start at priors.
func NewQTable(priors ActionRewards) *QTable {
	return &QTable{
		tables: make(map[threes.Board]*RewardTable),
		priors: priors,
	}
}

// Len returns the number of boards seen.
func (t *QTable) Len() int {
	return len(t.tables)
}

// Table returns the reward table for b, creating it from the priors.
// Every call counts as a read.
func (t *QTable) Table(b threes.Board) *RewardTable {
	rt, ok := t.tables[b]
	if !ok {
		rt = &RewardTable{Rewards: t.priors}
		t.tables[b] = rt
	}
	rt.Reads++
	return rt
}

// Value returns the Q value of d on b.
func (t *QTable) Value(b threes.Board, d threes.Direction) float64 {
	return t.Table(b).Rewards[d]
}

// Set stores the Q value of d on b.
func (t *QTable) Set(b threes.Board, d threes.Direction, q float64) {
	t.Table(b).Rewards[d] = q
}

// better keeps the accumulated best unless it is strictly greater than the
// candidate, so later directions win ties. Panics on NaN.
func better(best threes.Direction, bestQ float64, d threes.Direction, q float64) (threes.Direction, float64) {
	if math.IsNaN(bestQ) || math.IsNaN(q) {
		panic("agent: NaN reward in action table")
	}
	if bestQ > q {
		return best, bestQ
	}
	return d, q
}

// MaxAction returns the best direction on b over all four, and its value.
// The search starts from (Down, -1), so a table with every value below -1
// reports -1.
func (t *QTable) MaxAction(b threes.Board) (threes.Direction, float64) {
	rt := t.Table(b)
	best, bestQ := threes.Down, -1.0
	for _, d := range threes.Directions {
		best, bestQ = better(best, bestQ, d, rt.Rewards[d])
	}
	return best, bestQ
}

// BestOf returns the highest-valued direction on b among available.
func (t *QTable) BestOf(b threes.Board, available []threes.Direction) threes.Direction {
	if len(available) == 0 {
		panic("agent: BestOf with no available moves")
	}
	rt := t.Table(b)
	best, bestQ := available[0], -1.0
	for _, d := range available {
		best, bestQ = better(best, bestQ, d, rt.Rewards[d])
	}
	return best
}

// Fullness counts the Q values of rt whose magnitude exceeds 0.001.
func (rt *RewardTable) Fullness() int {
	n := 0
	for _, q := range rt.Rewards {
		if math.Abs(q) > 0.001 {
			n++
		}
	}
	return n
}
