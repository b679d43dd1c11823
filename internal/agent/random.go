package agent

import (
	"math/rand/v2"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/prng"
)

// Random picks uniformly among the available moves.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random agent with its own generator.
func NewRandom(seed uint64) *Random {
	return &Random{rng: prng.New(seed)}
}

// ChooseDirection returns a uniformly random available move.
func (r *Random) ChooseDirection(v View) threes.Direction {
	moves := v.AvailableMoves()
	if len(moves) == 0 {
		panic("agent: asked to move with no moves available")
	}
	return moves[r.rng.IntN(len(moves))]
}
