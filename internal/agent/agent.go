// Package agent contains the players that drive a Threes game: a uniform
// random player, a tabular Q-learning player, and the runner that plays a
// game to the end with either of them.
package agent

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

// ErrIllegalChoice is returned when an agent picks a move that is not available.
var ErrIllegalChoice = errors.New("agent: chose an unavailable move")

// View is the read-only game state an agent decides from.
// *threes.Game satisfies it.
type View interface {
	Board() threes.Board
	AvailableMoves() []threes.Direction
	NextRank() threes.Rank
	MoveCount() int
}

// Agent picks the next move. It is only asked while at least one move is
// available and must return one of them.
type Agent interface {
	ChooseDirection(v View) threes.Direction
}

// Learner is an agent that improves from observed transitions.
type Learner interface {
	Agent
	Observe(prev threes.Board, action threes.Direction, next threes.Board, reward float64)
}

// Play drives g with a until the game ends. When learn is set and a is a
// Learner, every transition is fed back with the score gained as reward.
func Play(g *threes.Game, a Agent, learn bool) (*threes.GameResult, error) {
	learner, _ := a.(Learner)
	if !learn {
		learner = nil
	}

	for {
		moves := g.AvailableMoves()
		if len(moves) == 0 {
			return nil, fmt.Errorf("agent: move %d: %w", g.MoveCount(), threes.ErrGameOver)
		}

		d := a.ChooseDirection(g)
		if !slices.Contains(moves, d) {
			return nil, fmt.Errorf("%w: %s at move %d (have %v)", ErrIllegalChoice, d, g.MoveCount(), moves)
		}

		prev, prevScore := g.Board(), g.Score()
		res, err := g.Update(d)
		if err != nil {
			return nil, fmt.Errorf("agent: move %d: %w", g.MoveCount(), err)
		}

		if learner != nil {
			learner.Observe(prev, d, g.Board(), float64(g.Score()-prevScore))
		}
		if res != nil {
			return res, nil
		}
	}
}

// PlaySeed plays a fresh game from seed.
func PlaySeed(seed uint64, a Agent, learn, logging bool) (*threes.GameResult, error) {
	return Play(threes.New(seed, logging), a, learn)
}
