package threes

import (
	"errors"
	"fmt"
)

// ErrIncompleteLog is returned when a replayed log stops before the game ends.
var ErrIncompleteLog = errors.New("threes: log ends before game over")

// GameResult is the final state of a finished game.
type GameResult struct {
	Score       int
	NumMoves    int
	FinalBoard  Board
	FinalRender string
	Log         *GameLog // nil unless the game was logging
}

// GameLog is everything needed to regenerate a game: the seed and the
// ordered moves.
type GameLog struct {
	Seed  uint64      `json:"seed"`
	Moves []Direction `json:"moves"`
}

// Replay plays log from scratch and returns the result of the finished game.
func Replay(log GameLog) (*GameResult, error) {
	r := NewReplayer(log)
	for !r.Done() {
		if err := r.Step(); err != nil {
			return nil, err
		}
	}
	res := r.Game().Result()
	if res == nil {
		return nil, fmt.Errorf("%w: %d moves", ErrIncompleteLog, len(log.Moves))
	}
	return res, nil
}

// Replayer steps through a logged game one move at a time.
type Replayer struct {
	log  GameLog
	game *Game
	pos  int
}

// NewReplayer starts a replay at the empty board.
func NewReplayer(log GameLog) *Replayer {
	return &Replayer{
		log:  log,
		game: New(log.Seed, true),
	}
}

// Step applies the next logged move.
func (r *Replayer) Step() error {
	if r.Done() {
		return fmt.Errorf("threes: replay already at move %d", r.pos)
	}

	d := r.log.Moves[r.pos]
	res, err := r.game.Update(d)
	if err != nil {
		return fmt.Errorf("threes: replay move %d (%s): %w", r.pos+1, d, err)
	}
	r.pos++

	if res != nil && r.pos < len(r.log.Moves) {
		return fmt.Errorf("threes: replay ended at move %d of %d: %w", r.pos, len(r.log.Moves), ErrGameOver)
	}
	return nil
}

// Done reports whether every logged move has been applied.
func (r *Replayer) Done() bool {
	return r.pos >= len(r.log.Moves)
}

// Position returns the number of moves applied so far.
func (r *Replayer) Position() int {
	return r.pos
}

// Len returns the number of moves in the log.
func (r *Replayer) Len() int {
	return len(r.log.Moves)
}

// Game returns the game being replayed.
func (r *Replayer) Game() *Game {
	return r.game
}
