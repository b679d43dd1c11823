package threes

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/vovakirdan/tui-threes/internal/prng"
)

var (
	// ErrNoEffect is returned when a move would not change a started board.
	ErrNoEffect = errors.New("threes: move has no effect")
	// ErrGameOver is returned by Update once the game has finished.
	ErrGameOver = errors.New("threes: game is over")
)

// outcome is the cached board after shoving in one direction.
type outcome struct {
	board Board
	legal bool
}

// Game is a single Threes game: a board plus the turn state needed to
// spawn tiles and detect the end. A Game is not safe for concurrent use.
type Game struct {
	board   Board
	shifted [len(Directions)]outcome

	moves    int
	nextRank Rank
	parity   int  // 2s placed minus 1s placed
	empty    bool // no tile placed yet

	logging bool
	log     []Direction

	rng  *rand.Rand
	seed uint64

	result *GameResult
}

// New creates a game whose tile spawns are fully determined by seed.
// When logging is set, every played direction is recorded for replay.
func New(seed uint64, logging bool) *Game {
	g := &Game{
		empty:   true,
		logging: logging,
		rng:     prng.New(seed),
		seed:    seed,
	}
	g.nextRank = g.drawRank()
	return g
}

// NewFromEntropy creates a game seeded from the operating system.
func NewFromEntropy(logging bool) *Game {
	return New(prng.FromEntropy(), logging)
}

// drawRank picks the next spawn rank. The more 2s have been placed
// relative to 1s, the likelier a 1 becomes.
func (g *Game) drawRank() Rank {
	threshold := 50 + 3*g.parity
	if g.rng.IntN(100) < threshold {
		return 1
	}
	return 2
}

// takeNextRank returns the announced rank and announces a new one.
func (g *Game) takeNextRank() Rank {
	r := g.nextRank
	if r == 2 {
		g.parity++
	} else {
		g.parity--
	}
	g.nextRank = g.drawRank()
	return r
}

// spawnCell picks an empty cell on the edge the move just opened.
func (g *Game) spawnCell(d Direction) (row, col int) {
	var open []int

	switch d {
	case Down, Up:
		row = 0
		if d == Up {
			row = Width - 1
		}
		for c := range Width {
			if g.board.Get(row, c) == 0 {
				open = append(open, c)
			}
		}
		if len(open) == 0 {
			panic(fmt.Sprintf("threes: shove %s left no open cell in row %d", d, row))
		}
		return row, open[g.rng.IntN(len(open))]

	default:
		col = 0
		if d == Left {
			col = Width - 1
		}
		for r := range Width {
			if g.board.Get(r, col) == 0 {
				open = append(open, r)
			}
		}
		if len(open) == 0 {
			panic(fmt.Sprintf("threes: shove %s left no open cell in column %d", d, col))
		}
		return open[g.rng.IntN(len(open))], col
	}
}

// Update plays one move. It returns ErrNoEffect without touching any state
// when d does not change a started board, and a non-nil result when the
// move ended the game.
func (g *Game) Update(d Direction) (*GameResult, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("threes: invalid direction %d", int(d))
	}
	if g.result != nil {
		return nil, ErrGameOver
	}

	next := g.board
	if !next.Shove(d) && !g.empty {
		return nil, ErrNoEffect
	}
	g.board = next

	row, col := g.spawnCell(d)
	g.board.Set(row, col, g.takeNextRank())

	g.moves++
	if g.logging {
		g.log = append(g.log, d)
	}
	g.empty = false

	g.refreshOutcomes()

	if g.noMovesLeft() {
		g.result = g.buildResult()
		return g.result, nil
	}
	return nil, nil
}

// refreshOutcomes shoves a copy of the board in every direction.
func (g *Game) refreshOutcomes() {
	for _, d := range Directions {
		b := g.board
		legal := b.Shove(d)
		g.shifted[d] = outcome{board: b, legal: legal}
	}
}

func (g *Game) noMovesLeft() bool {
	if g.empty {
		return false
	}
	for _, o := range g.shifted {
		if o.legal {
			return false
		}
	}
	return true
}

func (g *Game) buildResult() *GameResult {
	res := &GameResult{
		Score:       g.board.Score(),
		NumMoves:    g.moves,
		FinalBoard:  g.board,
		FinalRender: g.Render(),
	}
	if g.logging {
		res.Log = &GameLog{
			Seed:  g.seed,
			Moves: append([]Direction(nil), g.log...),
		}
	}
	return res
}

// AvailableMoves returns the legal directions in Direction order.
// All four are legal before the first move.
func (g *Game) AvailableMoves() []Direction {
	if g.empty {
		return append([]Direction(nil), Directions[:]...)
	}
	moves := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		if g.shifted[d].legal {
			moves = append(moves, d)
		}
	}
	return moves
}

// CanMove reports whether d is currently a legal move.
func (g *Game) CanMove(d Direction) bool {
	if !d.Valid() {
		return false
	}
	return g.empty || g.shifted[d].legal
}

// Outcome returns the board that shoving in d would produce, before the
// new tile spawns, and whether the move is legal.
func (g *Game) Outcome(d Direction) (Board, bool) {
	if !d.Valid() {
		return g.board, false
	}
	if g.empty {
		return g.board, true
	}
	o := g.shifted[d]
	return o.board, o.legal
}

// Score returns the current board score.
func (g *Game) Score() int {
	return g.board.Score()
}

// Board returns a copy of the current board.
func (g *Game) Board() Board {
	return g.board
}

// NextRank returns the rank the next move will place.
func (g *Game) NextRank() Rank {
	return g.nextRank
}

// MoveCount returns the number of moves played.
func (g *Game) MoveCount() int {
	return g.moves
}

// Seed returns the seed the game was created with.
func (g *Game) Seed() uint64 {
	return g.seed
}

// Parity returns the number of 2s placed minus the number of 1s placed.
func (g *Game) Parity() int {
	return g.parity
}

// IsEmpty reports whether no move has been played yet.
func (g *Game) IsEmpty() bool {
	return g.empty
}

// IsOver reports whether the game has finished.
func (g *Game) IsOver() bool {
	return g.result != nil
}

// Result returns the final result, or nil while the game is running.
func (g *Game) Result() *GameResult {
	return g.result
}

// Log returns the moves played so far, or nil if logging is off.
func (g *Game) Log() *GameLog {
	if !g.logging {
		return nil
	}
	return &GameLog{
		Seed:  g.seed,
		Moves: append([]Direction(nil), g.log...),
	}
}

// Render returns the board grid with the upcoming rank beside the top row.
func (g *Game) Render() string {
	rows := g.board.renderRows()
	rows[0] = fmt.Sprintf("%s%5s|%s| <- next up", rows[0], "", FormatRank(g.nextRank))
	return strings.Join(rows, "\n")
}
