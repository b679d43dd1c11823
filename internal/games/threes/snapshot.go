package threes

// State is the phase of a game.
type State string

const (
	StateEmpty    State = "empty"
	StateActive   State = "active"
	StateTerminal State = "terminal"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Moves    int
	Score    int
	Board    Board
	NextRank Rank
	Parity   int
	State    State
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	state := StateActive
	switch {
	case g.empty:
		state = StateEmpty
	case g.result != nil:
		state = StateTerminal
	}

	return Snapshot{
		Moves:    g.moves,
		Score:    g.board.Score(),
		Board:    g.board,
		NextRank: g.nextRank,
		Parity:   g.parity,
		State:    state,
	}
}
