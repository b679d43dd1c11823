package threes

import (
	"errors"

	"github.com/vovakirdan/tui-threes/internal/core"
	"github.com/vovakirdan/tui-threes/internal/prng"
	"github.com/vovakirdan/tui-threes/internal/registry"
)

// ID is the registry and score-storage identifier.
const ID = "threes"

// Arcade adapts a Game to the terminal platform: it maps input frames to
// moves and draws the board into a screen buffer.
type Arcade struct {
	game *Game

	screenW int
	screenH int

	paused   bool
	tooSmall bool
	rejected bool // last attempted move had no effect
}

// NewArcade returns an arcade game; call Reset before use.
func NewArcade() *Arcade {
	return &Arcade{}
}

func init() {
	registry.Register(ID, func() registry.Game {
		return NewArcade()
	})
}

// ID returns the game identifier.
func (a *Arcade) ID() string {
	return ID
}

// Title returns the display name.
func (a *Arcade) Title() string {
	return "Threes"
}

// Reset starts a new game. A zero seed draws one from entropy.
func (a *Arcade) Reset(cfg core.RuntimeConfig) {
	a.game = New(prng.Resolve(cfg.Seed), cfg.Logging)
	a.screenW = cfg.ScreenW
	a.screenH = cfg.ScreenH
	a.paused = false
	a.rejected = false
	a.checkScreenSize()
}

// Minimum size: board (21x9) plus next-tile panel, HUD and control line.
func (a *Arcade) checkScreenSize() {
	minW := 36
	minH := 15
	a.tooSmall = a.screenW < minW || a.screenH < minH
}

// Resize updates the screen dimensions without restarting the game.
func (a *Arcade) Resize(w, h int) {
	a.screenW = w
	a.screenH = h
	a.checkScreenSize()
}

// Step applies one input frame. At most one move is played per frame.
func (a *Arcade) Step(in core.InputFrame) core.StepResult {
	if a.tooSmall {
		return core.StepResult{State: a.State()}
	}

	if in.Has(core.ActionPause) && !a.game.IsOver() {
		a.paused = !a.paused
	}
	if a.paused || a.game.IsOver() {
		return core.StepResult{State: a.State()}
	}

	d, ok := directionFor(in)
	if !ok {
		return core.StepResult{State: a.State()}
	}

	_, err := a.game.Update(d)
	if errors.Is(err, ErrNoEffect) {
		a.rejected = true
		return core.StepResult{State: a.State(), Rejected: true}
	}
	a.rejected = false
	return core.StepResult{State: a.State(), Moved: err == nil}
}

func directionFor(in core.InputFrame) (Direction, bool) {
	switch {
	case in.Has(core.ActionUp):
		return Up, true
	case in.Has(core.ActionDown):
		return Down, true
	case in.Has(core.ActionLeft):
		return Left, true
	case in.Has(core.ActionRight):
		return Right, true
	}
	return 0, false
}

// State returns the current game state.
func (a *Arcade) State() core.GameState {
	return core.GameState{
		Score:    a.game.Score(),
		Moves:    a.game.MoveCount(),
		GameOver: a.game.IsOver(),
		Paused:   a.paused || a.tooSmall,
	}
}

// Game returns the underlying game.
func (a *Arcade) Game() *Game {
	return a.game
}

// Controls returns the control hints for the game.
func (a *Arcade) Controls() string {
	return "Arrows/WASD: Move | P: Pause | R: Restart | Q: Quit"
}
