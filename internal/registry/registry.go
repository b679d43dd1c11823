// Package registry provides a global registry for playable game factories.
// Games register themselves in init() functions, so the CLI and the SSH
// server can list and start them by id.
package registry

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/vovakirdan/tui-threes/internal/core"
)

// Game is the interface the terminal platform drives.
// Implementations hold pure logic; the platform maps keys to actions,
// owns timing and turns the screen buffer into terminal output.
type Game interface {
	// ID returns a unique identifier, used for CLI commands and score storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset starts a new game. The RuntimeConfig provides screen size and seed.
	Reset(cfg core.RuntimeConfig)

	// Step applies the actions of one input frame.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current game state into a pre-cleared screen buffer.
	Render(dst *core.Screen)

	// State returns score, move count and the game-over and pause flags.
	State() core.GameState

	// Controls returns a one-line key hint.
	Controls() string
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new instance of a game.
type Factory func() Game

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
)

// Register adds a game factory to the registry.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered games, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}

	slices.SortFunc(result, func(a, b GameInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

// Create instantiates a new game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
