package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW  int    // Screen width in characters
	ScreenH  int    // Screen height in characters
	TickRate int    // UI ticks per second
	Seed     uint64 // RNG seed for deterministic gameplay
	Logging  bool   // Record moves for replay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0, // 0 means draw one from entropy in the platform layer
		Logging:  true,
	}
}

// GameState represents the current state of a game.
type GameState struct {
	Score    int  // Current score
	Moves    int  // Moves played
	GameOver bool // Whether the game has ended
	Paused   bool // Whether the game is paused
}

// StepResult is returned by Game.Step after each input frame.
type StepResult struct {
	State    GameState
	Moved    bool // A move was applied this step
	Rejected bool // A move was attempted but had no effect
}
