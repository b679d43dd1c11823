package training

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

// ErrGenerationNotFound is returned when a training log has no such generation.
var ErrGenerationNotFound = errors.New("training: generation not found")

// PlayedGame is the test game played at the end of one generation.
type PlayedGame struct {
	GenID   int             `json:"gen_id"`
	Score   int             `json:"score"`
	GameLog *threes.GameLog `json:"game_log"`
}

// Outcomes is the result of a training run, one entry per generation.
type Outcomes struct {
	GamesPlayed []PlayedGame `json:"games_played"`
}

// Find returns the game played for generation genID.
func (o *Outcomes) Find(genID int) (PlayedGame, error) {
	for _, g := range o.GamesPlayed {
		if g.GenID == genID {
			return g, nil
		}
	}
	return PlayedGame{}, fmt.Errorf("%w: %d", ErrGenerationNotFound, genID)
}

// Log returns the replay log of generation genID.
func (o *Outcomes) Log(genID int) (threes.GameLog, error) {
	g, err := o.Find(genID)
	if err != nil {
		return threes.GameLog{}, err
	}
	if g.GameLog == nil {
		return threes.GameLog{}, fmt.Errorf("training: generation %d has no game log", genID)
	}
	return *g.GameLog, nil
}

// Scores returns the test-game scores in generation order.
func (o *Outcomes) Scores() []int {
	scores := make([]int, len(o.GamesPlayed))
	for i, g := range o.GamesPlayed {
		scores[i] = g.Score
	}
	return scores
}

// Best returns the highest-scoring generation; the earliest wins ties.
func (o *Outcomes) Best() (PlayedGame, bool) {
	if len(o.GamesPlayed) == 0 {
		return PlayedGame{}, false
	}
	best := o.GamesPlayed[0]
	for _, g := range o.GamesPlayed[1:] {
		if g.Score > best.Score {
			best = g
		}
	}
	return best, true
}

// WriteFile saves the outcomes as JSON.
func (o *Outcomes) WriteFile(path string) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("training: encode outcomes: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("training: write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads outcomes saved by WriteFile.
func ReadFile(path string) (*Outcomes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("training: read %s: %w", path, err)
	}

	var o Outcomes
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("training: decode %s: %w", path, err)
	}
	return &o, nil
}
