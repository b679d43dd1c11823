package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-threes/internal/training"
)

// TrainingRun describes one stored training run.
type TrainingRun struct {
	ID              int64
	Seed            uint64
	Generations     int
	EpisodesPerGen  int
	LearningRate    float64
	DiscountFactor  float64
	ExplorationRate float64
	BestScore       int
	CreatedAt       time.Time
}

// SaveTrainingRun stores run and every generation's test game in one
// transaction. BestScore is taken from out. Returns the new run ID.
func (s *Store) SaveTrainingRun(run TrainingRun, out *training.Outcomes) (int64, error) {
	if out == nil {
		return 0, errors.New("storage: cannot save nil training outcomes")
	}
	if best, ok := out.Best(); ok {
		run.BestScore = best.Score
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO training_runs
		 (seed, generations, episodes_per_gen, learning_rate, discount_factor, exploration_rate, best_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formatSeed(run.Seed), run.Generations, run.EpisodesPerGen,
		run.LearningRate, run.DiscountFactor, run.ExplorationRate, run.BestScore,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save training run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO played_games (run_id, gen_id, score, game_log) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare played game insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range out.GamesPlayed {
		var gameLog sql.NullString
		if g.GameLog != nil {
			data, err := json.Marshal(g.GameLog)
			if err != nil {
				return 0, fmt.Errorf("storage: cannot encode generation %d log: %w", g.GenID, err)
			}
			gameLog = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.Exec(id, g.GenID, g.Score, gameLog); err != nil {
			return 0, fmt.Errorf("storage: cannot save generation %d: %w", g.GenID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit training run: %w", err)
	}
	return id, nil
}

const trainingRunColumns = `id, seed, generations, episodes_per_gen, learning_rate,
	discount_factor, exploration_rate, best_score, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrainingRun(row rowScanner) (TrainingRun, error) {
	var r TrainingRun
	var seed string
	var createdAt any
	if err := row.Scan(&r.ID, &seed, &r.Generations, &r.EpisodesPerGen, &r.LearningRate,
		&r.DiscountFactor, &r.ExplorationRate, &r.BestScore, &createdAt); err != nil {
		return r, err
	}
	var err error
	if r.Seed, err = parseSeed(seed); err != nil {
		return r, err
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// TrainingRunByID returns one stored run.
func (s *Store) TrainingRunByID(id int64) (TrainingRun, error) {
	r, err := scanTrainingRun(s.db.QueryRow(
		`SELECT `+trainingRunColumns+` FROM training_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: training run %d", ErrNotFound, id)
	}
	if err != nil {
		return r, fmt.Errorf("storage: cannot query training run: %w", err)
	}
	return r, nil
}

// LatestTrainingRun returns the most recently stored run.
func (s *Store) LatestTrainingRun() (TrainingRun, error) {
	r, err := scanTrainingRun(s.db.QueryRow(
		`SELECT ` + trainingRunColumns + ` FROM training_runs ORDER BY id DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: no training runs", ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("storage: cannot query training run: %w", err)
	}
	return r, nil
}

// TrainingRuns lists the most recent runs, newest first.
func (s *Store) TrainingRuns(limit int) ([]TrainingRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+trainingRunColumns+` FROM training_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query training runs: %w", err)
	}
	defer rows.Close()

	var runs []TrainingRun
	for rows.Next() {
		r, err := scanTrainingRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// TrainingOutcomes loads the played games of run id in generation order.
func (s *Store) TrainingOutcomes(id int64) (*training.Outcomes, error) {
	if _, err := s.TrainingRunByID(id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT gen_id, score, game_log FROM played_games WHERE run_id = ? ORDER BY gen_id`, id)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query played games: %w", err)
	}
	defer rows.Close()

	out := &training.Outcomes{GamesPlayed: []training.PlayedGame{}}
	for rows.Next() {
		var g training.PlayedGame
		var gameLog sql.NullString
		if err := rows.Scan(&g.GenID, &g.Score, &gameLog); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if gameLog.Valid {
			if err := json.Unmarshal([]byte(gameLog.String), &g.GameLog); err != nil {
				return nil, fmt.Errorf("storage: cannot decode generation %d log: %w", g.GenID, err)
			}
		}
		out.GamesPlayed = append(out.GamesPlayed, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}
