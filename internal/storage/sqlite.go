// Package storage provides SQLite-based persistence for game scores,
// replay logs and training runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Score sources.
const (
	SourcePlay   = "play"
	SourceSSH    = "ssh"
	SourceRandom = "random"
	SourceTrain  = "train"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single high score record.
type ScoreEntry struct {
	ID        int64
	GameID    string
	Player    string
	Source    string
	Score     int
	Moves     int
	Seed      uint64
	HasLog    bool
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
// Seeds are stored as TEXT because SQLite integers are signed.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'play',
			score INTEGER NOT NULL,
			moves INTEGER NOT NULL DEFAULT 0,
			seed TEXT NOT NULL DEFAULT '0',
			move_log TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_game_id ON scores(game_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS training_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed TEXT NOT NULL,
			generations INTEGER NOT NULL,
			episodes_per_gen INTEGER NOT NULL,
			learning_rate REAL NOT NULL,
			discount_factor REAL NOT NULL,
			exploration_rate REAL NOT NULL,
			best_score INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS played_games (
			run_id INTEGER NOT NULL REFERENCES training_runs(id) ON DELETE CASCADE,
			gen_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			game_log TEXT,
			PRIMARY KEY (run_id, gen_id)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a bare score for the given game.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(gameID string, score int) (int64, error) {
	return s.insertScore(ScoreEntry{GameID: gameID, Source: SourcePlay, Score: score}, nil)
}

// SaveResult records a finished game together with its replay log, if it
// kept one. entry supplies the game id, player and source; the score, move
// count and seed come from res.
func (s *Store) SaveResult(entry ScoreEntry, res *threes.GameResult) (int64, error) {
	if res == nil {
		return 0, errors.New("storage: cannot save a nil result")
	}
	entry.Score = res.Score
	entry.Moves = res.NumMoves
	if res.Log != nil {
		entry.Seed = res.Log.Seed
	}
	if entry.Source == "" {
		entry.Source = SourcePlay
	}
	return s.insertScore(entry, res.Log)
}

func (s *Store) insertScore(e ScoreEntry, log *threes.GameLog) (int64, error) {
	var moveLog sql.NullString
	if log != nil {
		data, err := json.Marshal(log)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot encode move log: %w", err)
		}
		moveLog = sql.NullString{String: string(data), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO scores (game_id, player, source, score, moves, seed, move_log)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.GameID, e.Player, e.Source, e.Score, e.Moves, formatSeed(e.Seed), moveLog,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for the given game.
// Results are ordered by score descending, earlier games first on ties.
func (s *Store) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, player, source, score, moves, seed, move_log IS NOT NULL, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var seed string
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Player, &e.Source, &e.Score, &e.Moves, &seed, &e.HasLog, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if e.Seed, err = parseSeed(seed); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given game.
// Returns 0 if no scores exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE game_id = ?",
		gameID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ScoreLog returns the replay log saved with score id.
func (s *Store) ScoreLog(id int64) (threes.GameLog, error) {
	var moveLog sql.NullString
	err := s.db.QueryRow("SELECT move_log FROM scores WHERE id = ?", id).Scan(&moveLog)
	if errors.Is(err, sql.ErrNoRows) {
		return threes.GameLog{}, fmt.Errorf("%w: score %d", ErrNotFound, id)
	}
	if err != nil {
		return threes.GameLog{}, fmt.Errorf("storage: cannot query move log: %w", err)
	}
	if !moveLog.Valid {
		return threes.GameLog{}, fmt.Errorf("%w: score %d has no move log", ErrNotFound, id)
	}

	var log threes.GameLog
	if err := json.Unmarshal([]byte(moveLog.String), &log); err != nil {
		return threes.GameLog{}, fmt.Errorf("storage: cannot decode move log of score %d: %w", id, err)
	}
	return log, nil
}

// ClearScores deletes all scores for the given game.
func (s *Store) ClearScores(gameID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	TotalMoves int64
	LastPlayed time.Time
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(score), 0), COALESCE(SUM(moves), 0)
		 FROM scores WHERE game_id = ?`,
		gameID,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &stats.TotalMoves)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM scores WHERE game_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		gameID,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatSeed(seed uint64) string {
	return strconv.FormatUint(seed, 10)
}

func parseSeed(s string) (uint64, error) {
	seed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("storage: bad seed %q: %w", s, err)
	}
	return seed, nil
}
