// Package redis keeps a shared high-score leaderboard, with replay logs,
// in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

// ErrEntryNotFound is returned for unknown or expired entries.
var ErrEntryNotFound = errors.New("leaderboard: entry not found")

// Entry is one recorded game.
type Entry struct {
	ID         string          `json:"id"`
	Player     string          `json:"player"`
	Score      int             `json:"score"`
	Moves      int             `json:"moves"`
	Seed       uint64          `json:"seed"`
	Log        *threes.GameLog `json:"log,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Leaderboard is a Redis sorted set of entry ids by score, with each entry
// stored as JSON under its own key.
type Leaderboard struct {
	client *redis.Client
	cfg    Config
}

// New connects to Redis and verifies the connection
func New(cfg Config) (*Leaderboard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("leaderboard: ping %s: %w", cfg.Addr, err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a leaderboard with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Leaderboard {
	return &Leaderboard{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (l *Leaderboard) Close() error {
	return l.client.Close()
}

// Record stores a finished game and returns its entry id.
func (l *Leaderboard) Record(ctx context.Context, player string, res *threes.GameResult) (string, error) {
	if res == nil {
		return "", errors.New("leaderboard: cannot record a nil result")
	}

	seq, err := l.client.Incr(ctx, l.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("leaderboard: allocate id: %w", err)
	}

	e := Entry{
		ID:         entryID(seq),
		Player:     player,
		Score:      res.Score,
		Moves:      res.NumMoves,
		Log:        res.Log,
		RecordedAt: time.Now().UTC(),
	}
	if res.Log != nil {
		e.Seed = res.Log.Seed
	}

	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("leaderboard: encode entry: %w", err)
	}

	// Use pipeline for atomic save + index update
	pipe := l.client.TxPipeline()
	pipe.Set(ctx, l.entryKey(e.ID), data, l.cfg.EntryTTL)
	pipe.ZAdd(ctx, l.boardKey(), redis.Z{Score: float64(e.Score), Member: e.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("leaderboard: save entry: %w", err)
	}

	if err := l.trim(ctx); err != nil {
		return "", err
	}
	return e.ID, nil
}

// trim evicts the lowest entries beyond MaxEntries.
func (l *Leaderboard) trim(ctx context.Context) error {
	if l.cfg.MaxEntries <= 0 {
		return nil
	}

	evicted, err := l.client.ZRange(ctx, l.boardKey(), 0, -l.cfg.MaxEntries-1).Result()
	if err != nil {
		return fmt.Errorf("leaderboard: list evicted entries: %w", err)
	}
	if len(evicted) == 0 {
		return nil
	}

	keys := make([]string, len(evicted))
	members := make([]any, len(evicted))
	for i, id := range evicted {
		keys[i] = l.entryKey(id)
		members[i] = id
	}

	pipe := l.client.TxPipeline()
	pipe.ZRem(ctx, l.boardKey(), members...)
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard: evict entries: %w", err)
	}
	return nil
}

// Top returns the n best entries, highest score first. Entries whose data
// has expired are dropped from the board and the board is read again, so
// the result is short only when the board holds fewer than n live entries.
func (l *Leaderboard) Top(ctx context.Context, n int64) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}

	// Every pass removes at least one member, so this ends.
	for {
		entries, stale, err := l.readTop(ctx, n)
		if err != nil {
			return nil, err
		}
		if len(stale) == 0 {
			return entries, nil
		}
		if err := l.client.ZRem(ctx, l.boardKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("leaderboard: drop expired entries: %w", err)
		}
	}
}

// readTop reads the n highest members and splits them into live entries,
// without logs, and ids whose data has expired.
func (l *Leaderboard) readTop(ctx context.Context, n int64) ([]Entry, []any, error) {
	ids, err := l.client.ZRevRange(ctx, l.boardKey(), 0, n-1).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("leaderboard: read board: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = l.entryKey(id)
	}
	vals, err := l.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("leaderboard: read entries: %w", err)
	}

	entries := make([]Entry, 0, len(ids))
	var stale []any
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, nil, fmt.Errorf("leaderboard: decode entry %s: %w", ids[i], err)
		}
		e.Log = nil
		entries = append(entries, e)
	}
	return entries, stale, nil
}

// Get returns one entry including its replay log.
func (l *Leaderboard) Get(ctx context.Context, id string) (Entry, error) {
	data, err := l.client.Get(ctx, l.entryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return Entry{}, fmt.Errorf("leaderboard: read entry %s: %w", id, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("leaderboard: decode entry %s: %w", id, err)
	}
	return e, nil
}

// Log returns the replay log of entry id.
func (l *Leaderboard) Log(ctx context.Context, id string) (threes.GameLog, error) {
	e, err := l.Get(ctx, id)
	if err != nil {
		return threes.GameLog{}, err
	}
	if e.Log == nil {
		return threes.GameLog{}, fmt.Errorf("%w: %s has no replay log", ErrEntryNotFound, id)
	}
	return *e.Log, nil
}

// Len returns the number of entries on the board.
func (l *Leaderboard) Len(ctx context.Context) (int64, error) {
	n, err := l.client.ZCard(ctx, l.boardKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("leaderboard: count entries: %w", err)
	}
	return n, nil
}
