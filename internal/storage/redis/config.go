package redis

import "time"

// Config holds Redis connection and leaderboard settings
type Config struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key, so several boards can share one server
	Prefix string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// MaxEntries caps the board; lower scores are evicted. 0 keeps everything.
	MaxEntries int64

	// EntryTTL expires stored replay logs. 0 keeps them forever.
	EntryTTL time.Duration
}

// DefaultConfig returns sensible defaults for the leaderboard
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Prefix:       "threes",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxEntries:   1000,
	}
}
