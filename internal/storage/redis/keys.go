package redis

import "fmt"

// boardKey returns the sorted set of entry ids scored by game score
func (l *Leaderboard) boardKey() string {
	return fmt.Sprintf("%s:leaderboard", l.cfg.Prefix)
}

// seqKey returns the counter used to allocate entry ids
func (l *Leaderboard) seqKey() string {
	return fmt.Sprintf("%s:leaderboard:seq", l.cfg.Prefix)
}

// entryKey returns the key holding one entry and its replay log
func (l *Leaderboard) entryKey(id string) string {
	return fmt.Sprintf("%s:entry:%s", l.cfg.Prefix, id)
}

// entryID formats a sequence number so ids sort in allocation order
func entryID(seq int64) string {
	return fmt.Sprintf("%012d", seq)
}
