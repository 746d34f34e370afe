package storage

import (
	"context"
	"time"
)

// Member is an entry in a time-ordered set; Score is a unix timestamp in
// milliseconds.
type Member struct {
	Name  string
	Score float64
}

// Store is the durable key-value surface required by the detection engine:
// plain keys with optional expiry plus time-ordered sets.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// ZAdd upserts members; re-adding an existing member overwrites its score.
	ZAdd(ctx context.Context, set string, members ...Member) error
	// ZRangeByScore returns all members with score <= max, lowest first.
	ZRangeByScore(ctx context.Context, set string, max float64) ([]Member, error)
	ZRem(ctx context.Context, set string, names ...string) error
	ZScore(ctx context.Context, set, name string) (float64, bool, error)
}

// Score converts a timestamp to a sorted-set score.
func Score(t time.Time) float64 {
	return float64(t.UnixMilli())
}
