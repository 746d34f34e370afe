package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemStore is an in-memory Store with key expiry. Used by tests and by
// store-less development runs; state does not survive a restart.
type MemStore struct {
	mu   sync.RWMutex
	keys map[string]memEntry
	sets map[string]map[string]float64
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	s := &MemStore{
		keys: make(map[string]memEntry),
		sets: make(map[string]map[string]float64),
	}

	// Periodically drop expired entries so the map doesn't grow unbounded.
	go s.cleanupExpired()

	return s
}

func (s *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.keys[key]
	if !ok || entry.expired(time.Now()) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.keys[key] = entry
	return nil
}

func (s *MemStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, key)
	return nil
}

func (s *MemStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *MemStore) ZAdd(ctx context.Context, set string, members ...Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.sets[set]
	if !ok {
		m = make(map[string]float64)
		s.sets[set] = m
	}
	for _, member := range members {
		m[member.Name] = member.Score
	}
	return nil
}

func (s *MemStore) ZRangeByScore(ctx context.Context, set string, max float64) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []Member
	for name, score := range s.sets[set] {
		if score <= max {
			members = append(members, Member{Name: name, Score: score})
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score < members[j].Score
		}
		return members[i].Name < members[j].Name
	})
	return members, nil
}

func (s *MemStore) ZRem(ctx context.Context, set string, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.sets[set]
	for _, name := range names {
		delete(m, name)
	}
	return nil
}

func (s *MemStore) ZScore(ctx context.Context, set, name string) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.sets[set][name]
	return score, ok, nil
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (s *MemStore) cleanupExpired() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, entry := range s.keys {
			if entry.expired(now) {
				delete(s.keys, key)
			}
		}
		s.mu.Unlock()
	}
}
