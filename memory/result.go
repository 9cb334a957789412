package memory

import (
	"context"
	"time"

	"github.com/fwojciec/docqa"
)

// PutResult stores value under key until ttl elapses.
func (s *Store) PutResult(_ context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return docqa.Errorf(docqa.EINVALID, "result key required")
	}
	if ttl <= 0 {
		return docqa.Errorf(docqa.EINVALID, "result TTL must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = docqa.ResultEntry{Key: key, Value: value, ExpiresAt: s.now().Add(ttl)}
	return nil
}

// GetResult returns the value stored under key. Expired entries are removed
// on read.
func (s *Store) GetResult(_ context.Context, key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.results[key]
	if !ok {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "result %s not found", key)
	}
	if !s.now().Before(entry.ExpiresAt) {
		delete(s.results, key)
		return nil, docqa.Errorf(docqa.ENOTFOUND, "result %s expired", key)
	}
	return entry.Value, nil
}

// DeleteExpiredResults removes every expired entry.
func (s *Store) DeleteExpiredResults(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for key, entry := range s.results {
		if !now.Before(entry.ExpiresAt) {
			delete(s.results, key)
			n++
		}
	}
	return n, nil
}
