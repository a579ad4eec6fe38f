package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// revocationMargin keeps an entry past the token's own expiry so clock skew
// between issuer and verifier can never resurrect a revoked token.
const revocationMargin = 7 * 24 * time.Hour

// RevocationStore holds SHA-256 digests of revoked tokens until their
// eviction deadline. Membership checks are O(1); expired entries are
// dropped lazily on read and by the periodic sweeper.
type RevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // digest -> evict at
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{entries: make(map[string]time.Time)}
}

func (s *RevocationStore) Revoke(_ context.Context, raw string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[digest(raw)] = expiresAt.Add(revocationMargin)
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, raw string) (bool, error) {
	key := digest(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	evictAt, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(evictAt) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

// StartSweeper evicts expired entries every interval until ctx is cancelled.
func (s *RevocationStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *RevocationStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, evictAt := range s.entries {
		if now.After(evictAt) {
			delete(s.entries, key)
		}
	}
}

// digest hashes the raw token so the store never holds presentable
// credentials.
func digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
