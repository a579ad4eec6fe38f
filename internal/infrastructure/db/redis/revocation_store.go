package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

// revocationMargin extends the entry's TTL past the token's own expiry so a
// revoked token can never outlive its blacklist entry.
const revocationMargin = 7 * 24 * time.Hour

// RevocationStore records revoked tokens in Redis, keyed by SHA-256 digest
// so raw credentials are never stored. Eviction is native TTL.
// Key format: revoked:<sha256_hex>
type RevocationStore struct {
	client *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Revoke(ctx context.Context, raw string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt.Add(revocationMargin))
	if ttl <= 0 {
		return nil // already past eviction time, nothing to record
	}
	if err := s.client.Set(ctx, s.key(raw), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: revocation write: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, raw string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(raw)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: revocation check: %v", domain.ErrPersistenceUnavailable, err)
	}
	return n > 0, nil
}

func (s *RevocationStore) key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "revoked:" + hex.EncodeToString(sum[:])
}
