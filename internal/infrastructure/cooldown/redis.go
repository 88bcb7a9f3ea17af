package cooldown

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists rate-limit cooldowns in Redis so a benched source stays
// benched across process restarts and across the api/fetcher binaries.
type Store struct {
	Client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{Client: client}
}

func (s *Store) OnCooldown(ctx context.Context, sourceID string) (bool, error) {
	n, err := s.Client.Exists(ctx, key(sourceID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) RecordRateLimit(ctx context.Context, sourceID string, window time.Duration) error {
	return s.Client.Set(ctx, key(sourceID), "1", window).Err()
}

func key(sourceID string) string { return "cooldown:" + sourceID }
