package service

import (
	"context"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/storage"
)

// RedisDenylist stores revoked token ids in redis with the token's remaining lifetime.
type RedisDenylist struct {
	redis *storage.RedisClient
}

func NewRedisDenylist(redis *storage.RedisClient) *RedisDenylist {
	return &RedisDenylist{redis: redis}
}

func (d *RedisDenylist) key(tokenID string) string {
	return "auth:revoked:" + tokenID
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return d.redis.Set(ctx, d.key(tokenID), "1", ttl)
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return d.redis.Exists(ctx, d.key(tokenID))
}
