package ratelimit

import (
	"context"
	"time"
)

// Limiter caps how many requests a key may make per window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Remaining(ctx context.Context, key string) (int, error)
	Limit() int
	Window() time.Duration
	Reset(ctx context.Context, key string) (time.Time, error)
}
