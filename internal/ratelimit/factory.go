package ratelimit

import (
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/storage"
)

func NewLimiter(redis *storage.RedisClient, algorithm string, limit int, window time.Duration) Limiter {
	switch algorithm {
	case "token_bucket":
		refillRate := float64(limit) / window.Seconds()
		return NewTokenBucket(redis, limit, refillRate)
	case "sliding_window":
		return NewSlidingWindowLimiter(redis, limit, window)
	default:
		return NewFixedWindow(redis, limit, window)
	}
}
