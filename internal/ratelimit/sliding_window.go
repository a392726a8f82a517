package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type SlidingWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindowLimiter(redis *storage.RedisClient, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (s *SlidingWindowLimiter) redisKey(key string) string {
	return fmt.Sprintf("ratelimit:sliding:%s", key)
}

func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := s.redisKey(key)
	now := s.now()
	windowStart := now.Add(-s.window)

	// Sorted set scored by request time in nanoseconds
	pipe := s.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val() >= int64(s.limit) {
		return false, nil
	}

	// members carry a random suffix so concurrent requests in the same nanosecond both count
	member := fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString())

	pipe = s.redis.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, redisKey, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (s *SlidingWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	now := s.now()
	windowStart := now.Add(-s.window)

	count, err := s.redis.ZCount(ctx, s.redisKey(key),
		strconv.FormatInt(windowStart.UnixNano(), 10),
		strconv.FormatInt(now.UnixNano(), 10))
	if err != nil {
		return 0, err
	}

	remaining := s.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}

// Reset is when the oldest request in the window ages out
func (s *SlidingWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	oldest, err := s.redis.ZRange(ctx, s.redisKey(key), 0, 0)
	if err != nil || len(oldest) == 0 {
		return s.now(), nil
	}

	nanos, err := strconv.ParseInt(strings.SplitN(oldest[0], ":", 2)[0], 10, 64)
	if err != nil {
		return s.now(), nil
	}

	return time.Unix(0, nanos).Add(s.window), nil
}
