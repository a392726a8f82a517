package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/config"
	"github.com/aman-churiwal/tutor-gateway/internal/metrics"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/ratelimit"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TierLookup resolves the subscription tier used to pick a user's rate limit.
type TierLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RateLimitWithTier limits authenticated requests per user at their tier's
// rate and anonymous ones per client IP at the free rate. With no redis the
// middleware lets everything through.
func RateLimitWithTier(redis *storage.RedisClient, cfg *config.Config, users TierLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redis == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userTier := models.TierFree
		key := "ip:" + c.ClientIP()

		if userID, ok := UserID(c); ok {
			key = "user:" + userID.String()
			if user, err := users.GetUserByID(ctx, userID); err == nil && user != nil {
				userTier = user.SubscriptionTier
			}
		}

		limit := tier.Lookup(userTier).RequestsPerMinute
		algorithm := "fixed_window"
		if tierConfig := cfg.RateLimitTier(string(userTier)); tierConfig != nil {
			limit = tierConfig.RequestsPerMinute
			algorithm = tierConfig.Algorithm
		}

		limiter := ratelimit.NewLimiter(redis, algorithm, limit, time.Minute)

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			log.Printf("[%s] rate limit check failed: %v", c.GetString(requestIDKey), err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Rate limit check failed",
			})
			c.Abort()
			return
		}

		remaining, _ := limiter.Remaining(ctx, key)
		resetTime, _ := limiter.Reset(ctx, key)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))
		c.Header("X-RateLimit-Tier", string(userTier))

		if !allowed {
			metrics.RateLimited.WithLabelValues(string(userTier)).Inc()

			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"tier":        userTier,
				"limit":       limit,
				"retry_after": resetTime.Unix(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
