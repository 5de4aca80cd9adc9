package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resqlink/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis     *redis.Client
	Requests  int           // Number of requests allowed
	Window    time.Duration // Time window
	KeyPrefix string        // Redis key prefix
}

// RateLimiter is a Redis-backed sliding window limiter keyed on the
// authenticated user, or the client IP for anonymous requests.
type RateLimiter struct {
	config RateLimitConfig
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	return &RateLimiter{config: config}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Redis == nil {
			c.Next()
			return
		}

		key := rl.key(c)

		allowed, remaining, resetTime, err := rl.check(c.Request.Context(), key)
		if err != nil {
			// Rate limiting is protective, not load bearing. Let the request
			// through when Redis is unreachable.
			logrus.Errorf("Rate limit check failed: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			utils.RateLimitResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// check runs the sliding window log algorithm on a Redis sorted set.
func (rl *RateLimiter) check(ctx context.Context, key string) (allowed bool, remaining int, resetTime time.Time, err error) {
	now := time.Now()
	window := rl.config.Window

	pipe := rl.config.Redis.Pipeline()

	expiredBefore := now.Add(-window).UnixNano()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", expiredBefore))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, key, window+time.Minute)

	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	currentCount := countCmd.Val()
	allowed = currentCount < int64(rl.config.Requests)

	remaining = rl.config.Requests - int(currentCount) - 1
	if remaining < 0 {
		remaining = 0
	}
	resetTime = now.Add(window)

	if !allowed {
		rl.config.Redis.ZRem(ctx, key, fmt.Sprintf("%d", now.UnixNano()))
	}

	return allowed, remaining, resetTime, nil
}

func (rl *RateLimiter) key(c *gin.Context) string {
	if userID := c.GetString(ContextUserID); userID != "" {
		return fmt.Sprintf("%s:user:%s", rl.config.KeyPrefix, userID)
	}
	return fmt.Sprintf("%s:ip:%s", rl.config.KeyPrefix, c.ClientIP())
}
