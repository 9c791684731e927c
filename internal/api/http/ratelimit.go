package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-fixit/issue-service/internal/observability"
	apperrors "github.com/campus-fixit/issue-service/pkg/util/errorutil"
)

// RateLimitConfig configures the fixed-window throttle.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	Prefix string
}

// RateLimit counts requests per client IP and route in Redis. When Redis is
// unreachable requests are let through.
func RateLimit(client redis.UniversalClient, cfg RateLimitConfig, logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}
	windowSeconds := int64(cfg.Window / time.Second)
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	return func(c *fiber.Ctx) error {
		if client == nil || cfg.Limit <= 0 {
			return c.Next()
		}

		window := time.Now().Unix() / windowSeconds
		key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.Path(), c.IP(), window)

		ctx, cancel := context.WithTimeout(c.UserContext(), 250*time.Millisecond)
		defer cancel()

		pipe := client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, cfg.Window)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("rate limit check skipped", zap.String("path", c.Path()), zap.Error(err))
			return c.Next()
		}

		count := incr.Val()
		remaining := int64(cfg.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", fmt.Sprint(cfg.Limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprint(remaining))

		if count > int64(cfg.Limit) {
			metrics.RateLimited()
			logger.Warn("rate limit exceeded", zap.String("ip", c.IP()), zap.String("path", c.Path()), zap.Int64("count", count))
			c.Set(fiber.HeaderRetryAfter, fmt.Sprint(windowSeconds))
			return apperrors.NewTooManyRequests("too many requests, please try again later")
		}
		return c.Next()
	}
}
