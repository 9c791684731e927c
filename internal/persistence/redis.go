package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-fixit/issue-service/internal/config"
)

const redisPingTimeout = time.Second

// Redis holds the client behind the auth throttle. REDIS_ADDR may list
// several comma separated addresses for a cluster.
type Redis struct {
	Client redis.UniversalClient
}

// NewRedis builds a client. An unreachable server is only logged: the
// throttle fails open and readiness marks redis as optional.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    redisAddrs(cfg.Addr),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	r := &Redis{Client: client}
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unreachable; auth throttling disabled until it recovers", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.Strings("addrs", redisAddrs(cfg.Addr)))
	}
	return r
}

func redisAddrs(addr string) []string {
	var addrs []string
	for _, a := range strings.Split(addr, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies connectivity within a short bound.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}
