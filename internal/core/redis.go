// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ucsd-tech/sigi-backend/internal/config"
)

const redisPingTimeout = 5 * time.Second

type Redis struct {
	Client *redis.Client
}

// NewRedis connects the shared client backing the rate limiter and the
// readiness probe. The connection identifies itself as
// "<app>-<environment>" so instances are tellable apart in CLIENT LIST.
func NewRedis(
	ctx context.Context,
	cfg config.RedisConfig,
	appCfg config.AppConfig,
) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.ClientName = clientName(appCfg)
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

// clientName sanitizes the app identity for CLIENT SETNAME, which
// rejects spaces.
func clientName(appCfg config.AppConfig) string {
	name := appCfg.Name
	if name == "" {
		name = "sigi-backend"
	}
	id := name
	if appCfg.Environment != "" {
		id += "-" + appCfg.Environment
	}
	return strings.ReplaceAll(id, " ", "-")
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}
