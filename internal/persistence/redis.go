package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// GetString fetches a cached value. Returns ok=false on miss or when the
// client is unavailable so callers can fall through to the source of truth.
func (r *Redis) GetString(ctx context.Context, key string) (string, bool) {
	if r == nil || r.Client == nil {
		return "", false
	}
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetString stores a value with TTL, best effort.
func (r *Redis) SetString(ctx context.Context, key, value string, ttl time.Duration) {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Set(ctx, key, value, ttl).Err()
}
