package redisclient

import (
	"gophersignal/internal/config"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client from configuration. It returns nil when no
// address is configured.
func New(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
