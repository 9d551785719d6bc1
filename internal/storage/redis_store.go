package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caches fetched article bodies and holds the run lock.
type RedisStore struct {
	rdb        *redis.Client
	contentTTL time.Duration
	lockTTL    time.Duration
}

// NewRedisStore creates a store. A non-positive contentTTL disables content caching.
func NewRedisStore(rdb *redis.Client, contentTTL, lockTTL time.Duration) *RedisStore {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Hour
	}
	return &RedisStore{rdb: rdb, contentTTL: contentTTL, lockTTL: lockTTL}
}

func contentKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return fmt.Sprintf("gophersignal:content:%s", hex.EncodeToString(sum[:]))
}

func lockKey(name string) string {
	return fmt.Sprintf("gophersignal:lock:%s", name)
}

// GetContent returns the cached body for url.
func (s *RedisStore) GetContent(ctx context.Context, url string) (string, bool, error) {
	if s.contentTTL <= 0 {
		return "", false, nil
	}
	res, err := s.rdb.Get(ctx, contentKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return res, true, nil
}

// SetContent caches body for url.
func (s *RedisStore) SetContent(ctx context.Context, url, body string) error {
	if s.contentTTL <= 0 || body == "" {
		return nil
	}
	return s.rdb.Set(ctx, contentKey(url), body, s.contentTTL).Err()
}

// AcquireRunLock takes the named lock for owner. It reports false when
// another owner holds it.
func (s *RedisStore) AcquireRunLock(ctx context.Context, name, owner string) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(name), owner, s.lockTTL).Result()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// ReleaseRunLock drops the lock if owner still holds it.
func (s *RedisStore) ReleaseRunLock(ctx context.Context, name, owner string) error {
	return releaseScript.Run(ctx, s.rdb, []string{lockKey(name)}, owner).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
