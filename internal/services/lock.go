package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes submissions that target the same video id.
type Locker interface {
	// Acquire returns ok=false when another holder owns the lock.
	Acquire(ctx context.Context, videoID string) (release func(), ok bool, err error)
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, videoID string) (func(), bool, error) {
	key := fmt.Sprintf("submission_lock:%s", videoID)
	token := uuid.NewString()

	locked, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !locked {
		return nil, false, nil
	}

	release := func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			log.Printf("failed to release lock %s: %v", key, err)
		}
	}
	return release, true, nil
}
