package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease lock shared by every instance pointed at the same Redis.
// A holder that outlives the TTL loses the lease.
type Redis struct {
	client *redis.Client
	log    *logger.Logger
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

func NewRedis(client *redis.Client, baseLog *logger.Logger, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "medsupply:lock:"
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Redis{
		client: client,
		log:    baseLog.With("component", "RedisKeyLock"),
		prefix: prefix,
		ttl:    ttl,
		poll:   100 * time.Millisecond,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("redis keylock not configured")
	}
	redisKey := r.prefix + key
	token := uuid.NewString()
	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", redisKey, err)
		}
		if ok {
			break
		}
		t := time.NewTimer(r.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release must outlive a cancelled caller context.
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, r.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				r.log.Warn("release lock failed", "key", redisKey, "error", err)
			}
		})
	}, nil
}
