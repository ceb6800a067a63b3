package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tuncrm/crm-api/internal/config"
)

const (
	redisKeyPrefix = "tuncrm:cache:"
	// redisIndexKey is a set of every live cache key, used for prefix deletes
	redisIndexKey = "tuncrm:cache-index"

	fieldValue    = "v"
	fieldDeadline = "d"
)

// RedisCache stores each entry as a hash of its value and absolute deadline,
// with the key's TTL carrying the sliding window.
type RedisCache struct {
	client redis.Cmdable
	expiry Expiry
	now    func() time.Time
}

func NewRedisCache(client redis.Cmdable, expiry Expiry) *RedisCache {
	return &RedisCache{client: client, expiry: expiry, now: time.Now}
}

// DialRedis connects and pings before returning
func DialRedis(ctx context.Context, cfg *config.RedisConfig, expiry Expiry) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisCache(client, expiry), nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	k := redisKeyPrefix + key
	fields, err := r.client.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, false, err
	}
	raw, ok := fields[fieldValue]
	if !ok {
		return nil, false, nil
	}

	deadlineMs, err := strconv.ParseInt(fields[fieldDeadline], 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}

	now := r.now()
	deadline := time.UnixMilli(deadlineMs)
	ttl := r.expiry.next(now, deadline).Sub(now)
	if ttl <= 0 {
		return nil, false, r.client.Del(ctx, k).Err()
	}
	if err := r.client.PExpire(ctx, k, ttl).Err(); err != nil {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	k := redisKeyPrefix + key
	now := r.now()
	deadline := now.Add(r.expiry.Absolute)

	if err := r.client.HSet(ctx, k, fieldValue, string(value), fieldDeadline, deadline.UnixMilli()).Err(); err != nil {
		return err
	}
	if err := r.client.PExpire(ctx, k, r.expiry.next(now, deadline).Sub(now)).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, redisIndexKey, key).Err()
}

// DeletePrefix removes every indexed key starting with prefix
func (r *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return err
	}

	var stored []string
	var members []interface{}
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			stored = append(stored, redisKeyPrefix+key)
			members = append(members, key)
		}
	}
	if len(stored) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, stored...).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, redisIndexKey, members...).Err()
}
