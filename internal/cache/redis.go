package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "opencatalog:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, host string, port int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", client.Options().Addr).Dur("ttl", ttl).Msg("connected to redis")

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// ProductKey namespaces a request URL per access token, so a data-sheet
// fetched with one token is never served to a caller without it. Callers
// pass URLs with credentials already redacted; the token is only hashed.
func ProductKey(requestURL, accessToken string) string {
	scope := "public"
	if accessToken != "" {
		sum := sha256.Sum256([]byte(accessToken))
		scope = hex.EncodeToString(sum[:8])
	}
	return keyPrefix + "product:" + scope + ":" + requestURL
}

// Get decodes the JSON value stored under key into dest.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(val, dest)
}

// Set stores value as JSON with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Purge removes every product entry. SCAN is used so large caches do not
// block the server.
func (c *RedisCache) Purge(ctx context.Context) (int, error) {
	var deleted int
	iter := c.client.Scan(ctx, 0, keyPrefix+"product:*", 500).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, iter.Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
