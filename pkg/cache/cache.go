// Package cache wraps Redis as a JSON value cache.
//
// The sync engine caches lookup tables here so a burst of product edits
// does not reload special_effects, sizes, … for every run:
//
//	rdb, err := cache.Connect()
//	c := cache.New(rdb)
//	c.Set(ctx, "lookup:sizes", table, 5*time.Minute)
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/ordersync/config"
)

// RDB is the shared client, set by Connect. The redis queue driver uses it too.
var RDB *redis.Client

// Connect initialises the Redis client and verifies the connection with a ping.
// Returns an error so the caller can react (log warning, fall back, or abort).
func Connect() (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = rdb
	return rdb, nil
}

// Redis is a JSON cache on top of a redis client. A nil *Redis or nil
// client behaves as an always-missing cache.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, prefix: "ordersync:"}
}

// Get unmarshals the cached value into dest. Returns true on a hit, false
// on miss or error.
func (c *Redis) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(val, dest) == nil
}

// Set stores value under key for the given TTL.
func (c *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	return c.rdb.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Del removes one or more keys.
func (c *Redis) Del(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.rdb.Del(ctx, full...).Err()
}
