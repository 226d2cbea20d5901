package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is the networked Cache backend, shared across nodes and surviving
// restarts. Values travel as JSON so enums and nested detail maps round-trip
// losslessly. Backend errors degrade to miss/no-op per the Cache contract.
type Redis struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	hits       int64
	misses     int64
}

// NewRedis connects to a Redis server and verifies the connection with a
// ping. The caller decides the fallback when the ping fails.
func NewRedis(addr, password string, db int, defaultTTL time.Duration) (*Redis, error) {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{
		client:     client,
		prefix:     "marketlens:",
		defaultTTL: defaultTTL,
	}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dest any) bool {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[WARN] redis get %q: %v", key, err)
		}
		atomic.AddInt64(&r.misses, 1)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[WARN] redis decode %q: %v", key, err)
		atomic.AddInt64(&r.misses, 1)
		return false
	}
	atomic.AddInt64(&r.hits, 1)
	return true
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[WARN] redis encode %q: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		log.Printf("[WARN] redis set %q: %v", key, err)
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		log.Printf("[WARN] redis delete %q: %v", key, err)
	}
}

func (r *Redis) ClearPattern(ctx context.Context, substr string) int {
	match := r.prefix + "*" + substr + "*"
	removed := 0
	iter := r.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("[WARN] redis clear %q: %v", iter.Val(), err)
			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		log.Printf("[WARN] redis scan %q: %v", match, err)
	}
	return removed
}

func (r *Redis) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entries := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		entries++
	}
	if err := iter.Err(); err != nil {
		log.Printf("[WARN] redis stats scan: %v", err)
	}

	hits := atomic.LoadInt64(&r.hits)
	misses := atomic.LoadInt64(&r.misses)
	return Stats{
		Backend: "redis",
		Entries: entries,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
		Memory:  "n/a",
	}
}

func (r *Redis) Close() error { return r.client.Close() }
