package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL applies when a Set is issued with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// Cache is a TTL key-value store for computed market views. Backend errors
// never surface: a failed read counts as a miss, a failed write is a no-op,
// so a cache outage can slow requests but not fail them. Values are stored
// as JSON snapshots; what comes out is always a copy of what went in.
type Cache interface {
	// Get loads the value for key into dest and reports whether it was
	// present and unexpired.
	Get(ctx context.Context, key string, dest any) bool
	// Set stores value under key. A non-positive ttl means DefaultTTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// ClearPattern deletes every key containing substr and returns the
	// number of entries removed.
	ClearPattern(ctx context.Context, substr string) int
	Stats() Stats
	Close() error
}

// Stats describes cache effectiveness since process start.
type Stats struct {
	Backend     string  `json:"backend"`
	Entries     int     `json:"entries"`
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
	MemoryBytes int64   `json:"memory_bytes"`
	Memory      string  `json:"memory"`
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	rate := float64(hits) / float64(total) * 100
	return float64(int(rate*100+0.5)) / 100
}

// Key builds a deterministic cache key from a logical method name and its
// ordered arguments. Identical requests always collide; distinct ones never
// do as long as arguments stringify distinctly.
func Key(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, "|")
}
