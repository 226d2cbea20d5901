package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

type memoryEntry struct {
	data      []byte
	createdAt time.Time
	expiresAt time.Time
}

// Memory is the in-process Cache backend. Entries are JSON snapshots with
// per-entry expiry, evicted lazily on access. Single node only; contents
// are lost on restart.
type Memory struct {
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
	hits    int64
	misses  int64
	now     func() time.Time
}

// NewMemory creates a Memory cache. A non-positive defaultTTL falls back to
// DefaultTTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Memory{
		defaultTTL: defaultTTL,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		m.misses++
		return false
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		m.misses++
		return false
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		log.Printf("[WARN] memory cache decode %q: %v", key, err)
		delete(m.entries, key)
		m.misses++
		return false
	}
	m.hits++
	return true
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[WARN] memory cache encode %q: %v", key, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.entries[key] = memoryEntry{
		data:      data,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) ClearPattern(_ context.Context, substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.Contains(key, substr) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bytes int64
	for key, entry := range m.entries {
		bytes += int64(len(key) + len(entry.data))
	}
	return Stats{
		Backend:     "memory",
		Entries:     len(m.entries),
		Hits:        m.hits,
		Misses:      m.misses,
		HitRate:     hitRate(m.hits, m.misses),
		MemoryBytes: bytes,
		Memory:      humanize.Bytes(uint64(bytes)),
	}
}

func (m *Memory) Close() error { return nil }
