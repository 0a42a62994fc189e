package reminders

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultDedupMax = 20000
	DefaultDedupTTL = 26 * time.Hour
)

// DedupStore marks a delivery key and reports whether it was already marked.
type DedupStore interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// MemoryDedup is process-local. Once it holds max keys it is cleared wholesale.
type MemoryDedup struct {
	mu   sync.Mutex
	max  int
	keys map[string]struct{}
}

func NewMemoryDedup(max int) *MemoryDedup {
	if max <= 0 {
		max = DefaultDedupMax
	}
	return &MemoryDedup{max: max, keys: make(map[string]struct{})}
}

func (m *MemoryDedup) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return true, nil
	}
	if len(m.keys) >= m.max {
		m.keys = make(map[string]struct{})
	}
	m.keys[key] = struct{}{}
	return false, nil
}

func (m *MemoryDedup) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// RedisDedup shares delivery keys across dispatcher instances.
type RedisDedup struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisDedup(rdb goredis.UniversalClient, prefix string, ttl time.Duration) *RedisDedup {
	if prefix == "" {
		prefix = "mentor:reminder:"
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &RedisDedup{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisDedup) Seen(ctx context.Context, key string) (bool, error) {
	set, err := r.rdb.SetNX(ctx, r.prefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}
