// internal/service/narrative_cache.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
)

// ErrCacheMiss is returned when neither tier holds the key.
var ErrCacheMiss = errors.New("cache miss")

// KV is the redis surface the cache needs. A nil KV disables the shared tier.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NarrativeCache keeps generated reports in memory first and redis second.
type NarrativeCache struct {
	redis    KV
	logger   *zap.Logger
	memCache *MemoryCache
	ttl      time.Duration
}

type MemoryCache struct {
	mu     sync.RWMutex
	data   map[string]*CacheEntry
	maxAge time.Duration
	stop   chan struct{}
	once   sync.Once
}

type CacheEntry struct {
	Text     string
	CachedAt time.Time
}

func NewNarrativeCache(kv KV, ttl time.Duration, logger *zap.Logger) *NarrativeCache {
	memAge := ttl
	if memAge > 10*time.Minute {
		memAge = 10 * time.Minute
	}
	return &NarrativeCache{
		redis:    kv,
		logger:   logger,
		memCache: NewMemoryCache(memAge),
		ttl:      ttl,
	}
}

func NewMemoryCache(maxAge time.Duration) *MemoryCache {
	cache := &MemoryCache{
		data:   make(map[string]*CacheEntry),
		maxAge: maxAge,
		stop:   make(chan struct{}),
	}
	go cache.cleanup()
	return cache
}

func (nc *NarrativeCache) Get(ctx context.Context, flagID string, version int) (string, error) {
	key := narrativeKey(flagID, version)

	if text, ok := nc.memCache.Get(key); ok {
		metrics.NarrativeCache.WithLabelValues("memory", "hit").Inc()
		return text, nil
	}
	if nc.redis != nil {
		text, err := nc.redis.Get(ctx, key)
		if err == nil {
			metrics.NarrativeCache.WithLabelValues("redis", "hit").Inc()
			nc.memCache.Set(key, text)
			return text, nil
		}
		nc.logger.Debug("narrative redis lookup missed",
			zap.String("key", key),
			zap.Error(err))
	}
	metrics.NarrativeCache.WithLabelValues("all", "miss").Inc()
	return "", ErrCacheMiss
}

// Set stores in both tiers. A redis failure is logged and returned, but the
// memory tier is already populated.
func (nc *NarrativeCache) Set(ctx context.Context, flagID string, version int, text string) error {
	key := narrativeKey(flagID, version)
	nc.memCache.Set(key, text)

	if nc.redis == nil {
		return nil
	}
	if err := nc.redis.Set(ctx, key, text, nc.ttl); err != nil {
		nc.logger.Error("failed to cache narrative in redis",
			zap.Error(err),
			zap.String("key", key))
		return err
	}
	return nil
}

func (nc *NarrativeCache) Delete(ctx context.Context, flagID string, version int) error {
	key := narrativeKey(flagID, version)
	nc.memCache.Delete(key)
	if nc.redis == nil {
		return nil
	}
	return nc.redis.Delete(ctx, key)
}

func (nc *NarrativeCache) Close() {
	nc.memCache.Close()
}

func narrativeKey(flagID string, version int) string {
	return fmt.Sprintf("narrative:%s:%d", flagID, version)
}

func (mc *MemoryCache) Get(key string) (string, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	entry, exists := mc.data[key]
	if !exists || time.Since(entry.CachedAt) > mc.maxAge {
		return "", false
	}
	return entry.Text, true
}

func (mc *MemoryCache) Set(key, text string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.data[key] = &CacheEntry{Text: text, CachedAt: time.Now()}
}

func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.data, key)
}

func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.data)
}

func (mc *MemoryCache) Close() {
	mc.once.Do(func() { close(mc.stop) })
}

// cleanup periodically removes expired entries
func (mc *MemoryCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-mc.stop:
			return
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			for key, entry := range mc.data {
				if now.Sub(entry.CachedAt) > mc.maxAge {
					delete(mc.data, key)
				}
			}
			mc.mu.Unlock()
		}
	}
}
