package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"Mnemo/pkg/util"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "mnemo:cognitive_state:"

// CachedProvider layers an in-process LRU and an optional shared Redis cache
// over another Provider. Cognitive state is read on every memory write, so
// the hot path should almost never touch MySQL.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client // optional; nil disables the shared cache layer
	lru   *util.LRUCache[string, int]
	ttl   time.Duration
}

// NewCachedProvider wraps inner with caching. rdb may be nil.
func NewCachedProvider(inner Provider, rdb *redis.Client, cacheSize int, ttl time.Duration) (*CachedProvider, error) {
	lru, err := util.NewLRU[string, int](cacheSize, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &CachedProvider{inner: inner, rdb: rdb, lru: lru, ttl: ttl}, nil
}

// CognitiveState checks the LRU, then Redis, then the inner provider.
// Cache failures fall through silently; only the inner provider's error is
// authoritative.
func (p *CachedProvider) CognitiveState(ctx context.Context, userID string) (int, error) {
	if state, ok := p.lru.Get(userID); ok {
		return state, nil
	}

	if p.rdb != nil {
		if val, err := p.rdb.Get(ctx, redisKeyPrefix+userID).Result(); err == nil {
			if state, err := strconv.Atoi(val); err == nil {
				p.lru.Set(userID, state)
				return state, nil
			}
		}
	}

	state, err := p.inner.CognitiveState(ctx, userID)
	if err != nil {
		return 0, err
	}

	p.lru.Set(userID, state)
	if p.rdb != nil {
		// Best effort; a cache write failure must not fail the lookup.
		p.rdb.Set(ctx, redisKeyPrefix+userID, strconv.Itoa(state), p.ttl)
	}
	return state, nil
}

// Invalidate drops a user's cached score, for callers that just updated the
// profile.
func (p *CachedProvider) Invalidate(ctx context.Context, userID string) {
	p.lru.Remove(userID)
	if p.rdb != nil {
		p.rdb.Del(ctx, redisKeyPrefix+userID)
	}
}
