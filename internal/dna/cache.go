package dna

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// cacheKeyPrefix namespaces fingerprint keys in a shared Redis.
const cacheKeyPrefix = "quantum:dna:"

// Cache stores converted fingerprints keyed by normalised team name.
// Implementations own the key, codec and TTL discipline; callers only
// ever see TeamDNA values.
type Cache interface {
	Get(team string) (*TeamDNA, bool)
	Put(team string, d *TeamDNA)
}

type memoryCache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memoryEntry
}

type memoryEntry struct {
	d   TeamDNA
	exp time.Time
}

// NewMemoryCache returns an in-process fingerprint cache. A ttl of zero
// keeps entries for the life of the process.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{ttl: ttl, m: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(team string) (*TeamDNA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[NormalizeName(team)]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		return nil, false
	}
	d := e.d
	return &d, true
}

func (c *memoryCache) Put(team string, d *TeamDNA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{d: *d}
	if c.ttl > 0 {
		e.exp = time.Now().Add(c.ttl)
	}
	c.m[NormalizeName(team)] = e
}

type redisCache struct {
	r   *redis.Client
	ttl time.Duration
}

// NewRedisCache shares fingerprints across processes as JSON blobs under
// cacheKeyPrefix. Redis errors read as misses; the loader falls through
// to its sources.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{r: client, ttl: ttl}
}

func (c *redisCache) Get(team string) (*TeamDNA, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	raw, err := c.r.Get(ctx, cacheKeyPrefix+NormalizeName(team)).Bytes()
	if err != nil {
		return nil, false
	}
	var d TeamDNA
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, false
	}
	return &d, true
}

func (c *redisCache) Put(team string, d *TeamDNA) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.r.Set(ctx, cacheKeyPrefix+NormalizeName(team), raw, c.ttl).Err()
}
