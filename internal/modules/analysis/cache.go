package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultSelection is used when the client sends no page selection.
const DefaultSelection = "all"

// Key is hex(sha256(document)) + "-" + selection.
func Key(document []byte, selection string) string {
	sum := sha256.Sum256(document)
	return hex.EncodeToString(sum[:]) + "-" + selection
}

// Stats describes the analysis cache at one point in time.
type Stats struct {
	Entries    int     `json:"entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Evictions  int64   `json:"evictions"`
	HitRate    float64 `json:"hitRate"`
	MaxEntries int     `json:"maxEntries"`
	TTL        string  `json:"ttl"`
	Backend    string  `json:"backend"`
}

// Cache memoises analyses in a Store. Concurrent misses on one key share a
// single computation.
type Cache struct {
	store      Store
	backend    string
	maxEntries int
	ttl        time.Duration
	group      singleflight.Group
	logger     *zap.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewCache wraps store. maxEntries and ttl are reported in Stats only; the
// store enforces them.
func NewCache(store Store, backend string, maxEntries int, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:      store,
		backend:    backend,
		maxEntries: maxEntries,
		ttl:        ttl,
		logger:     logger.Named("AnalysisCache"),
	}
}

// GetOrCompute returns the entry under key, running compute on a miss. The
// bool reports a hit. Failed computations are not stored.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*Entry, error)) (*Entry, bool, error) {
	if entry, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)
		return entry, true, nil
	}

	computed := false
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A flight that finished between our lookup and Do may have stored it.
		if entry, ok := c.lookup(ctx, key); ok {
			return entry, nil
		}
		computed = true
		entry, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		evicted, err := c.store.Put(ctx, key, entry)
		if err != nil {
			c.logger.Warn("failed to store analysis", zap.String("key", key), zap.Error(err))
		}
		c.evictions.Add(int64(evicted))
		return entry, nil
	})

	if computed {
		c.misses.Add(1)
	}
	if err != nil {
		return nil, false, err
	}
	if !computed {
		c.hits.Add(1)
	}
	return v.(*Entry), !computed, nil
}

func (c *Cache) lookup(ctx context.Context, key string) (*Entry, bool) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("analysis cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return entry, ok
}

func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	n, err := c.store.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{
		Entries:    n,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
		MaxEntries: c.maxEntries,
		TTL:        c.ttl.String(),
		Backend:    c.backend,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s, nil
}

// Clear empties the store and resets the counters.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	return nil
}

// Sweep drops expired entries.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	n, err := c.store.Sweep(ctx)
	if n > 0 {
		c.evictions.Add(int64(n))
	}
	return n, err
}
