// Package transcache is the client-side translation cache: a bounded,
// time-limited mapping from (text, target language) to a translation
// result, persisted as one JSON document in a Storage.
package transcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/legalai/core/internal/pkg/apperr"
)

const (
	// StorageKey is the single item the mapping is persisted under.
	StorageKey = "translation_cache"
	MaxEntries = 50
	Expiry     = 24 * time.Hour
)

// Result is a translation as returned by the translate endpoint.
type Result struct {
	OriginalText     string `json:"originalText"`
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage string `json:"detectedLanguage"`
	TargetLanguage   string `json:"targetLanguage"`
}

// Entry is one persisted value. Timestamp is Unix milliseconds.
type Entry struct {
	Data      Result `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Stats are per-instance counters; they are not persisted.
type Stats struct {
	Hits          int        `json:"hits"`
	Misses        int        `json:"misses"`
	TotalRequests int        `json:"totalRequests"`
	HitRate       float64    `json:"hitRate"`
	CacheSize     int        `json:"cacheSize"`
	LastCleanup   *time.Time `json:"lastCleanup,omitempty"`
}

type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimits overrides MaxEntries and Expiry. Non-positive values keep the default.
func WithLimits(maxEntries int, expiry time.Duration) Option {
	return func(c *Cache) {
		if maxEntries > 0 {
			c.maxEntries = maxEntries
		}
		if expiry > 0 {
			c.expiry = expiry
		}
	}
}

// Cache is safe for use by several goroutines of one process. Separate
// processes sharing a Storage may lose each other's writes.
type Cache struct {
	mu         sync.Mutex
	store      Storage
	logger     *zap.Logger
	now        func() time.Time
	maxEntries int
	expiry     time.Duration

	hits        int
	misses      int
	lastCleanup *time.Time
	lastIssued  int64
}

// maxStampLead bounds how far ahead of the clock a tie-broken timestamp may run.
const maxStampLead = int64(time.Second / time.Millisecond)

var errCorrupt = errors.New("translation cache data is corrupt")

func New(store Storage, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		logger:     zap.NewNop(),
		now:        time.Now,
		maxEntries: MaxEntries,
		expiry:     Expiry,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("TranslationCache")
	return c
}

// Get runs the prune pass and looks up (text, lang), counting the outcome.
func (c *Cache) Get(ctx context.Context, text, lang string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, _ := c.load(ctx)
	entry, ok := entries[CacheKey(text, lang)]
	c.recordLookup(ok)
	if !ok {
		return Result{}, false
	}
	return entry.Data, true
}

// Put stores result for (text, lang). When the write fails the oldest entry
// is dropped and the write retried once; a StorageError is returned only if
// that also fails. Nothing is written when the stored mapping cannot be read.
func (c *Cache) Put(ctx context.Context, text, lang string, result Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load(ctx)
	if err != nil {
		return apperr.Storage("Failed to save translation to cache", err)
	}
	entries[CacheKey(text, lang)] = Entry{Data: result, Timestamp: c.nextTimestamp()}

	err = c.persist(ctx, entries)
	if err == nil {
		return nil
	}
	c.logger.Warn("failed to save translation, evicting oldest entry", zap.Error(err))

	if oldest, ok := oldestKey(entries); ok {
		delete(entries, oldest)
	}
	if retryErr := c.persist(ctx, entries); retryErr != nil {
		c.logger.Error("translation cache write failed after eviction", zap.Error(retryErr))
		return apperr.Storage("Failed to save translation to cache", retryErr)
	}
	return nil
}

// RecordLookup counts a hit or a miss.
func (c *Cache) RecordLookup(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordLookup(hit)
}

func (c *Cache) recordLookup(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Stats returns the counters plus the size of the persisted mapping.
func (c *Cache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := 0
	if entries, err := c.read(ctx); err == nil {
		size = len(entries)
	}
	total := c.hits + c.misses
	s := Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		TotalRequests: total,
		CacheSize:     size,
		LastCleanup:   c.lastCleanup,
	}
	if total > 0 {
		s.HitRate = float64(c.hits) / float64(total) * 100
	}
	return s
}

func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetStats()
}

func (c *Cache) resetStats() {
	c.hits, c.misses = 0, 0
	c.lastCleanup = nil
}

// Clear removes the persisted mapping and resets the counters.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetStats()
	if err := c.store.RemoveItem(ctx, StorageKey); err != nil {
		return apperr.Storage("Failed to clear translation cache", err)
	}
	return nil
}

// Inspect returns the raw persisted mapping without pruning it, or nil when
// nothing is stored. Corrupt data is logged and removed.
func (c *Cache) Inspect(ctx context.Context) map[string]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := c.read(ctx)
	if err != nil {
		c.readFailed(ctx, err)
		return nil
	}
	return entries
}

// read decodes the persisted mapping. A missing item is (nil, nil). Data
// that does not decode is reported as errCorrupt.
func (c *Cache) read(ctx context.Context) (map[string]Entry, error) {
	raw, ok, err := c.store.GetItem(ctx, StorageKey)
	if err != nil || !ok {
		return nil, err
	}
	var entries map[string]Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return entries, nil
}

// load reads the mapping and runs the prune pass, writing the result back
// when entries were dropped. Corrupt data is cleared and reads as empty. A
// failed read also yields an empty mapping, along with the error, and leaves
// storage untouched.
func (c *Cache) load(ctx context.Context) (map[string]Entry, error) {
	entries, err := c.read(ctx)
	if err != nil {
		if c.readFailed(ctx, err) {
			return map[string]Entry{}, nil
		}
		return map[string]Entry{}, err
	}
	if entries == nil {
		return map[string]Entry{}, nil
	}

	pruned := c.prune(entries)
	if len(pruned) != len(entries) {
		now := c.now()
		c.lastCleanup = &now
		if err := c.persist(ctx, pruned); err != nil {
			c.logger.Warn("failed to write back pruned translation cache", zap.Error(err))
		}
	}
	return pruned, nil
}

// readFailed logs a failed read and removes the item only when its data is
// corrupt. It reports whether the item was discarded.
func (c *Cache) readFailed(ctx context.Context, cause error) bool {
	if !errors.Is(cause, errCorrupt) {
		c.logger.Warn("translation cache unavailable", zap.Error(cause))
		return false
	}
	c.logger.Warn("translation cache corrupt, clearing", zap.Error(cause))
	if err := c.store.RemoveItem(ctx, StorageKey); err != nil {
		c.logger.Warn("failed to remove corrupt translation cache", zap.Error(err))
	}
	return true
}

type keyedEntry struct {
	key   string
	entry Entry
}

// prune drops expired entries and keeps the newest maxEntries.
func (c *Cache) prune(entries map[string]Entry) map[string]Entry {
	now := c.now().UnixMilli()
	maxAge := c.expiry.Milliseconds()

	live := make([]keyedEntry, 0, len(entries))
	for k, e := range entries {
		if now-e.Timestamp >= maxAge {
			continue
		}
		live = append(live, keyedEntry{k, e})
	}
	sortOldestFirst(live)
	if len(live) > c.maxEntries {
		live = live[len(live)-c.maxEntries:]
	}

	out := make(map[string]Entry, len(live))
	for _, ke := range live {
		out[ke.key] = ke.entry
	}
	return out
}

func (c *Cache) persist(ctx context.Context, entries map[string]Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.store.SetItem(ctx, StorageKey, string(b))
}

// nextTimestamp is now in milliseconds. Within one millisecond this
// instance's stamps keep increasing, but never more than maxStampLead ahead
// of the clock.
func (c *Cache) nextTimestamp() int64 {
	now := c.now().UnixMilli()
	ts := now
	if c.lastIssued >= ts {
		ts = min(c.lastIssued+1, now+maxStampLead)
	}
	c.lastIssued = ts
	return ts
}

func sortOldestFirst(list []keyedEntry) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].entry.Timestamp != list[j].entry.Timestamp {
			return list[i].entry.Timestamp < list[j].entry.Timestamp
		}
		return list[i].key < list[j].key
	})
}

func oldestKey(entries map[string]Entry) (string, bool) {
	var (
		key   string
		found bool
		ts    int64
	)
	for k, e := range entries {
		if !found || e.Timestamp < ts || (e.Timestamp == ts && k < key) {
			key, ts, found = k, e.Timestamp, true
		}
	}
	return key, found
}
