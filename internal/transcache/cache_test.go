package transcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/legalai/core/internal/pkg/apperr"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(store Storage) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New(store, WithClock(clock.Now)), clock
}

func sample(text, lang string) Result {
	return Result{OriginalText: text, TranslatedText: "[" + lang + "] " + text, DetectedLanguage: "en", TargetLanguage: lang}
}

func TestGetPutRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(NewMemoryStorage(0))

	if _, ok := c.Get(ctx, "Hello world", "fr"); ok {
		t.Fatal("empty cache should miss")
	}
	want := sample("Hello world", "fr")
	if err := c.Put(ctx, "Hello world", "fr", want); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get(ctx, "Hello  world ", "fr")
	if !ok || got != want {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestKeepsNewestEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(0)
	c, clock := newTestCache(store)

	const n = MaxEntries + 7
	for i := 0; i < n; i++ {
		text := fmt.Sprintf("clause %d", i)
		if err := c.Put(ctx, text, "fr", sample(text, "fr")); err != nil {
			t.Fatal(err)
		}
		clock.Advance(time.Second)
	}

	c.Get(ctx, "anything", "fr")
	entries := c.Inspect(ctx)
	if len(entries) != MaxEntries {
		t.Fatalf("entries = %d", len(entries))
	}
	for i := n - MaxEntries; i < n; i++ {
		if _, ok := entries[CacheKey(fmt.Sprintf("clause %d", i), "fr")]; !ok {
			t.Fatalf("clause %d evicted", i)
		}
	}
	for i := 0; i < n-MaxEntries; i++ {
		if _, ok := entries[CacheKey(fmt.Sprintf("clause %d", i), "fr")]; ok {
			t.Fatalf("clause %d retained", i)
		}
	}
}

func TestKeepsNewestEntriesWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(NewMemoryStorage(0))
	for i := 0; i < MaxEntries+1; i++ {
		text := fmt.Sprintf("line %02d", i)
		_ = c.Put(ctx, text, "fr", sample(text, "fr"))
	}
	if _, ok := c.Get(ctx, "line 00", "fr"); ok {
		t.Fatal("first insert should be evicted")
	}
	if _, ok := c.Get(ctx, fmt.Sprintf("line %02d", MaxEntries), "fr"); !ok {
		t.Fatal("last insert should be kept")
	}
}

func TestExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(NewMemoryStorage(0))
	_ = c.Put(ctx, "Hello world", "fr", sample("Hello world", "fr"))

	clock.Advance(Expiry - time.Millisecond)
	if _, ok := c.Get(ctx, "Hello world", "fr"); !ok {
		t.Fatal("entry should be live just before expiry")
	}

	clock.Advance(2 * time.Millisecond)
	if _, ok := c.Get(ctx, "Hello world", "fr"); ok {
		t.Fatal("entry should be expired just after expiry")
	}
	if entries := c.Inspect(ctx); len(entries) != 0 {
		t.Fatalf("expired entry not written back: %v", entries)
	}
	if s := c.Stats(ctx); s.LastCleanup == nil || !s.LastCleanup.Equal(clock.Now()) {
		t.Fatalf("last cleanup = %v", s.LastCleanup)
	}
}

func TestExpiresAtExactlyExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(NewMemoryStorage(0))
	_ = c.Put(ctx, "x", "fr", sample("x", "fr"))
	clock.Advance(Expiry)
	if _, ok := c.Get(ctx, "x", "fr"); ok {
		t.Fatal("age equal to expiry should miss")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(NewMemoryStorage(0))

	if s := c.Stats(ctx); s.HitRate != 0 || s.TotalRequests != 0 {
		t.Fatalf("fresh stats = %+v", s)
	}

	_ = c.Put(ctx, "a", "fr", sample("a", "fr"))
	c.Get(ctx, "a", "fr")
	c.Get(ctx, "a", "fr")
	c.Get(ctx, "a", "fr")
	c.Get(ctx, "b", "fr")

	s := c.Stats(ctx)
	if s.Hits != 3 || s.Misses != 1 || s.TotalRequests != 4 || s.HitRate != 75 || s.CacheSize != 1 {
		t.Fatalf("stats = %+v", s)
	}

	c.ResetStats()
	if s := c.Stats(ctx); s.Hits != 0 || s.Misses != 0 || s.HitRate != 0 || s.CacheSize != 1 {
		t.Fatalf("after reset = %+v", s)
	}

	c.RecordLookup(false)
	if s := c.Stats(ctx); s.Misses != 1 || s.HitRate != 0 {
		t.Fatalf("after record = %+v", s)
	}
}

func TestStatsAreInstanceScoped(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(0)
	a, _ := newTestCache(store)
	b, _ := newTestCache(store)
	a.Get(ctx, "x", "fr")
	if s := b.Stats(ctx); s.TotalRequests != 0 {
		t.Fatalf("stats leaked across instances: %+v", s)
	}
}

func TestPutEvictsOldestOnQuota(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(700)
	c, clock := newTestCache(store)

	if err := c.Put(ctx, "old", "fr", sample("old", "fr")); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)

	big := strings.Repeat("b", 150)
	if err := c.Put(ctx, big, "fr", sample(big, "fr")); err != nil {
		t.Fatalf("remedial retry should succeed: %v", err)
	}
	entries := c.Inspect(ctx)
	if _, ok := entries[CacheKey("old", "fr")]; ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := entries[CacheKey(big, "fr")]; !ok {
		t.Fatal("new entry missing")
	}
}

func TestPutReturnsStorageError(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(NewMemoryStorage(50))

	err := c.Put(ctx, "far too long for the quota", "fr", sample("far too long for the quota", "fr"))
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("cause not wrapped: %v", err)
	}
}

func TestCorruptStorageDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(0)
	_ = store.SetItem(ctx, StorageKey, "{not json")
	c, _ := newTestCache(store)

	if c.Inspect(ctx) != nil {
		t.Fatal("corrupt data should inspect as nil")
	}
	if _, ok, _ := store.GetItem(ctx, StorageKey); ok {
		t.Fatal("corrupt item should be removed")
	}

	_ = store.SetItem(ctx, StorageKey, "[]")
	if _, ok := c.Get(ctx, "x", "fr"); ok {
		t.Fatal("corrupt storage should miss")
	}
	if err := c.Put(ctx, "x", "fr", sample("x", "fr")); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "x", "fr"); !ok {
		t.Fatal("cache should recover after corruption")
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(NewMemoryStorage(0))
	_ = c.Put(ctx, "x", "fr", sample("x", "fr"))
	c.Get(ctx, "x", "fr")

	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Inspect(ctx) != nil {
		t.Fatal("clear should remove the mapping")
	}
	if s := c.Stats(ctx); s.TotalRequests != 0 || s.CacheSize != 0 {
		t.Fatalf("stats after clear = %+v", s)
	}
}

func TestPersistedLayout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(0)
	c, clock := newTestCache(store)
	_ = c.Put(ctx, "Hello world", "fr", sample("Hello world", "fr"))

	raw, ok, _ := store.GetItem(ctx, StorageKey)
	if !ok {
		t.Fatal("nothing persisted")
	}
	want := fmt.Sprintf(`{"Hello world_fr":{"data":{"originalText":"Hello world","translatedText":"[fr] Hello world","detectedLanguage":"en","targetLanguage":"fr"},"timestamp":%d}}`, clock.Now().UnixMilli())
	if raw != want {
		t.Fatalf("persisted\n%s\nwant\n%s", raw, want)
	}
}

// flakyStorage fails the next failReads reads.
type flakyStorage struct {
	*MemoryStorage
	failReads int
}

func (s *flakyStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s.failReads > 0 {
		s.failReads--
		return "", false, errors.New("i/o timeout")
	}
	return s.MemoryStorage.GetItem(ctx, key)
}

func TestTransientReadErrorKeepsStoredEntries(t *testing.T) {
	ctx := context.Background()
	store := &flakyStorage{MemoryStorage: NewMemoryStorage(0)}
	c, _ := newTestCache(store)

	if err := c.Put(ctx, "Hello world", "fr", sample("Hello world", "fr")); err != nil {
		t.Fatal(err)
	}

	store.failReads = 1
	if _, ok := c.Get(ctx, "Hello world", "fr"); ok {
		t.Fatal("unreadable storage should miss")
	}
	if _, ok := c.Get(ctx, "Hello world", "fr"); !ok {
		t.Fatal("entry lost after one failed read")
	}

	store.failReads = 1
	err := c.Put(ctx, "Goodbye", "fr", sample("Goodbye", "fr"))
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("err = %v", err)
	}
	entries := c.Inspect(ctx)
	if _, ok := entries[CacheKey("Hello world", "fr")]; !ok {
		t.Fatalf("put after a failed read overwrote the mapping: %v", entries)
	}
	if _, ok := entries[CacheKey("Goodbye", "fr")]; ok {
		t.Fatal("put after a failed read should not store")
	}

	store.failReads = 1
	if c.Inspect(ctx) != nil {
		t.Fatal("failed read should inspect as nil")
	}
	if _, ok, _ := store.MemoryStorage.GetItem(ctx, StorageKey); !ok {
		t.Fatal("failed read removed the item")
	}
}

func TestSkewedEntryDoesNotExtendNewEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(0)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	ahead := &fakeClock{t: start.Add(30 * 24 * time.Hour)}
	skewed := New(store, WithClock(ahead.Now))
	if err := skewed.Put(ctx, "a", "fr", sample("a", "fr")); err != nil {
		t.Fatal(err)
	}

	c, clock := newTestCache(store)
	if err := c.Put(ctx, "b", "fr", sample("b", "fr")); err != nil {
		t.Fatal(err)
	}
	if ts := c.Inspect(ctx)[CacheKey("b", "fr")].Timestamp; ts != start.UnixMilli() {
		t.Fatalf("timestamp = %d, want %d", ts, start.UnixMilli())
	}

	clock.Advance(48 * time.Hour)
	if _, ok := c.Get(ctx, "b", "fr"); ok {
		t.Fatal("entry written at T should miss after the expiry")
	}
}

func TestTimestampLeadIsBounded(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(NewMemoryStorage(0))
	for i := 0; i < 1500; i++ {
		_ = c.Put(ctx, "x", "fr", sample("x", "fr"))
	}
	ts := c.Inspect(ctx)[CacheKey("x", "fr")].Timestamp
	if lead := ts - clock.Now().UnixMilli(); lead > maxStampLead {
		t.Fatalf("timestamp runs %dms ahead of the clock", lead)
	}
}
