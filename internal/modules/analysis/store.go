package analysis

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Entry is a completed analysis as returned to clients.
type Entry struct {
	Summary       string   `json:"summary"`
	Highlights    []string `json:"highlights"`
	ExtractedText string   `json:"extractedText"`
	Success       bool     `json:"success"`
}

// Store holds analysis entries by key.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	// Put stores entry and reports how many entries were evicted to make room.
	Put(ctx context.Context, key string, entry *Entry) (evicted int, err error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	// Sweep drops expired entries and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// MemoryStore is an in-process LRU with optional size and age limits.
// maxEntries 0 means unbounded; ttl 0 means entries never expire.
type MemoryStore struct {
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List
}

type memoryItem struct {
	key      string
	entry    *Entry
	storedAt time.Time
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		items:      make(map[string]*list.Element),
		eviction:   list.New(),
	}
}

func (s *MemoryStore) expired(it *memoryItem, now time.Time) bool {
	return s.ttl > 0 && now.Sub(it.storedAt) >= s.ttl
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	it := elem.Value.(*memoryItem)
	if s.expired(it, s.now()) {
		s.removeElement(elem)
		return nil, false, nil
	}
	s.eviction.MoveToFront(elem)
	return it.entry, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, entry *Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if elem, ok := s.items[key]; ok {
		it := elem.Value.(*memoryItem)
		it.entry = entry
		it.storedAt = now
		s.eviction.MoveToFront(elem)
		return 0, nil
	}

	s.items[key] = s.eviction.PushFront(&memoryItem{key: key, entry: entry, storedAt: now})

	evicted := 0
	for s.maxEntries > 0 && s.eviction.Len() > s.maxEntries {
		s.removeElement(s.eviction.Back())
		evicted++
	}
	return evicted, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.removeElement(elem)
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.eviction.Init()
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eviction.Len(), nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if s.expired(elem.Value.(*memoryItem), now) {
			s.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed, nil
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	s.eviction.Remove(elem)
	delete(s.items, elem.Value.(*memoryItem).key)
}
