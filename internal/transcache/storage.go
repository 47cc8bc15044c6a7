package transcache

import (
	"context"
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by storages that refuse a write for size.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Storage is a string key/value store the cache persists its mapping into.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// MemoryStorage keeps items in process memory. A positive Quota limits the
// total bytes of keys plus values.
type MemoryStorage struct {
	Quota int

	mu    sync.Mutex
	items map[string]string
}

func NewMemoryStorage(quota int) *MemoryStorage {
	return &MemoryStorage{Quota: quota, items: map[string]string{}}
}

func (s *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = map[string]string{}
	}
	if s.Quota > 0 {
		used := 0
		for k, v := range s.items {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > s.Quota {
			return ErrQuotaExceeded
		}
	}
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
