package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgredis "github.com/legalai/core/internal/pkg/redis"
)

// DefaultRedisPrefix namespaces analysis entries in a shared Redis.
const DefaultRedisPrefix = "legalai:analysis:"

// RedisStore shares entries between server instances. Expiry is delegated
// to Redis key TTLs, so Sweep has nothing to do and the entry cap is not
// enforced here; configure maxmemory-policy on the server instead.
type RedisStore struct {
	client *pkgredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *pkgredis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	raw, ok, err := s.client.Get(ctx, s.prefix+key)
	if err != nil || !ok {
		return nil, false, err
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// A value we cannot read is as good as absent; drop it.
		_ = s.client.Del(ctx, s.prefix+key)
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, entry *Entry) (int, error) {
	b, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("encode analysis entry: %w", err)
	}
	return 0, s.client.Set(ctx, s.prefix+key, b, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.client.DelPrefix(ctx, s.prefix)
	return err
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	keys, err := s.client.Keys(ctx, s.prefix)
	return len(keys), err
}

func (s *RedisStore) Sweep(context.Context) (int, error) { return 0, nil }
