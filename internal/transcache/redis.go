package transcache

import (
	"context"

	pkgredis "github.com/legalai/core/internal/pkg/redis"
)

// RedisStorage shares one cache between machines through Redis. Items live
// under Prefix with no expiry; the cache enforces its own age limit.
type RedisStorage struct {
	client *pkgredis.Client
	Prefix string
}

func NewRedisStorage(client *pkgredis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "legalai:client:"
	}
	return &RedisStorage{client: client, Prefix: prefix}
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.client.Get(ctx, s.Prefix+key)
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.Prefix+key, value, 0)
}

func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.Prefix+key)
}
