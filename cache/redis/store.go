// Package redis implements cache.Store on a Redis connection, which is
// also where the vector sets themselves live: the cache shares the
// console's active server connection rather than owning one.
package redis

import (
	"context"
	"errors"

	"github.com/poiesic/vectorview/cache"
	"github.com/redis/go-redis/v9"
)

// Store adapts a go-redis client to the cache.Store contract.
type Store struct {
	client redis.Cmdable
}

var _ cache.Store = (*Store)(nil)

// NewStore wraps an existing Redis client. The client's lifecycle stays
// with the caller.
func NewStore(client redis.Cmdable) *Store {
	return &Store{client: client}
}

// HGet returns the value of a hash field, mapping redis.Nil to
// cache.ErrNotFound.
func (s *Store) HGet(ctx context.Context, key, field string) (string, error) {
	val, err := s.client.HGet(ctx, key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", cache.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// HSet writes a hash field, overwriting any existing value.
func (s *Store) HSet(ctx context.Context, key, field, value string) error {
	return s.client.HSet(ctx, key, field, value).Err()
}

// ZAdd upserts a sorted set member with the given score.
func (s *Store) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// Del removes the given keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}
