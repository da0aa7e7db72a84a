package cache

import (
	"context"
	"errors"
)

// ErrNotFound indicates that the requested field was not present in the store.
var ErrNotFound = errors.New("field not found")

// Store is the key-value backend contract the cache needs: hash-field
// get/set for the vectors, a sorted-set add for the recency index, and key
// deletion for clear-all. Implementations must be safe for concurrent use.
//
// The production implementation lives in cache/redis; tests use an
// in-memory fake.
type Store interface {
	// HGet returns the value of a hash field, or ErrNotFound if the field
	// (or the hash itself) does not exist.
	HGet(ctx context.Context, key, field string) (string, error)

	// HSet writes a hash field, overwriting any existing value.
	HSet(ctx context.Context, key, field, value string) error

	// ZAdd adds a member to a sorted set with the given score, updating the
	// score if the member already exists.
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// Del removes the given keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error
}
