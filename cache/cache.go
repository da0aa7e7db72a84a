// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/vectorview/ai"
)

// Cache is the embedding cache. A nil store is valid and makes every
// operation a miss or no-op, which keeps call sites free of availability
// checks.
//
// No locking is performed around read-then-write sequences; concurrent Set
// calls for the same field are last-write-wins with whatever ordering the
// backing store applies to independent operations.
type Cache struct {
	store  Store
	field  func([]byte, *ai.Config) string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithDigestFields switches field derivation from the truncated base64
// encoding to a 128 bit BLAKE2b digest of the full input. Fields derived in
// one mode are invisible to the other.
func WithDigestFields() Option {
	return func(c *Cache) {
		c.field = DigestField
	}
}

// WithClock overrides the time source used for recency scores. For tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// New creates an embedding cache over the given store. store may be nil.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		field:  HashField,
		now:    time.Now,
		logger: slog.Default().With("component", "embedding-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get looks up a previously cached embedding for input under config.
// The second return is false on a miss. A miss is also the answer whenever
// the store is unavailable, the lookup fails, or the stored value does not
// parse: cache failures must never fail the caller.
//
// A hit additionally bumps the recency index entry for the field to the
// current time, costing a second store round trip.
func (c *Cache) Get(ctx context.Context, input []byte, config *ai.Config) ([]float32, bool) {
	if c.store == nil {
		return nil, false
	}

	field := c.field(input, config)

	raw, err := c.store.HGet(ctx, HashKey, field)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("cache lookup failed", "field", field, "err", err)
		}
		return nil, false
	}

	var vector []float32
	if err := json.Unmarshal([]byte(raw), &vector); err != nil {
		c.logger.Warn("cached value does not parse, treating as miss", "field", field, "err", err)
		return nil, false
	}

	c.touch(ctx, field)
	return vector, true
}

// Set stores an embedding for input under config, unconditionally
// overwriting any existing value, and bumps the recency index entry. Write
// failures are logged and swallowed: write-through caching is best-effort.
func (c *Cache) Set(ctx context.Context, input []byte, vector []float32, config *ai.Config) {
	if c.store == nil {
		return
	}

	raw, err := json.Marshal(vector)
	if err != nil {
		c.logger.Warn("cannot serialize vector, write abandoned", "err", err)
		return
	}

	field := c.field(input, config)

	if err := c.store.HSet(ctx, HashKey, field, string(raw)); err != nil {
		c.logger.Warn("cache write failed", "field", field, "err", err)
		return
	}

	c.touch(ctx, field)
}

// Clear removes every cached vector and the recency index. Unlike Get and
// Set this is an explicit administrative action, so failures are returned.
func (c *Cache) Clear(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Del(ctx, HashKey, LogKey)
}

// touch records a read or write of field in the recency index.
func (c *Cache) touch(ctx context.Context, field string) {
	score := float64(c.now().UnixMilli())
	if err := c.store.ZAdd(ctx, LogKey, score, field); err != nil {
		c.logger.Warn("recency index update failed", "field", field, "err", err)
	}
}
