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


package vset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/vectorview/core"
	"github.com/redis/go-redis/v9"
)

// vectorSetType is the module type name reported by TYPE for vector sets.
const vectorSetType = "vectorset"

// Doer issues a raw command and returns the decoded reply. The production
// implementation is a go-redis client; tests substitute a fake.
type Doer interface {
	Do(ctx context.Context, args ...any) (any, error)
}

// Client issues vector set commands over a Doer.
type Client struct {
	doer   Doer
	logger *slog.Logger
}

// New creates a client over the given Doer.
func New(doer Doer) *Client {
	return &Client{
		doer:   doer,
		logger: slog.Default().With("component", "vset-client"),
	}
}

// redisDoer adapts a go-redis client to the Doer contract.
type redisDoer struct {
	client redis.UniversalClient
}

func (d redisDoer) Do(ctx context.Context, args ...any) (any, error) {
	return d.client.Do(ctx, args...).Result()
}

// NewFromRedis creates a client over an established go-redis connection.
func NewFromRedis(client redis.UniversalClient) *Client {
	return New(redisDoer{client: client})
}

// notFound maps the driver's null-reply error onto ErrNotFound. go-redis
// surfaces a null VINFO/VEMB/VLINKS reply as redis.Nil from Result(), never
// as a nil result.
func notFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return err
}

// AddOptions tunes VADD. The zero value uses the server defaults
// (8 bit quantization, no projection, default build-time EF).
type AddOptions struct {
	// ReduceDim requests random-projection down to this dimensionality.
	// Zero means no projection.
	ReduceDim int

	// Quant selects the storage quantization. Empty keeps the server
	// default (int8).
	Quant core.Quantization

	// CAS makes the insert run its candidate search in a background thread
	// with a check-and-set commit.
	CAS bool

	// EF overrides the build-time exploration factor. Zero keeps the
	// server default.
	EF int
}

// SimOptions tunes VSIM. The zero value uses the server defaults.
type SimOptions struct {
	// WithScores asks for similarity scores alongside element names.
	WithScores bool

	// Count caps the number of results. Zero keeps the server default (10).
	Count int

	// Epsilon is the maximum accepted cosine distance. Zero keeps the
	// server default.
	Epsilon float64

	// EF overrides the search-time exploration factor. Zero keeps the
	// server default.
	EF int
}

// Add inserts or updates element in the vector set at key.
// Reports whether a new element was added (false means updated).
func (c *Client) Add(ctx context.Context, key, element string, vector []float32, opts AddOptions) (bool, error) {
	if err := core.ValidateVector(element, vector); err != nil {
		return false, err
	}

	args := []any{"VADD", key}
	if opts.ReduceDim > 0 {
		args = append(args, "REDUCE", opts.ReduceDim)
	}
	args = append(args, "VALUES", len(vector))
	for _, v := range vector {
		args = append(args, formatComponent(v))
	}
	args = append(args, element)
	if opts.CAS {
		args = append(args, "CAS")
	}
	switch opts.Quant {
	case core.QuantF32:
		args = append(args, "NOQUANT")
	case core.QuantBin:
		args = append(args, "BIN")
	case core.QuantQ8, "":
		// Server default.
	}
	if opts.EF > 0 {
		args = append(args, "EF", opts.EF)
	}

	reply, err := c.doer.Do(ctx, args...)
	if err != nil {
		return false, fmt.Errorf("VADD %s: %w", key, err)
	}
	added, err := toInt64(reply)
	if err != nil {
		return false, fmt.Errorf("VADD %s: %w", key, err)
	}
	return added == 1, nil
}

// Rem removes element from the vector set at key.
// Reports whether the element existed.
func (c *Client) Rem(ctx context.Context, key, element string) (bool, error) {
	reply, err := c.doer.Do(ctx, "VREM", key, element)
	if err != nil {
		return false, fmt.Errorf("VREM %s: %w", key, err)
	}
	removed, err := toInt64(reply)
	if err != nil {
		return false, fmt.Errorf("VREM %s: %w", key, err)
	}
	return removed == 1, nil
}

// SimByVector returns the elements most similar to the given query vector.
func (c *Client) SimByVector(ctx context.Context, key string, vector []float32, opts SimOptions) ([]core.SimilarityMatch, error) {
	args := []any{"VSIM", key, "VALUES", len(vector)}
	for _, v := range vector {
		args = append(args, formatComponent(v))
	}
	return c.sim(ctx, key, args, opts)
}

// SimByElement returns the elements most similar to an element already in
// the set.
func (c *Client) SimByElement(ctx context.Context, key, element string, opts SimOptions) ([]core.SimilarityMatch, error) {
	args := []any{"VSIM", key, "ELE", element}
	return c.sim(ctx, key, args, opts)
}

func (c *Client) sim(ctx context.Context, key string, args []any, opts SimOptions) ([]core.SimilarityMatch, error) {
	if opts.WithScores {
		args = append(args, "WITHSCORES")
	}
	if opts.Count > 0 {
		args = append(args, "COUNT", opts.Count)
	}
	if opts.Epsilon > 0 {
		args = append(args, "EPSILON", formatFloat(opts.Epsilon))
	}
	if opts.EF > 0 {
		args = append(args, "EF", opts.EF)
	}

	reply, err := c.doer.Do(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("VSIM %s: %w", key, err)
	}
	matches, err := parseSimReply(reply, opts.WithScores)
	if err != nil {
		return nil, fmt.Errorf("VSIM %s: %w", key, err)
	}
	return matches, nil
}

// Card returns the number of elements in the vector set at key.
func (c *Client) Card(ctx context.Context, key string) (int64, error) {
	reply, err := c.doer.Do(ctx, "VCARD", key)
	if err != nil {
		return 0, fmt.Errorf("VCARD %s: %w", key, err)
	}
	size, err := toInt64(reply)
	if err != nil {
		return 0, fmt.Errorf("VCARD %s: %w", key, err)
	}
	return size, nil
}

// Dim returns the vector dimensionality of the set at key.
func (c *Client) Dim(ctx context.Context, key string) (int, error) {
	reply, err := c.doer.Do(ctx, "VDIM", key)
	if err != nil {
		return 0, fmt.Errorf("VDIM %s: %w", key, err)
	}
	dim, err := toInt64(reply)
	if err != nil {
		return 0, fmt.Errorf("VDIM %s: %w", key, err)
	}
	return int(dim), nil
}

// Emb returns the (approximate, de-quantized) stored vector of element.
func (c *Client) Emb(ctx context.Context, key, element string) ([]float32, error) {
	reply, err := c.doer.Do(ctx, "VEMB", key, element)
	if err != nil {
		return nil, fmt.Errorf("VEMB %s %s: %w", key, element, notFound(err))
	}
	if reply == nil {
		return nil, fmt.Errorf("VEMB %s %s: %w", key, element, ErrNotFound)
	}
	vector, err := toVector(reply)
	if err != nil {
		return nil, fmt.Errorf("VEMB %s %s: %w", key, element, err)
	}
	return vector, nil
}

// Links returns the per-layer graph neighbors of element.
func (c *Client) Links(ctx context.Context, key, element string) (core.NeighborLayers, error) {
	reply, err := c.doer.Do(ctx, "VLINKS", key, element)
	if err != nil {
		return nil, fmt.Errorf("VLINKS %s %s: %w", key, element, notFound(err))
	}
	if reply == nil {
		return nil, fmt.Errorf("VLINKS %s %s: %w", key, element, ErrNotFound)
	}
	layers, err := parseLinksReply(reply)
	if err != nil {
		return nil, fmt.Errorf("VLINKS %s %s: %w", key, element, err)
	}
	return layers, nil
}

// Info returns the metadata of the vector set at key.
func (c *Client) Info(ctx context.Context, key string) (*core.CollectionInfo, error) {
	reply, err := c.doer.Do(ctx, "VINFO", key)
	if err != nil {
		return nil, fmt.Errorf("VINFO %s: %w", key, notFound(err))
	}
	if reply == nil {
		return nil, fmt.Errorf("VINFO %s: %w", key, ErrNotFound)
	}
	info, err := parseInfoReply(reply)
	if err != nil {
		return nil, fmt.Errorf("VINFO %s: %w", key, err)
	}
	info.Name = key
	return info, nil
}

// ListCollections scans the keyspace and returns the names of all vector
// sets, sorted by the server's scan order.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	cursor := "0"
	for {
		reply, err := c.doer.Do(ctx, "SCAN", cursor, "COUNT", 100)
		if err != nil {
			return nil, fmt.Errorf("SCAN: %w", err)
		}
		page, ok := reply.([]any)
		if !ok || len(page) != 2 {
			return nil, fmt.Errorf("SCAN: %w", ErrMalformedReply)
		}
		next, err := toString(page[0])
		if err != nil {
			return nil, fmt.Errorf("SCAN: %w", err)
		}
		keys, err := toStringSlice(page[1])
		if err != nil {
			return nil, fmt.Errorf("SCAN: %w", err)
		}

		for _, key := range keys {
			typeReply, err := c.doer.Do(ctx, "TYPE", key)
			if err != nil {
				return nil, fmt.Errorf("TYPE %s: %w", key, err)
			}
			typeName, err := toString(typeReply)
			if err != nil {
				return nil, fmt.Errorf("TYPE %s: %w", key, err)
			}
			if strings.EqualFold(typeName, vectorSetType) {
				names = append(names, key)
			}
		}

		cursor = next
		if cursor == "0" {
			break
		}
	}
	return names, nil
}
