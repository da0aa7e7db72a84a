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


// Package vectorview is an administrative console backend for Redis
// vector sets: connection management, collection inspection, embedding
// generation with a shared cache, bulk import and similarity search.
package vectorview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/vectorview/ai"
	"github.com/poiesic/vectorview/ai/mock"
	"github.com/poiesic/vectorview/ai/ollama"
	"github.com/poiesic/vectorview/ai/openai"
	"github.com/poiesic/vectorview/cache"
	cacheredis "github.com/poiesic/vectorview/cache/redis"
	"github.com/poiesic/vectorview/conn"
	"github.com/poiesic/vectorview/core"
	"github.com/poiesic/vectorview/events"
	"github.com/poiesic/vectorview/importer"
	"github.com/poiesic/vectorview/vset"
)

// Console aggregates the console's long-lived services: the connection
// manager, the recent-connections store, the event broker, the embedding
// provider and the embedding cache. Create one at startup and Close it at
// shutdown; nothing in this module keeps package-global state.
type Console struct {
	manager  *conn.Manager
	recent   *conn.RecentStore
	broker   *events.Broker
	cache    *cache.Cache
	embedder ai.Embedder
	aiConfig *ai.Config
	logger   *slog.Logger

	mu     sync.Mutex
	active string // alias of the connection console operations target
}

// Option configures a Console.
type Option func(*consoleOptions)

type consoleOptions struct {
	aiConfig   *ai.Config
	embedder   ai.Embedder
	inMemory   bool
	digestKeys bool
	managerOpt []conn.ManagerOption
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *consoleOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder injects a ready-made embedder, bypassing provider
// construction. For tests.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *consoleOptions) {
		o.embedder = embedder
	}
}

// WithInMemoryStore keeps the recent-connections store off the
// filesystem. For tests.
func WithInMemoryStore() Option {
	return func(o *consoleOptions) {
		o.inMemory = true
	}
}

// WithDigestCacheFields switches the embedding cache to collision-free
// digest fields.
func WithDigestCacheFields() Option {
	return func(o *consoleOptions) {
		o.digestKeys = true
	}
}

// WithManagerOptions forwards options to the connection manager.
func WithManagerOptions(opts ...conn.ManagerOption) Option {
	return func(o *consoleOptions) {
		o.managerOpt = append(o.managerOpt, opts...)
	}
}

// New creates a Console storing recent connections under dataDir.
func New(dataDir string, opts ...Option) (*Console, error) {
	options := &consoleOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = newEmbedder(options.aiConfig)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
	}

	recent, err := conn.OpenRecentStore(dataDir, options.inMemory)
	if err != nil {
		return nil, fmt.Errorf("opening recent-connections store: %w", err)
	}

	c := &Console{
		recent:   recent,
		manager:  conn.NewManager(recent, options.managerOpt...),
		broker:   events.NewBroker(),
		embedder: embedder,
		aiConfig: options.aiConfig,
		logger:   slog.Default().With("component", "console"),
	}

	cacheOpts := []cache.Option{}
	if options.digestKeys {
		cacheOpts = append(cacheOpts, cache.WithDigestFields())
	}
	// The cache shares whatever connection is currently active; while
	// disconnected every lookup is a miss and every write a no-op.
	c.cache = cache.New(&activeStore{console: c}, cacheOpts...)

	return c, nil
}

// newEmbedder dispatches on the configured provider.
func newEmbedder(cfg *ai.Config) (ai.Embedder, error) {
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		return openai.NewEmbedder(cfg)
	case ai.ProviderOllama:
		return ollama.NewEmbedder(cfg)
	case ai.ProviderMock:
		return mock.NewMockEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// Connect establishes a connection and makes it the active one.
func (c *Console) Connect(ctx context.Context, alias, url string) error {
	if _, err := c.manager.Connect(ctx, alias, url); err != nil {
		return err
	}

	c.mu.Lock()
	c.active = alias
	c.mu.Unlock()

	c.broker.Publish(events.TypeConnected, map[string]string{"alias": alias})
	return nil
}

// Disconnect closes the named connection. If it was active, the console
// has no active connection afterwards.
func (c *Console) Disconnect(alias string) error {
	if err := c.manager.Disconnect(alias); err != nil {
		return err
	}

	c.mu.Lock()
	if c.active == alias {
		c.active = ""
	}
	c.mu.Unlock()

	c.broker.Publish(events.TypeDisconnected, map[string]string{"alias": alias})
	return nil
}

// ActiveAlias returns the alias of the active connection, empty if none.
func (c *Console) ActiveAlias() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Client returns a vector set client over the active connection.
func (c *Console) Client() (*vset.Client, error) {
	c.mu.Lock()
	alias := c.active
	c.mu.Unlock()
	if alias == "" {
		return nil, conn.ErrNotConnected
	}
	client, err := c.manager.Get(alias)
	if err != nil {
		return nil, err
	}
	return vset.NewFromRedis(client), nil
}

// Embed returns the embedding for text, consulting the cache first.
// The second return reports whether the result came from the cache.
func (c *Console) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	input := []byte(text)
	if vector, ok := c.cache.Get(ctx, input, c.aiConfig); ok {
		return vector, true, nil
	}

	vector, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, false, err
	}
	c.cache.Set(ctx, input, vector, c.aiConfig)
	return vector, false, nil
}

// Search embeds the query text and runs a similarity query against
// collection.
func (c *Console) Search(ctx context.Context, collection, query string, opts vset.SimOptions) ([]core.SimilarityMatch, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	vector, _, err := c.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return client.SimByVector(ctx, collection, vector, opts)
}

// Import bulk-loads JSON-lines records into collection.
func (c *Console) Import(ctx context.Context, collection string, r io.Reader, opts ...importer.Option) (*importer.Result, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}

	opts = append([]importer.Option{importer.WithBroker(c.broker)}, opts...)
	imp, err := importer.New(client, c.embedder, c.cache, c.aiConfig, opts...)
	if err != nil {
		return nil, err
	}
	defer imp.Close()

	return imp.Run(ctx, collection, r)
}

// Collections lists the vector sets on the active connection.
func (c *Console) Collections(ctx context.Context) ([]string, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	return client.ListCollections(ctx)
}

// CollectionInfo returns the metadata of one vector set.
func (c *Console) CollectionInfo(ctx context.Context, name string) (*core.CollectionInfo, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	return client.Info(ctx, name)
}

// Recent returns saved connection profiles, most recent first.
func (c *Console) Recent() ([]*core.ConnectionProfile, error) {
	return c.recent.List()
}

// ForgetProfile removes a saved connection profile.
func (c *Console) ForgetProfile(alias string) error {
	return c.recent.Delete(alias)
}

// Cache exposes the embedding cache.
func (c *Console) Cache() *cache.Cache {
	return c.cache
}

// ClearCache drops every cached embedding.
func (c *Console) ClearCache(ctx context.Context) error {
	if err := c.cache.Clear(ctx); err != nil {
		return err
	}
	c.broker.Publish(events.TypeCacheCleared, nil)
	return nil
}

// Broker exposes the event broker for SSE streaming.
func (c *Console) Broker() *events.Broker {
	return c.broker
}

// Close tears down connections, the broker and the profile store.
func (c *Console) Close() error {
	c.broker.Close()
	err := c.manager.Close()
	if cerr := c.recent.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// activeStore adapts the manager's active connection to the cache.Store
// contract. Every call resolves the connection anew, so the cache follows
// connects and disconnects without rewiring. Without an active connection
// reads answer ErrNotFound and writes succeed as no-ops: cache
// unavailability is absence, never an error.
type activeStore struct {
	console *Console
}

var _ cache.Store = (*activeStore)(nil)

func (s *activeStore) resolve() cache.Store {
	s.console.mu.Lock()
	alias := s.console.active
	s.console.mu.Unlock()
	if alias == "" {
		return nil
	}
	client, err := s.console.manager.Get(alias)
	if err != nil {
		return nil
	}
	return cacheredis.NewStore(client)
}

func (s *activeStore) HGet(ctx context.Context, key, field string) (string, error) {
	store := s.resolve()
	if store == nil {
		return "", cache.ErrNotFound
	}
	return store.HGet(ctx, key, field)
}

func (s *activeStore) HSet(ctx context.Context, key, field, value string) error {
	store := s.resolve()
	if store == nil {
		return nil
	}
	return store.HSet(ctx, key, field, value)
}

func (s *activeStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	store := s.resolve()
	if store == nil {
		return nil
	}
	return store.ZAdd(ctx, key, score, member)
}

func (s *activeStore) Del(ctx context.Context, keys ...string) error {
	store := s.resolve()
	if store == nil {
		return nil
	}
	return store.Del(ctx, keys...)
}
