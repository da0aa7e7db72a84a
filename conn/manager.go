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


package conn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/vectorview/core"
	"github.com/redis/go-redis/v9"
)

// Dialer establishes a live client for a connection URI. The context
// carries the per-attempt timeout; implementations must respect it.
type Dialer func(ctx context.Context, url string) (redis.UniversalClient, error)

// defaultDialer parses the URI, opens a go-redis client and verifies the
// connection with a PING before handing it over.
func defaultDialer(ctx context.Context, url string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Manager owns the console's live server connections. It is created at
// startup and torn down with Close; nothing else holds clients.
type Manager struct {
	mu      sync.Mutex
	clients map[string]redis.UniversalClient
	closed  bool

	recent *RecentStore // may be nil: connects still work, nothing is remembered
	policy RetryPolicy
	dial   Dialer
	now    func() time.Time
	logger *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRetryPolicy overrides the connect retry policy.
func WithRetryPolicy(policy RetryPolicy) ManagerOption {
	return func(m *Manager) {
		m.policy = policy
	}
}

// WithDialer overrides how clients are established. For tests.
func WithDialer(dial Dialer) ManagerOption {
	return func(m *Manager) {
		m.dial = dial
	}
}

// WithClock overrides the time source used for LastConnected stamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a connection manager. recent may be nil.
func NewManager(recent *RecentStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		clients: make(map[string]redis.UniversalClient),
		recent:  recent,
		policy:  DefaultRetryPolicy(),
		dial:    defaultDialer,
		now:     time.Now,
		logger:  slog.Default().With("component", "conn-manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect establishes a connection to url under the retry policy and
// registers it under alias, replacing (and closing) any previous client
// for that alias. On success the recent-connections store is stamped; on
// failure nothing is persisted and the aggregated error is returned.
func (m *Manager) Connect(ctx context.Context, alias, url string) (redis.UniversalClient, error) {
	profile := &core.ConnectionProfile{Alias: alias, URL: url}
	if err := core.ValidateProfile(profile); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.mu.Unlock()

	var client redis.UniversalClient
	err := ConnectWithRetry(ctx, m.policy, func(attemptCtx context.Context) error {
		c, err := m.dial(attemptCtx, url)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		m.logger.Warn("connection failed", "alias", alias, "err", err)
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		client.Close()
		return nil, ErrManagerClosed
	}
	if previous, ok := m.clients[alias]; ok {
		previous.Close()
	}
	m.clients[alias] = client
	m.mu.Unlock()

	if m.recent != nil {
		if err := m.recent.TouchConnected(alias, url, m.now()); err != nil {
			// The connection itself is fine; losing the bookmark is not
			// worth failing it.
			m.logger.Warn("failed to record connection", "alias", alias, "err", err)
		}
	}

	m.logger.Info("connected", "alias", alias)
	return client, nil
}

// Get returns the live client registered under alias.
func (m *Manager) Get(alias string) (redis.UniversalClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	client, ok := m.clients[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, alias)
	}
	return client, nil
}

// Aliases returns the aliases with live connections.
func (m *Manager) Aliases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	aliases := make([]string, 0, len(m.clients))
	for alias := range m.clients {
		aliases = append(aliases, alias)
	}
	return aliases
}

// Disconnect closes and removes the client registered under alias.
func (m *Manager) Disconnect(alias string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	client, ok := m.clients[alias]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, alias)
	}
	delete(m.clients, alias)
	return client.Close()
}

// Close tears down every live connection. The manager is unusable
// afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var firstErr error
	for alias, client := range m.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.clients, alias)
	}
	return firstErr
}
