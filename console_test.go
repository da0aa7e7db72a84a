package vectorview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/vectorview/ai"
	"github.com/poiesic/vectorview/ai/mock"
	"github.com/poiesic/vectorview/conn"
	"github.com/poiesic/vectorview/events"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() conn.RetryPolicy {
	return conn.RetryPolicy{
		MaxAttempts:    2,
		AttemptTimeout: 50 * time.Millisecond,
		RetryDelay:     10 * time.Millisecond,
	}
}

func okDialer() conn.Dialer {
	return func(ctx context.Context, url string) (redis.UniversalClient, error) {
		return redis.NewClient(&redis.Options{Addr: "localhost:0"}), nil
	}
}

func newTestConsole(t *testing.T, dial conn.Dialer) *Console {
	t.Helper()
	console, err := New("",
		WithInMemoryStore(),
		WithEmbedder(mock.NewMockEmbedder()),
		WithAIConfig(ai.NewConfig(ai.WithProvider(ai.ProviderMock))),
		WithManagerOptions(conn.WithDialer(dial), conn.WithRetryPolicy(fastRetry())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { console.Close() })
	return console
}

func TestConsole_ConnectActivatesAndRecords(t *testing.T) {
	console := newTestConsole(t, okDialer())
	ch := console.Broker().Subscribe()

	err := console.Connect(context.Background(), "local", "redis://localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "local", console.ActiveAlias())

	profiles, err := console.Recent()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "local", profiles[0].Alias)
	assert.False(t, profiles[0].LastConnected.IsZero())

	select {
	case event := <-ch:
		assert.Equal(t, events.TypeConnected, event.Type)
	case <-time.After(time.Second):
		t.Fatal("no connected event published")
	}
}

func TestConsole_ConnectFailureLeavesNoTrace(t *testing.T) {
	dial := func(ctx context.Context, url string) (redis.UniversalClient, error) {
		return nil, errors.New("connection refused")
	}
	console := newTestConsole(t, dial)

	err := console.Connect(context.Background(), "local", "redis://localhost:6379")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Empty(t, console.ActiveAlias())

	profiles, err := console.Recent()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestConsole_DisconnectClearsActive(t *testing.T) {
	console := newTestConsole(t, okDialer())

	require.NoError(t, console.Connect(context.Background(), "local", "redis://localhost:6379"))
	require.NoError(t, console.Disconnect("local"))

	assert.Empty(t, console.ActiveAlias())
	_, err := console.Client()
	assert.ErrorIs(t, err, conn.ErrNotConnected)
}

func TestConsole_ClientRequiresActiveConnection(t *testing.T) {
	console := newTestConsole(t, okDialer())

	_, err := console.Client()
	assert.ErrorIs(t, err, conn.ErrNotConnected)

	_, err = console.Collections(context.Background())
	assert.ErrorIs(t, err, conn.ErrNotConnected)
}

func TestConsole_EmbedWithoutConnectionFallsThrough(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	console, err := New("",
		WithInMemoryStore(),
		WithEmbedder(embedder),
		WithAIConfig(ai.NewConfig(ai.WithProvider(ai.ProviderMock))),
	)
	require.NoError(t, err)
	defer console.Close()

	// No active connection: the cache is unavailable, so every call
	// recomputes. That is the fail-open contract, not an error.
	first, cached, err := console.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := console.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, first, second, "mock embedder is deterministic")
	assert.Equal(t, 2, embedder.CallCount())
}

func TestConsole_ForgetProfile(t *testing.T) {
	console := newTestConsole(t, okDialer())

	require.NoError(t, console.Connect(context.Background(), "local", "redis://localhost:6379"))
	require.NoError(t, console.ForgetProfile("local"))

	profiles, err := console.Recent()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestConsole_RejectsUnknownProvider(t *testing.T) {
	_, err := New("",
		WithInMemoryStore(),
		WithAIConfig(&ai.Config{Provider: ai.Provider("nope")}),
	)
	require.Error(t, err)
}
