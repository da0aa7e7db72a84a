package importer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/vectorview/ai"
	"github.com/poiesic/vectorview/ai/mock"
	"github.com/poiesic/vectorview/cache"
	"github.com/poiesic/vectorview/events"
	"github.com/poiesic/vectorview/vset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDoer is a thread-safe vset.Doer that acks every VADD.
type countingDoer struct {
	mu    sync.Mutex
	calls [][]any
	reply any
	err   error
}

func (d *countingDoer) Do(ctx context.Context, args ...any) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, args)
	return d.reply, d.err
}

func (d *countingDoer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// gatedDoer blocks every command until gate is closed.
type gatedDoer struct {
	countingDoer
	gate chan struct{}
}

func (d *gatedDoer) Do(ctx context.Context, args ...any) (any, error) {
	<-d.gate
	return d.countingDoer.Do(ctx, args...)
}

// memStore is a minimal in-memory cache.Store.
type memStore struct {
	mu     sync.Mutex
	hashes map[string]string
}

func (s *memStore) HGet(ctx context.Context, key, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.hashes[field]
	if !ok {
		return "", cache.ErrNotFound
	}
	return v, nil
}

func (s *memStore) HSet(ctx context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hashes == nil {
		s.hashes = make(map[string]string)
	}
	s.hashes[field] = value
	return nil
}

func (s *memStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return nil
}

func (s *memStore) Del(ctx context.Context, keys ...string) error { return nil }

func testImporter(t *testing.T, doer *countingDoer, embedder ai.Embedder, embCache *cache.Cache, opts ...Option) *Importer {
	t.Helper()
	imp, err := New(vset.New(doer), embedder, embCache, ai.NewConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(imp.Close)
	return imp
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(nil, mock.NewMockEmbedder(), nil, ai.NewConfig())
	assert.ErrorIs(t, err, ErrClientRequired)
}

func TestRun_ImportsVectorRecords(t *testing.T) {
	doer := &countingDoer{reply: int64(1)}
	imp := testImporter(t, doer, nil, nil)

	input := strings.Join([]string{
		`{"element":"doc:1","vector":[0.1,0.2]}`,
		`{"element":"doc:2","vector":[0.3,0.4]}`,
	}, "\n")

	result, err := imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Added)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 2, doer.count())
}

func TestRun_EmbedsTextRecords(t *testing.T) {
	doer := &countingDoer{reply: int64(1)}
	embedder := mock.NewMockEmbedder()
	imp := testImporter(t, doer, embedder, nil)

	input := `{"element":"doc:1","text":"hello world"}`
	result, err := imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestRun_CacheHitSkipsEmbedder(t *testing.T) {
	doer := &countingDoer{reply: int64(1)}
	embedder := mock.NewMockEmbedder()
	embCache := cache.New(&memStore{})
	cfg := ai.NewConfig()
	embCache.Set(context.Background(), []byte("hello world"), []float32{1, 2, 3}, cfg)

	imp, err := New(vset.New(doer), embedder, embCache, cfg)
	require.NoError(t, err)
	defer imp.Close()

	input := `{"element":"doc:1","text":"hello world"}`
	result, err := imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Zero(t, embedder.CallCount(), "cached embedding must be reused")
}

func TestRun_MissWritesThroughToCache(t *testing.T) {
	doer := &countingDoer{reply: int64(1)}
	embedder := mock.NewMockEmbedder()
	embCache := cache.New(&memStore{})
	cfg := ai.NewConfig()

	imp, err := New(vset.New(doer), embedder, embCache, cfg)
	require.NoError(t, err)
	defer imp.Close()

	input := `{"element":"doc:1","text":"fresh text"}`
	_, err = imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	_, ok := embCache.Get(context.Background(), []byte("fresh text"), cfg)
	assert.True(t, ok, "embedding should have been cached")
}

func TestRun_CountsFailures(t *testing.T) {
	doer := &countingDoer{reply: int64(1)}
	imp := testImporter(t, doer, nil, nil)

	input := strings.Join([]string{
		`{"element":"doc:1","vector":[0.1]}`,
		`not json at all`,
		`{"element":"doc:3"}`, // no text, no vector
		``,
	}, "\n")

	result, err := imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total, "empty lines are skipped")
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 2, result.Failed)
}

func TestRun_EmbedderFailureCountsAsFailed(t *testing.T) {
	doer := &countingDoer{reply: int64(1)}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("provider down")
	}
	imp := testImporter(t, doer, embedder, nil)

	input := `{"element":"doc:1","text":"hello"}`
	result, err := imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, doer.count())
}

func TestRun_PublishesProgressEvents(t *testing.T) {
	doer := &countingDoer{reply: int64(1)}
	broker := events.NewBroker()
	defer broker.Close()
	ch := broker.Subscribe()

	imp := testImporter(t, doer, nil, nil,
		WithBroker(broker),
		WithReportInterval(1),
		WithPoolSize(1),
	)

	input := `{"element":"doc:1","vector":[0.5]}`
	_, err := imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	var types []string
	deadline := time.After(time.Second)
	for len(types) < 3 {
		select {
		case event := <-ch:
			types = append(types, event.Type)
		case <-deadline:
			t.Fatalf("timed out, got %v", types)
		}
	}
	assert.Equal(t, events.TypeImportStart, types[0])
	assert.Contains(t, types, events.TypeImportBatch)
	assert.Equal(t, events.TypeImportDone, types[len(types)-1])
}

func TestRun_ProgressTrailsCompletedInserts(t *testing.T) {
	doer := &gatedDoer{countingDoer: countingDoer{reply: int64(1)}, gate: make(chan struct{})}
	broker := events.NewBroker()
	defer broker.Close()
	ch := broker.Subscribe()

	imp, err := New(vset.New(doer), nil, nil, ai.NewConfig(),
		WithBroker(broker),
		WithReportInterval(1),
		WithPoolSize(1),
	)
	require.NoError(t, err)
	defer imp.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		imp.Run(context.Background(), "docs", strings.NewReader(`{"element":"doc:1","vector":[0.5]}`))
	}()

	select {
	case event := <-ch:
		require.Equal(t, events.TypeImportStart, event.Type)
	case <-time.After(time.Second):
		t.Fatal("no start event")
	}

	// The insert is still blocked in the pool, so no progress may be
	// reported yet.
	select {
	case event := <-ch:
		t.Fatalf("got %s while the insert was still in flight", event.Type)
	case <-time.After(50 * time.Millisecond):
	}

	close(doer.gate)
	<-done

	select {
	case event := <-ch:
		require.Equal(t, events.TypeImportBatch, event.Type)
		data, ok := event.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 1, data["processed"])
	case <-time.After(time.Second):
		t.Fatal("no batch event after the insert completed")
	}
}

func TestRun_UpdatedVersusAdded(t *testing.T) {
	doer := &countingDoer{reply: int64(0)} // server says: existing element updated
	imp := testImporter(t, doer, nil, nil)

	input := `{"element":"doc:1","vector":[0.5]}`
	result, err := imp.Run(context.Background(), "docs", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, result.Added)
}
