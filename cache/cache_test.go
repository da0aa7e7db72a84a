package cache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/vectorview/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with injectable failures.
type fakeStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	scores map[string]map[string]float64

	failHGet error
	failHSet error
	failZAdd error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes: make(map[string]map[string]string),
		scores: make(map[string]map[string]float64),
	}
}

func (s *fakeStore) HGet(ctx context.Context, key, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failHGet != nil {
		return "", s.failHGet
	}
	val, ok := s.hashes[key][field]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *fakeStore) HSet(ctx context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failHSet != nil {
		return s.failHSet
	}
	if s.hashes[key] == nil {
		s.hashes[key] = make(map[string]string)
	}
	s.hashes[key][field] = value
	return nil
}

func (s *fakeStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failZAdd != nil {
		return s.failZAdd
	}
	if s.scores[key] == nil {
		s.scores[key] = make(map[string]float64)
	}
	s.scores[key][member] = score
	return nil
}

func (s *fakeStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.hashes, key)
		delete(s.scores, key)
	}
	return nil
}

func (s *fakeStore) score(member string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.scores[LogKey][member]
	return score, ok
}

func testConfig() *ai.Config {
	return ai.NewConfig(ai.WithOpenAIModel("text-embedding-3-small"))
}

func TestCache_RoundTrip(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	ctx := context.Background()
	cfg := testConfig()

	want := []float32{0.1, 0.2, 0.3}
	c.Set(ctx, []byte("hello world"), want, cfg)

	got, ok := c.Get(ctx, []byte("hello world"), cfg)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCache_MissOnUnknownInput(t *testing.T) {
	c := New(newFakeStore())

	vec, ok := c.Get(context.Background(), []byte("never seen"), testConfig())
	assert.False(t, ok)
	assert.Nil(t, vec)
}

func TestCache_NilStoreIsAlwaysMiss(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	cfg := testConfig()

	// Set must be a silent no-op, Get a miss; neither may panic.
	c.Set(ctx, []byte("in"), []float32{1}, cfg)
	vec, ok := c.Get(ctx, []byte("in"), cfg)
	assert.False(t, ok)
	assert.Nil(t, vec)

	require.NoError(t, c.Clear(ctx))
}

func TestCache_FailOpenOnReadError(t *testing.T) {
	store := newFakeStore()
	store.failHGet = errors.New("connection refused")
	c := New(store)

	vec, ok := c.Get(context.Background(), []byte("in"), testConfig())
	assert.False(t, ok)
	assert.Nil(t, vec)
}

func TestCache_FailSilentOnWriteError(t *testing.T) {
	store := newFakeStore()
	store.failHSet = errors.New("connection refused")
	c := New(store)
	ctx := context.Background()
	cfg := testConfig()

	c.Set(ctx, []byte("in"), []float32{1, 2}, cfg)

	// Write was abandoned: nothing observable changed, including recency.
	store.failHSet = nil
	_, ok := c.Get(ctx, []byte("in"), cfg)
	assert.False(t, ok)
	_, tracked := store.score(HashField([]byte("in"), cfg))
	assert.False(t, tracked)
}

func TestCache_MalformedStoredValueIsMiss(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	ctx := context.Background()
	cfg := testConfig()

	field := HashField([]byte("in"), cfg)
	require.NoError(t, store.HSet(ctx, HashKey, field, "not json"))

	vec, ok := c.Get(ctx, []byte("in"), cfg)
	assert.False(t, ok)
	assert.Nil(t, vec)
}

func TestCache_RecencyBumpedOnWriteAndHit(t *testing.T) {
	store := newFakeStore()
	current := time.UnixMilli(1_000)
	c := New(store, WithClock(func() time.Time { return current }))
	ctx := context.Background()
	cfg := testConfig()
	field := HashField([]byte("in"), cfg)

	c.Set(ctx, []byte("in"), []float32{1}, cfg)
	score, ok := store.score(field)
	require.True(t, ok)
	assert.Equal(t, float64(1_000), score)

	current = time.UnixMilli(5_000)
	_, hit := c.Get(ctx, []byte("in"), cfg)
	require.True(t, hit)
	score, _ = store.score(field)
	assert.Equal(t, float64(5_000), score)
}

func TestCache_RecencyFailureDoesNotFailHit(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	ctx := context.Background()
	cfg := testConfig()

	c.Set(ctx, []byte("in"), []float32{1}, cfg)

	store.failZAdd = errors.New("connection refused")
	vec, ok := c.Get(ctx, []byte("in"), cfg)
	assert.True(t, ok)
	assert.Equal(t, []float32{1}, vec)
}

// Colliding inputs share a field, so the second Set overwrites the first.
// Current behavior, asserted on purpose.
func TestCache_CollidingInputsOverwrite(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	ctx := context.Background()
	cfg := testConfig()

	shared := bytes.Repeat([]byte("a"), 30)
	one := append(append([]byte{}, shared...), []byte(" first")...)
	two := append(append([]byte{}, shared...), []byte(" second")...)

	c.Set(ctx, one, []float32{1, 1, 1}, cfg)
	c.Set(ctx, two, []float32{2, 2, 2}, cfg)

	// The first input now answers with the second input's vector.
	vec, ok := c.Get(ctx, one, cfg)
	require.True(t, ok)
	assert.Equal(t, []float32{2, 2, 2}, vec)
}

func TestCache_DigestFieldsAvoidCollision(t *testing.T) {
	store := newFakeStore()
	c := New(store, WithDigestFields())
	ctx := context.Background()
	cfg := testConfig()

	shared := bytes.Repeat([]byte("a"), 30)
	one := append(append([]byte{}, shared...), []byte(" first")...)
	two := append(append([]byte{}, shared...), []byte(" second")...)

	c.Set(ctx, one, []float32{1}, cfg)
	c.Set(ctx, two, []float32{2}, cfg)

	vec, ok := c.Get(ctx, one, cfg)
	require.True(t, ok)
	assert.Equal(t, []float32{1}, vec)
}

func TestCache_Clear(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	ctx := context.Background()
	cfg := testConfig()

	c.Set(ctx, []byte("a"), []float32{1}, cfg)
	c.Set(ctx, []byte("b"), []float32{2}, cfg)

	require.NoError(t, c.Clear(ctx))

	_, ok := c.Get(ctx, []byte("a"), cfg)
	assert.False(t, ok)
	_, tracked := store.score(HashField([]byte("a"), cfg))
	assert.False(t, tracked)
}
