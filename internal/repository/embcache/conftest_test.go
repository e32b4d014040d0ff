package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/db"
	"github.com/hirelens/hirelens/internal/domain"
)

type setCall struct {
	value []byte
	ttl   time.Duration
}

// mockStore records SetWithTTL calls and serves Get from them.
type mockStore struct {
	getErr error
	setErr error
	sets   map[string]setCall
}

func newMockStore() *mockStore {
	return &mockStore{sets: make(map[string]setCall)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	call, ok := m.sets[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return call.value, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets[key] = setCall{value: value, ttl: ttl}
	return nil
}

type mockEmbedder struct {
	calls  int
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

const (
	testModel = "test-model"
	testTTL   = 24 * time.Hour
)

func newTestCache(t *testing.T) (*CachedEmbedder, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := newMockStore()
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 7,
	}}
	return New(inner, ms, testModel, testTTL, nil, zap.NewNop()), ms, inner
}
