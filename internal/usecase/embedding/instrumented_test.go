package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/domain"
)

type mockEmbedder struct {
	calls  int
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

type mockChecker struct {
	checkErr error
	recorded int64
}

func (m *mockChecker) Check(_ context.Context) error { return m.checkErr }
func (m *mockChecker) Record(tokens int64)           { m.recorded += tokens }
func (m *mockChecker) RemainingDaily() int64         { return 100 }
func (m *mockChecker) RemainingMonthly() int64       { return 1000 }

func TestInstrumentedEmbed_RecordsTokens(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 5,
		TotalTokens:  7,
	}}
	checker := &mockChecker{}
	emb := NewInstrumentedEmbedder(inner, "openai", "test-model", checker, zap.NewNop())

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 2 {
		t.Errorf("expected passthrough embedding, got %v", result.Embedding)
	}
	if checker.recorded != 7 {
		t.Errorf("expected 7 tokens recorded, got %d", checker.recorded)
	}
}

func TestInstrumentedEmbed_BudgetRejects(t *testing.T) {
	inner := &mockEmbedder{}
	checker := &mockChecker{checkErr: domain.ErrEmbeddingQuotaExceeded}
	emb := NewInstrumentedEmbedder(inner, "openai", "test-model", checker, zap.NewNop())

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner embedder must not be called when budget rejects")
	}
}

func TestInstrumentedEmbed_InnerErrorNotRecorded(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	checker := &mockChecker{}
	emb := NewInstrumentedEmbedder(inner, "openai", "test-model", checker, zap.NewNop())

	_, err := emb.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if checker.recorded != 0 {
		t.Errorf("expected no tokens recorded on failure, got %d", checker.recorded)
	}
}

func TestInstrumentedEmbed_NilBudget(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}, TotalTokens: 3}}
	emb := NewInstrumentedEmbedder(inner, "openai", "test-model", nil, zap.NewNop())

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalTokens != 3 {
		t.Errorf("expected passthrough result, got %+v", result)
	}
}
