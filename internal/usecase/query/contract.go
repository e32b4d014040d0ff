package query

import (
	"context"

	"github.com/hirelens/hirelens/internal/domain"
)

// Embedder vectorizes the retrieval query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// FragmentSearcher retrieves the fragments nearest to a query vector.
type FragmentSearcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]domain.RetrievedFragment, error)
}

// Generator produces a completion from a system instruction and history.
type Generator interface {
	Generate(ctx context.Context, system string, turns []domain.Turn) (string, error)
}
