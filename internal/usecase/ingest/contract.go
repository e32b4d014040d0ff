package ingest

import (
	"context"

	"github.com/hirelens/hirelens/internal/domain"
)

// SkillSource derives a candidate's skill tags from an external profile.
type SkillSource interface {
	Skills(ctx context.Context, username string) ([]string, error)
}

// TextExtractor converts a document's raw bytes into plain text.
type TextExtractor interface {
	Text(ctx context.Context, doc []byte) (string, error)
}

// Chunker splits document text into overlapping fragments.
type Chunker interface {
	Split(text string) []string
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// FragmentWriter persists fragments into the vector collection.
type FragmentWriter interface {
	Insert(ctx context.Context, frag *domain.Fragment) error
}
