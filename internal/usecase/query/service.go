// Package query answers hiring questions by retrieving the most relevant
// resume fragments and conditioning a generative model on them.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/domain"
	"github.com/hirelens/hirelens/internal/logger"
)

// Service is the retrieval-augmented query orchestrator.
type Service struct {
	embedder  Embedder
	fragments FragmentSearcher
	generator Generator
	variant   Variant
	topK      int
}

// New creates the query service. topK is the retrieval depth.
func New(embedder Embedder, fragments FragmentSearcher, generator Generator, variant Variant, topK int) *Service {
	return &Service{
		embedder:  embedder,
		fragments: fragments,
		generator: generator,
		variant:   variant,
		topK:      topK,
	}
}

// Answer produces a single plain-text reply for the conversation. The latest
// turn's content drives retrieval; the full turn sequence goes to the model
// as history. Retrieval failures degrade to an empty context block instead of
// failing the request; generation failures are terminal.
func (s *Service) Answer(ctx context.Context, turns []domain.Turn) (string, error) {
	question := domain.LatestContent(turns)

	fragments := s.retrieve(ctx, question)
	instruction := buildInstruction(s.variant, fragments, question)

	reply, err := s.generator.Generate(ctx, instruction, turns)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	return collapseNewlines(reply), nil
}

// retrieve embeds the question and searches the fragment collection. Any
// failure returns nil so the caller proceeds with an empty context.
func (s *Service) retrieve(ctx context.Context, question string) []domain.RetrievedFragment {
	log := logger.FromContext(ctx)

	result, err := s.embedder.Embed(ctx, question)
	if err != nil {
		log.Warn("Query embedding failed, proceeding without context", zap.Error(err))
		return nil
	}

	fragments, err := s.fragments.Search(ctx, result.Embedding, s.topK)
	if err != nil {
		log.Warn("Fragment retrieval failed, proceeding without context", zap.Error(err))
		return nil
	}

	log.Debug("Retrieved context fragments", zap.Int("count", len(fragments)))
	return fragments
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// collapseNewlines flattens the model reply into a single line payload.
func collapseNewlines(s string) string {
	return strings.TrimSpace(newlineReplacer.Replace(s))
}
