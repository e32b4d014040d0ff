// Package ingest turns an uploaded résumé into searchable fragments tagged
// with candidate metadata and GitHub-derived skills.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/domain"
	"github.com/hirelens/hirelens/internal/logger"
)

// Request carries one résumé upload.
type Request struct {
	Document       []byte
	Name           string
	Role           string
	GitHubUsername string
}

// Service runs the ingestion pipeline: skills, text, chunks, embeddings,
// fragment writes.
type Service struct {
	skills    SkillSource
	extractor TextExtractor
	chunker   Chunker
	embedder  Embedder
	fragments FragmentWriter
}

// New creates the ingestion service.
func New(
	skills SkillSource,
	extractor TextExtractor,
	chunker Chunker,
	embedder Embedder,
	fragments FragmentWriter,
) *Service {
	return &Service{
		skills:    skills,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		fragments: fragments,
	}
}

// Ingest persists one fragment per chunk of the document and returns the
// extracted skill tags. Skill extraction and text extraction run before any
// persistence; a failure while embedding or writing chunk k leaves chunks
// 1..k-1 persisted (no rollback).
func (s *Service) Ingest(ctx context.Context, req Request) ([]string, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)

	skills, err := s.skills.Skills(ctx, req.GitHubUsername)
	if err != nil {
		return nil, fmt.Errorf("extract skills for %s: %w", req.GitHubUsername, err)
	}

	text, err := s.extractor.Text(ctx, req.Document)
	if err != nil {
		return nil, fmt.Errorf("extract document text: %w", err)
	}

	chunks := s.chunker.Split(text)
	log.Info("Ingesting resume",
		zap.String("candidate", req.Name),
		zap.String("role", req.Role),
		zap.Int("chunks", len(chunks)),
		zap.Strings("skills", skills),
	)

	for i, chunk := range chunks {
		result, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %d: %w", i+1, len(chunks), err)
		}

		frag := &domain.Fragment{
			Vector: result.Embedding,
			Text:   chunk,
			Name:   req.Name,
			Role:   req.Role,
			Skills: skills,
		}
		if err := s.fragments.Insert(ctx, frag); err != nil {
			return nil, fmt.Errorf("persist chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	return skills, nil
}

// validate reports every missing required input in one message.
func validate(req Request) error {
	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Role == "" {
		missing = append(missing, "role")
	}
	if req.GitHubUsername == "" {
		missing = append(missing, "githubUsername")
	}
	if len(req.Document) == 0 {
		missing = append(missing, "resume")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s: %w",
			strings.Join(missing, ", "), domain.ErrValidation)
	}
	return nil
}
