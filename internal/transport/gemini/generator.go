// Package gemini implements the generative model provider over the Google GenAI API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hirelens/hirelens/internal/domain"
	"github.com/hirelens/hirelens/internal/metrics"
)

const defaultModel = "gemini-2.5-flash"

// Generator wraps the Google GenAI client behind the query usecase contract.
type Generator struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *zap.Logger
}

// Config holds the generative model settings.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	Logger      *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:      client,
		modelName:   model,
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}, nil
}

// Generate submits the system instruction plus the conversation history and
// returns a single text completion. Single-shot: no retry.
func (g *Generator) Generate(ctx context.Context, system string, turns []domain.Turn) (string, error) {
	contents := buildContents(turns)
	if len(contents) == 0 {
		return "", fmt.Errorf("no conversation content: %w", domain.ErrGenerationProvider)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(g.temperature),
		CandidateCount: 1,
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	start := time.Now()

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.modelName, "error").Inc()
		return "", fmt.Errorf("generate content: %w: %w", err, domain.ErrGenerationProvider)
	}

	output := extractText(resp)
	if output == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(g.modelName, "error").Inc()
		return "", fmt.Errorf("empty model response: %w", domain.ErrGenerationProvider)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.modelName, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.modelName).Observe(duration.Seconds())

	g.logger.Debug("generated completion",
		zap.String("model", g.modelName),
		zap.Duration("latency", duration),
		zap.Int("response_length", len(output)),
	)

	return output, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.modelName
}

// buildContents maps conversation turns onto GenAI contents. Assistant turns
// become the model role; anything else is treated as user input.
func buildContents(turns []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		role := genai.RoleUser
		if t.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Content}},
		})
	}
	return contents
}

// extractText concatenates the textual parts of the first candidates.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
