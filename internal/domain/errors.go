package domain

import "errors"

var (
	// ErrValidation signals missing or malformed caller input. Reported
	// before any external call is made.
	ErrValidation = errors.New("validation failed")
	// ErrVectorDimMismatch signals a vector that does not match the
	// collection's configured dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProvider signals an embedding service failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a generative model failure.
	ErrGenerationProvider = errors.New("generation provider error")
	// ErrProfileProvider signals a profile listing (GitHub) failure.
	ErrProfileProvider = errors.New("profile provider error")
	// ErrTextExtraction signals a document-to-text extraction failure.
	ErrTextExtraction = errors.New("text extraction failed")
	// ErrEmbeddingQuotaExceeded signals that the configured token budget
	// for the embedding provider is exhausted.
	ErrEmbeddingQuotaExceeded = errors.New("embedding token budget exceeded")
	// ErrStoreUnavailable signals a vector store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsDependencyFailure reports whether err originates in an external
// collaborator rather than in caller input.
func IsDependencyFailure(err error) bool {
	return errors.Is(err, ErrEmbeddingProvider) ||
		errors.Is(err, ErrGenerationProvider) ||
		errors.Is(err, ErrProfileProvider) ||
		errors.Is(err, ErrTextExtraction) ||
		errors.Is(err, ErrStoreUnavailable)
}
