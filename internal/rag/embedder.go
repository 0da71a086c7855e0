package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/0-0Dibakar/AI-Powered-News/provider"
)

// Embedder maps text to a fixed-length dense vector. Deterministic for a
// fixed model version: the same text always yields the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProviderEmbedder delegates embedding to the configured LLM provider.
type ProviderEmbedder struct {
	provider provider.Provider
	maxChars int
}

func NewEmbedder(p provider.Provider, maxChars int) *ProviderEmbedder {
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &ProviderEmbedder{provider: p, maxChars: maxChars}
}

// Embed vectorizes a single text. Empty or oversized input fails explicitly
// rather than being truncated: a silently degraded vector would corrupt
// downstream similarity rankings.
func (e *ProviderEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}
	if len(trimmed) > e.maxChars {
		return nil, fmt.Errorf("%w: %d chars, limit %d", ErrInputTooLong, len(trimmed), e.maxChars)
	}

	vecs, err := e.provider.CreateEmbedding(ctx, []string{trimmed})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embedding service returned %d vectors for one input", len(vecs))
	}
	if isZeroVector(vecs[0]) {
		return nil, fmt.Errorf("embedding service returned a zero vector")
	}
	return vecs[0], nil
}

func isZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
