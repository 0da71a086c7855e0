package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEmbedRejectsEmptyInput(t *testing.T) {
	llm := &fakeProvider{}
	e := NewEmbedder(llm, 8000)

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := e.Embed(context.Background(), input); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Embed(%q) err = %v, want ErrEmptyInput", input, err)
		}
	}
	if llm.embedCalls != 0 {
		t.Fatal("provider must not be called for empty input")
	}
}

func TestEmbedRejectsOversizedInput(t *testing.T) {
	e := NewEmbedder(&fakeProvider{}, 100)
	_, err := e.Embed(context.Background(), strings.Repeat("a", 101))
	if !errors.Is(err, ErrInputTooLong) {
		t.Fatalf("err = %v, want ErrInputTooLong", err)
	}
	if !IsValidationError(err) {
		t.Fatal("oversized input must classify as a validation error")
	}
}

func TestEmbedReturnsProviderVector(t *testing.T) {
	llm := &fakeProvider{embeddings: [][]float32{{0.1, 0.2, 0.3}}}
	e := NewEmbedder(llm, 8000)

	vec, err := e.Embed(context.Background(), "  federal reserve rates  ")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestEmbedRejectsZeroVector(t *testing.T) {
	llm := &fakeProvider{embeddings: [][]float32{{0, 0, 0}}}
	e := NewEmbedder(llm, 8000)

	if _, err := e.Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected error for zero vector")
	}
}

func TestEmbedRejectsWrongVectorCount(t *testing.T) {
	llm := &fakeProvider{embeddings: [][]float32{{0.1}, {0.2}}}
	e := NewEmbedder(llm, 8000)

	if _, err := e.Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected error for mismatched vector count")
	}
}

func TestEmbedPropagatesProviderError(t *testing.T) {
	boom := errors.New("rate limited")
	e := NewEmbedder(&fakeProvider{embedErr: boom}, 8000)

	_, err := e.Embed(context.Background(), "query")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
	if IsValidationError(err) {
		t.Fatal("provider failure must not classify as a validation error")
	}
}
