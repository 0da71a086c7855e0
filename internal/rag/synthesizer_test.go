package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/0-0Dibakar/AI-Powered-News/models"
)

// fakeProvider scripts the LLM responses for tests.
type fakeProvider struct {
	embeddings    [][]float32
	embedErr      error
	embedCalls    int
	completion    string
	completeErr   error
	completeCalls int
	lastSystem    string
	lastUser      string
}

func (f *fakeProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embeddings, nil
}

func (f *fakeProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.completeCalls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completion, nil
}

func hitsOf(articles ...models.Article) RetrievalResult {
	var r RetrievalResult
	for i, a := range articles {
		r.Hits = append(r.Hits, ScoredArticle{Article: a, Score: 0.9 - float64(i)*0.1})
	}
	return r
}

func TestSynthesizeGroundedAnswer(t *testing.T) {
	llm := &fakeProvider{completion: "The central bank held rates steady."}
	s := NewSynthesizer(llm, 500)

	result, err := s.Synthesize(context.Background(), "what did the fed do",
		hitsOf(models.Article{ID: "a1", Source: "Reuters", Title: "Fed holds rates", Content: "The central bank held rates steady on Wednesday."}))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !result.Grounded {
		t.Fatal("expected a grounded result")
	}
	if result.Answer != "The central bank held rates steady." {
		t.Fatalf("answer = %q", result.Answer)
	}
	if !strings.Contains(llm.lastUser, "[1] Source: Reuters") {
		t.Fatalf("prompt missing numbered excerpt: %q", llm.lastUser)
	}
	if !strings.Contains(llm.lastUser, "Question: what did the fed do") {
		t.Fatalf("prompt missing question: %q", llm.lastUser)
	}
}

func TestSynthesizeDetectsNoInformationMarker(t *testing.T) {
	llm := &fakeProvider{completion: "No relevant information found in the available news sources."}
	s := NewSynthesizer(llm, 500)

	result, err := s.Synthesize(context.Background(), "who won the match",
		hitsOf(models.Article{ID: "a1", Title: "Markets rally", Content: "Stocks rose."}))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.Grounded {
		t.Fatal("marker answer must not be grounded")
	}
	if result.Confidence != 0 {
		t.Fatalf("confidence = %f, want 0", result.Confidence)
	}
}

func TestSynthesizeEmptyRetrievalSkipsLLM(t *testing.T) {
	llm := &fakeProvider{completion: "should never be used"}
	s := NewSynthesizer(llm, 500)

	result, err := s.Synthesize(context.Background(), "anything", RetrievalResult{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if llm.completeCalls != 0 {
		t.Fatal("LLM must not be called for empty retrieval")
	}
	if result.Grounded || result.Answer != noResultsAnswer {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSynthesizePropagatesLLMError(t *testing.T) {
	llm := &fakeProvider{completeErr: errors.New("upstream 503")}
	s := NewSynthesizer(llm, 500)

	_, err := s.Synthesize(context.Background(), "anything",
		hitsOf(models.Article{ID: "a1", Title: "t", Content: "c"}))
	if err == nil {
		t.Fatal("expected error from failing LLM")
	}
}

func TestSynthesizeTruncatesContext(t *testing.T) {
	llm := &fakeProvider{completion: "ok"}
	s := NewSynthesizer(llm, 10)

	_, err := s.Synthesize(context.Background(), "q",
		hitsOf(models.Article{ID: "a1", Title: "t", Content: strings.Repeat("x", 100)}))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if strings.Contains(llm.lastUser, strings.Repeat("x", 11)) {
		t.Fatal("content not truncated to the snippet limit")
	}
}

func TestSnippetFallsBackToSummaryThenTitle(t *testing.T) {
	s := NewSynthesizer(nil, 500)
	if got := s.snippet(models.Article{Summary: "the summary", Title: "the title"}); got != "the summary" {
		t.Fatalf("snippet = %q, want summary", got)
	}
	if got := s.snippet(models.Article{Title: "the title"}); got != "the title" {
		t.Fatalf("snippet = %q, want title", got)
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name     string
		topScore float64
		sources  int
		want     float64
	}{
		{"no sources", 0.9, 0, 0},
		{"no score", 0, 3, 0},
		{"single strong hit", 0.9, 1, 0.69},
		{"full house", 0.9, 5, 0.93},
		{"sources capped at five", 0.9, 20, 0.93},
		{"clamped to one", 1.0, 5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceScore(tt.topScore, tt.sources)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("ConfidenceScore(%f, %d) = %f, want %f", tt.topScore, tt.sources, got, tt.want)
			}
		})
	}
}

func TestConfidenceScoreIsMonotone(t *testing.T) {
	for score := 0.1; score < 0.9; score += 0.1 {
		if ConfidenceScore(score+0.1, 3) < ConfidenceScore(score, 3) {
			t.Fatalf("confidence decreased as top score rose past %f", score)
		}
	}
	for n := 1; n < 5; n++ {
		if ConfidenceScore(0.5, n+1) < ConfidenceScore(0.5, n) {
			t.Fatalf("confidence decreased as source count rose past %d", n)
		}
	}
}
