package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/0-0Dibakar/AI-Powered-News/models"
	"github.com/0-0Dibakar/AI-Powered-News/provider"
)

// noInfoMarker is the phrase the model is instructed to emit when the
// context does not answer the question.
const noInfoMarker = "no relevant information"

// SynthesisResult carries the generated answer and its reliability estimate.
type SynthesisResult struct {
	Answer     string
	Confidence float64
	// Grounded is false when the model declared the context insufficient.
	Grounded bool
}

// Synthesizer produces a natural-language answer grounded in retrieved
// articles. Every claim must be traceable to the articles passed in; the
// prompt forbids outside knowledge.
type Synthesizer struct {
	llm            provider.Provider
	contextSnippet int
}

func NewSynthesizer(llm provider.Provider, contextSnippet int) *Synthesizer {
	if contextSnippet <= 0 {
		contextSnippet = 500
	}
	return &Synthesizer{llm: llm, contextSnippet: contextSnippet}
}

const synthesisSystemPrompt = `You are a news assistant. Answer the user's question using ONLY the numbered news excerpts provided. Every factual claim in your answer must come from the excerpts. If the excerpts do not contain the information needed to answer, reply exactly: "No relevant information found in the available news sources." Do not use outside knowledge. Keep the answer concise.`

// Synthesize generates an answer for the query from the retrieved hits.
// Confidence is deterministic: it grows with the top similarity score and
// with the number of corroborating sources, and stays within [0,1].
func (s *Synthesizer) Synthesize(ctx context.Context, query string, retrieval RetrievalResult) (SynthesisResult, error) {
	if retrieval.Empty() {
		return SynthesisResult{Answer: noResultsAnswer, Confidence: 0, Grounded: false}, nil
	}

	var b strings.Builder
	for i, hit := range retrieval.Hits {
		fmt.Fprintf(&b, "[%d] Source: %s\nTitle: %s\nContent: %s\n\n",
			i+1, hit.Article.Source, hit.Article.Title, s.snippet(hit.Article))
	}
	userPrompt := fmt.Sprintf("News excerpts:\n\n%sQuestion: %s", b.String(), query)

	answer, err := s.llm.Complete(ctx, synthesisSystemPrompt, userPrompt)
	if err != nil {
		return SynthesisResult{}, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.Contains(strings.ToLower(answer), noInfoMarker) {
		return SynthesisResult{Answer: noResultsAnswer, Confidence: 0, Grounded: false}, nil
	}

	return SynthesisResult{
		Answer:     answer,
		Confidence: ConfidenceScore(retrieval.TopScore(), len(retrieval.Hits)),
		Grounded:   true,
	}, nil
}

// snippet prefers the article body, falling back to its cached summary or
// title, truncated to the configured context window.
func (s *Synthesizer) snippet(a models.Article) string {
	text := a.Content
	if text == "" {
		text = a.Summary
	}
	if text == "" {
		text = a.Title
	}
	runes := []rune(text)
	if len(runes) > s.contextSnippet {
		return string(runes[:s.contextSnippet])
	}
	return text
}

// ConfidenceScore maps retrieval quality to [0,1]. Monotone in the top
// similarity and in the number of corroborating sources (capped at five),
// and stable: the same inputs always produce the same score.
func ConfidenceScore(topScore float64, sourceCount int) float64 {
	if sourceCount <= 0 || topScore <= 0 {
		return 0
	}
	if sourceCount > 5 {
		sourceCount = 5
	}
	score := topScore*0.7 + float64(sourceCount)*0.06
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
