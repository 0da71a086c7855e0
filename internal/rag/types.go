package rag

import (
	"github.com/0-0Dibakar/AI-Powered-News/models"
)

// Status classifies the outcome of one query.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusNoResults Status = "no_results"
	StatusError     Status = "error"
)

// Query is one user question, alive for the duration of a single request.
type Query struct {
	Text     string `json:"query"`
	Category string `json:"category,omitempty"`
}

// ScoredArticle pairs a retrieved article with its similarity score.
type ScoredArticle struct {
	Article models.Article `json:"article"`
	Score   float64        `json:"score"`
}

// RetrievalResult is the ranked outcome of one retrieval pass. Empty is a
// normal outcome, not an error.
type RetrievalResult struct {
	Hits []ScoredArticle
}

// Empty reports whether retrieval produced no hits above the threshold.
func (r RetrievalResult) Empty() bool { return len(r.Hits) == 0 }

// TopScore returns the best similarity in the result, 0 when empty.
func (r RetrievalResult) TopScore() float64 {
	if len(r.Hits) == 0 {
		return 0
	}
	return r.Hits[0].Score
}

// Response is the public answer contract. It is built once per query and
// never mutated afterwards.
type Response struct {
	Answer          string           `json:"answer"`
	Sources         []models.Article `json:"sources"`
	ConfidenceScore float64          `json:"confidence_score"`
	Status          Status           `json:"status"`
}

// Templated answers for the non-success paths.
const (
	noResultsAnswer = "No relevant information found in the available news sources."
	errorAnswer     = ""
)
