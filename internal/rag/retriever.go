package rag

import (
	"math"
	"sort"

	"github.com/0-0Dibakar/AI-Powered-News/internal/store"
)

// Retriever ranks candidate articles against a query vector.
//
// Similarity is cosine: article lengths vary widely, so magnitude must not
// influence the ranking. Ties are broken by published_at descending
// (fresher news first), then id for a total order.
type Retriever struct{}

// Retrieve scores every candidate, drops those below minScore, and returns
// at most k hits, best first. An empty result is a normal outcome and is
// distinguishable from a failure because no error accompanies it.
func (Retriever) Retrieve(queryVector []float32, candidates []store.Candidate, k int, minScore float64) RetrievalResult {
	if k <= 0 {
		k = 5
	}
	hits := make([]ScoredArticle, 0, len(candidates))
	for _, c := range candidates {
		score := CosineSimilarity(queryVector, c.Vector)
		if score < minScore {
			continue
		}
		hits = append(hits, ScoredArticle{Article: c.Article, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if !hits[i].Article.PublishedAt.Equal(hits[j].Article.PublishedAt) {
			return hits[i].Article.PublishedAt.After(hits[j].Article.PublishedAt)
		}
		return hits[i].Article.ID > hits[j].Article.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return RetrievalResult{Hits: hits}
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched dimensions or a zero-norm operand score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
