package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0-0Dibakar/AI-Powered-News/config"
	"github.com/0-0Dibakar/AI-Powered-News/models"
	"github.com/0-0Dibakar/AI-Powered-News/internal/store"
)

// DocumentStore is the slice of the article store the orchestrator needs.
type DocumentStore interface {
	CandidatesForRetrieval(ctx context.Context, category string) ([]store.Candidate, error)
	RecordSearchQuery(ctx context.Context, rec store.SearchQueryRecord) error
}

// AnswerSynthesizer generates a grounded answer from retrieved articles.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, query string, retrieval RetrievalResult) (SynthesisResult, error)
}

// ResponseCache is an optional cache for assembled responses.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Orchestrator coordinates one query through embedding, retrieval and
// synthesis. It holds no cross-request state: every request owns its Query
// and Response for the request's lifetime only.
type Orchestrator struct {
	store     DocumentStore
	embedder  Embedder
	retriever Retriever
	synth     AnswerSynthesizer
	cache     ResponseCache
	metrics   *Metrics
	logger    *log.Logger

	topK         int
	minScore     float64
	embedRetries int
	deadline     time.Duration
}

// NewOrchestrator wires the pipeline. cache and metrics may be nil.
func NewOrchestrator(st DocumentStore, embedder Embedder, synth AnswerSynthesizer, cache ResponseCache, metrics *Metrics, logger *log.Logger, cfg config.RAGConfig) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	cfg = cfg.Normalize()
	return &Orchestrator{
		store:        st,
		embedder:     embedder,
		synth:        synth,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		topK:         cfg.TopK,
		minScore:     cfg.MinScore,
		embedRetries: cfg.EmbedRetries,
		deadline:     cfg.QueryDeadline,
	}
}

// Handle answers one query. It returns an error only for validation
// failures; every downstream failure is mapped into a well-formed Response
// with status=error, so the caller always has something to return.
//
// Per-request states: received -> embedding -> retrieving -> synthesizing
// -> done. Any stage failure goes straight to done with status=error.
func (o *Orchestrator) Handle(ctx context.Context, q Query) (Response, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Response{}, ErrEmptyQuery
	}
	if q.Category != "" && !models.ValidCategory(q.Category) {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownCategory, q.Category)
	}

	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()
	start := time.Now()

	cacheKey := responseCacheKey(q)
	if o.cache != nil {
		if raw, ok, err := o.cache.Get(ctx, cacheKey); err == nil && ok {
			var resp Response
			if json.Unmarshal(raw, &resp) == nil {
				o.finish(ctx, q, resp, start, true)
				return resp, nil
			}
		}
	}

	o.logger.Printf("state=embedding query=%q category=%q", q.Text, q.Category)
	vector, err := o.embedWithRetry(ctx, q.Text)
	if err != nil {
		o.logger.Printf("state=done status=error stage=embedding err=%v", err)
		resp := errorResponse()
		o.finish(ctx, q, resp, start, false)
		return resp, nil
	}

	o.logger.Printf("state=retrieving dims=%d", len(vector))
	candidates, err := o.store.CandidatesForRetrieval(ctx, q.Category)
	if err != nil {
		o.logger.Printf("state=done status=error stage=retrieval err=%v", err)
		resp := errorResponse()
		o.finish(ctx, q, resp, start, false)
		return resp, nil
	}
	retrieval := o.retriever.Retrieve(vector, candidates, o.topK, o.minScore)
	if retrieval.Empty() {
		// Nothing cleared the threshold. Short-circuit without invoking the
		// synthesizer so there is no chance of an ungrounded answer.
		o.logger.Printf("state=done status=no_results candidates=%d", len(candidates))
		resp := noResultsResponse()
		o.cacheSet(ctx, cacheKey, resp)
		o.finish(ctx, q, resp, start, false)
		return resp, nil
	}

	o.logger.Printf("state=synthesizing hits=%d top_score=%.3f", len(retrieval.Hits), retrieval.TopScore())
	synthesis, err := o.synth.Synthesize(ctx, q.Text, retrieval)
	if err != nil {
		o.logger.Printf("state=done status=error stage=synthesis err=%v", err)
		resp := errorResponse()
		o.finish(ctx, q, resp, start, false)
		return resp, nil
	}
	if !synthesis.Grounded {
		o.logger.Printf("state=done status=no_results reason=ungrounded")
		resp := noResultsResponse()
		o.cacheSet(ctx, cacheKey, resp)
		o.finish(ctx, q, resp, start, false)
		return resp, nil
	}

	sources := make([]models.Article, len(retrieval.Hits))
	for i, hit := range retrieval.Hits {
		sources[i] = hit.Article
	}
	resp := Response{
		Answer:          synthesis.Answer,
		Sources:         sources,
		ConfidenceScore: synthesis.Confidence,
		Status:          StatusSuccess,
	}
	o.logger.Printf("state=done status=success sources=%d confidence=%.2f", len(sources), resp.ConfidenceScore)
	o.cacheSet(ctx, cacheKey, resp)
	o.finish(ctx, q, resp, start, false)
	return resp, nil
}

// embedWithRetry retries transient embedding failures a bounded number of
// times with linear backoff. Validation and context errors are not retried.
func (o *Orchestrator) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	attempts := 1 + o.embedRetries
	for attempt := 1; attempt <= attempts; attempt++ {
		vector, err := o.embedder.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		if IsValidationError(err) || ctx.Err() != nil {
			break
		}
		if attempt == attempts {
			break
		}
		backoff := time.Duration(attempt) * 200 * time.Millisecond
		o.logger.Printf("embedding attempt %d/%d failed, retrying in %s: %v", attempt, attempts, backoff, err)
		select {
		case <-ctx.Done():
			return nil, &UpstreamError{Stage: "embedding", Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}
	return nil, &UpstreamError{Stage: "embedding", Err: lastErr}
}

func (o *Orchestrator) cacheSet(ctx context.Context, key string, resp Response) {
	if o.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := o.cache.Set(ctx, key, raw); err != nil {
		o.logger.Printf("response cache set failed: %v", err)
	}
}

// finish records metrics and the analytics query log. Logging failures
// never fail the request.
func (o *Orchestrator) finish(ctx context.Context, q Query, resp Response, start time.Time, cached bool) {
	elapsed := time.Since(start)
	o.metrics.observe(resp.Status, elapsed.Seconds(), len(resp.Sources))
	rec := store.SearchQueryRecord{
		ID:             uuid.NewString(),
		Query:          q.Text,
		ResultCount:    len(resp.Sources),
		ResponseTimeMS: float64(elapsed.Microseconds()) / 1000.0,
		Cached:         cached,
	}
	if err := o.store.RecordSearchQuery(ctx, rec); err != nil {
		o.logger.Printf("query log failed: %v", err)
	}
}

func errorResponse() Response {
	return Response{Answer: errorAnswer, Sources: []models.Article{}, ConfidenceScore: 0, Status: StatusError}
}

func noResultsResponse() Response {
	return Response{Answer: noResultsAnswer, Sources: []models.Article{}, ConfidenceScore: 0, Status: StatusNoResults}
}

func responseCacheKey(q Query) string {
	sum := sha256.Sum256([]byte(q.Category + "\x00" + q.Text))
	return "rag:resp:" + hex.EncodeToString(sum[:])
}
