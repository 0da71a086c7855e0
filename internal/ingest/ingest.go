// Package ingest pulls headlines from NewsAPI, enriches them and loads
// them into the article store and keyword index.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/google/uuid"

	"github.com/0-0Dibakar/AI-Powered-News/config"
	"github.com/0-0Dibakar/AI-Powered-News/internal/rag"
	"github.com/0-0Dibakar/AI-Powered-News/models"
	"github.com/0-0Dibakar/AI-Powered-News/news/newsapi"
)

// HeadlineSource abstracts the NewsAPI client.
type HeadlineSource interface {
	FetchTopHeadlines(ctx context.Context, category string) ([]newsapi.Article, error)
}

// ArticleStore is the slice of the store the pipeline writes to.
type ArticleStore interface {
	UpsertArticle(ctx context.Context, a models.Article) error
	SetArticleEnrichment(ctx context.Context, id string, sentimentScore float64, sentimentLabel, mainTopic string) error
	UpsertArticleEmbedding(ctx context.Context, articleID, model string, vector []float32) error
	HasSimilarArticleEmbedding(ctx context.Context, vector []float32, threshold float64, window time.Duration) (bool, error)
}

// Indexer receives articles for keyword search.
type Indexer interface {
	IndexArticle(a models.Article) error
}

// dedupThreshold is the cosine similarity above which a freshly fetched
// article is treated as a duplicate of a recent one and skipped.
const (
	dedupThreshold = 0.95
	dedupWindow    = 48 * time.Hour
)

// Pipeline runs one ingestion pass per category.
type Pipeline struct {
	source    HeadlineSource
	store     ArticleStore
	embedder  rag.Embedder
	index     Indexer
	logger    *log.Logger
	model     string
	fetchBody bool
	client    *http.Client
}

func NewPipeline(source HeadlineSource, st ArticleStore, embedder rag.Embedder, index Indexer, logger *log.Logger, cfg config.Config) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}
	return &Pipeline{
		source:    source,
		store:     st,
		embedder:  embedder,
		index:     index,
		logger:    logger,
		model:     cfg.Providers.OpenAI.EmbeddingModel,
		fetchBody: cfg.Ingest.FetchBody,
		client:    &http.Client{Timeout: 20 * time.Second},
	}
}

// Stats summarizes one ingestion pass.
type Stats struct {
	Fetched    int
	Stored     int
	Duplicates int
	Failed     int
}

// Run ingests headlines for each category. A failing category does not
// abort the pass; the error reports the first failure after all
// categories were attempted.
func (p *Pipeline) Run(ctx context.Context, categories []string) (Stats, error) {
	if len(categories) == 0 {
		categories = models.Categories()
	}
	var stats Stats
	var firstErr error
	for _, category := range categories {
		s, err := p.runCategory(ctx, category)
		stats.Fetched += s.Fetched
		stats.Stored += s.Stored
		stats.Duplicates += s.Duplicates
		stats.Failed += s.Failed
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("category %s: %w", category, err)
		}
	}
	p.logger.Printf("pass done fetched=%d stored=%d duplicates=%d failed=%d", stats.Fetched, stats.Stored, stats.Duplicates, stats.Failed)
	return stats, firstErr
}

func (p *Pipeline) runCategory(ctx context.Context, category string) (Stats, error) {
	headlines, err := p.source.FetchTopHeadlines(ctx, category)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Fetched: len(headlines)}
	for _, h := range headlines {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		switch err := p.ingestOne(ctx, category, h); {
		case err == nil:
			stats.Stored++
		case err == errDuplicate:
			stats.Duplicates++
		default:
			stats.Failed++
			p.logger.Printf("ingest %q failed: %v", h.URL, err)
		}
	}
	return stats, nil
}

var errDuplicate = fmt.Errorf("duplicate article")

func (p *Pipeline) ingestOne(ctx context.Context, category string, h newsapi.Article) error {
	if strings.TrimSpace(h.Title) == "" || strings.TrimSpace(h.URL) == "" {
		return fmt.Errorf("headline missing title or url")
	}

	content := CleanText(h.Content)
	if p.fetchBody {
		if body := p.extractBody(ctx, h.URL); body != "" {
			content = body
		}
	}
	if content == "" {
		content = CleanText(h.Description)
	}

	embedText := h.Title
	if content != "" {
		embedText = h.Title + "\n\n" + content
	}
	vector, err := p.embedder.Embed(ctx, embedText)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	dup, err := p.store.HasSimilarArticleEmbedding(ctx, vector, dedupThreshold, dedupWindow)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if dup {
		return errDuplicate
	}

	article := models.Article{
		ID:          articleID(h.URL),
		URL:         h.URL,
		Title:       CleanText(h.Title),
		Content:     content,
		Source:      h.Source.Name,
		Category:    category,
		PublishedAt: h.PublishedAt,
	}
	if article.PublishedAt.IsZero() {
		article.PublishedAt = time.Now().UTC()
	}
	if err := p.store.UpsertArticle(ctx, article); err != nil {
		return fmt.Errorf("store article: %w", err)
	}
	if err := p.store.UpsertArticleEmbedding(ctx, article.ID, p.model, vector); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}

	enrichText := article.Title + " " + content
	sentiment := AnalyzeSentiment(enrichText)
	topic := MainTopic(enrichText)
	if err := p.store.SetArticleEnrichment(ctx, article.ID, sentiment.Score, sentiment.Label, topic); err != nil {
		return fmt.Errorf("store enrichment: %w", err)
	}
	article.SentimentScore = &sentiment.Score
	article.SentimentLabel = sentiment.Label
	article.MainTopic = topic

	if p.index != nil {
		if err := p.index.IndexArticle(article); err != nil {
			p.logger.Printf("index %s failed: %v", article.ID, err)
		}
	}
	return nil
}

// extractBody fetches the article page and runs readability over it.
// Failures degrade to the wire description, never to an ingest error.
func (p *Pipeline) extractBody(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return ""
	}
	return CleanText(article.TextContent)
}

// articleID derives a stable id from the article URL so repeated fetches
// of the same story upsert instead of duplicating.
func articleID(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		return hex.EncodeToString(sum[:])
	}
	return id.String()
}
