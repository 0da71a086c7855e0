package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/0-0Dibakar/AI-Powered-News/models"
)

type Store struct {
	DB *sql.DB
}

// ErrNotFound is returned when a lookup by article id matches nothing.
// The store never fabricates a placeholder article.
var ErrNotFound = errors.New("article not found")

// DefaultEmbeddingDimensions indicates the expected length of semantic vectors stored in pgvector columns.
const DefaultEmbeddingDimensions = 1536

// Candidate pairs an article with its stored embedding. It is the unit the
// retriever scores.
type Candidate struct {
	Article models.Article
	Vector  []float32
}

// SearchQueryRecord captures one answered query for analytics.
type SearchQueryRecord struct {
	ID             string
	Query          string
	ResultCount    int
	ResponseTimeMS float64
	Cached         bool
	CreatedAt      time.Time
}

func New(ctx context.Context) (*Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := getenvDefault("POSTGRES_HOST", "localhost")
		port := getenvDefault("POSTGRES_PORT", "5432")
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		db := os.Getenv("POSTGRES_DB")
		ssl := getenvDefault("POSTGRES_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, ssl)
	}
	return NewWithDSN(ctx, dsn)
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

const articleColumns = `id, url, title, content, summary, source, category, published_at, sentiment_score, sentiment_label, main_topic, created_at, updated_at`

// UpsertArticle inserts or replaces an article by id. A replace is a single
// statement, so readers never observe a half-written row.
func (s *Store) UpsertArticle(ctx context.Context, a models.Article) error {
	if a.ID == "" {
		return fmt.Errorf("article id required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO articles (id, url, title, content, summary, source, category, published_at, sentiment_score, sentiment_label, main_topic, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW())
ON CONFLICT (id) DO UPDATE SET
  url = EXCLUDED.url,
  title = EXCLUDED.title,
  content = EXCLUDED.content,
  summary = EXCLUDED.summary,
  source = EXCLUDED.source,
  category = EXCLUDED.category,
  published_at = EXCLUDED.published_at,
  sentiment_score = EXCLUDED.sentiment_score,
  sentiment_label = EXCLUDED.sentiment_label,
  main_topic = EXCLUDED.main_topic,
  updated_at = NOW();
`, a.ID, a.URL, a.Title, nullString(a.Content), nullString(a.Summary), a.Source, nullString(a.Category),
		a.PublishedAt, a.SentimentScore, nullString(a.SentimentLabel), nullString(a.MainTopic), a.CreatedAt)
	return err
}

// GetArticle returns the article with the given id or ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, id string) (models.Article, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id=$1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, ErrNotFound
	}
	return a, err
}

// DeleteArticle removes an article and, via cascade, its embedding.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCategory returns one page of articles ordered by published_at
// descending, id descending on ties. The ordering is total, so repeated
// calls page without skips or duplicates while the table is unchanged.
// An empty category (or "all") means no filter.
func (s *Store) ListByCategory(ctx context.Context, category string, page, pageSize int) ([]models.Article, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	if category == "all" {
		category = ""
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE ($1 = '' OR category = $1)`, category).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.QueryContext(ctx, `
SELECT `+articleColumns+`
FROM articles
WHERE ($1 = '' OR category = $1)
ORDER BY published_at DESC, id DESC
LIMIT $2 OFFSET $3
`, category, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	articles, err := collectArticles(rows)
	return articles, total, err
}

// SearchArticles performs a case-insensitive substring match over title and
// content with the same ordering and pagination contract as ListByCategory.
func (s *Store) SearchArticles(ctx context.Context, keyword string, page, pageSize int) ([]models.Article, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	pattern := "%" + keyword + "%"

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE title ILIKE $1 OR content ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.QueryContext(ctx, `
SELECT `+articleColumns+`
FROM articles
WHERE title ILIKE $1 OR content ILIKE $1
ORDER BY published_at DESC, id DESC
LIMIT $2 OFFSET $3
`, pattern, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	articles, err := collectArticles(rows)
	return articles, total, err
}

// GetArticlesByIDs loads the given articles, preserving the order of ids.
// Unknown ids are skipped.
func (s *Store) GetArticlesByIDs(ctx context.Context, ids []string) ([]models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	unordered, err := collectArticles(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Article, len(unordered))
	for _, a := range unordered {
		byID[a.ID] = a
	}
	ordered := make([]models.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// SetArticleSummary caches a generated summary on the article row.
func (s *Store) SetArticleSummary(ctx context.Context, id, summary string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE articles SET summary=$2, updated_at=NOW() WHERE id=$1`, id, summary)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetArticleEnrichment stores derived sentiment and topic fields.
func (s *Store) SetArticleEnrichment(ctx context.Context, id string, sentimentScore float64, sentimentLabel, mainTopic string) error {
	res, err := s.DB.ExecContext(ctx, `
UPDATE articles SET sentiment_score=$2, sentiment_label=$3, main_topic=$4, updated_at=NOW() WHERE id=$1
`, id, sentimentScore, sentimentLabel, mainTopic)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertArticleEmbedding stores or replaces the semantic vector for an article.
// An article owns at most one embedding; re-ingestion replaces it.
func (s *Store) UpsertArticleEmbedding(ctx context.Context, articleID, model string, vector []float32) error {
	if articleID == "" {
		return fmt.Errorf("article_id required")
	}
	if len(vector) == 0 {
		return fmt.Errorf("embedding vector required")
	}
	vectorLiteral, err := encodeVectorLiteral(vector)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO article_embeddings (article_id, model, embedding, created_at)
VALUES ($1,$2,$3::vector,NOW())
ON CONFLICT (article_id) DO UPDATE SET
  model = EXCLUDED.model,
  embedding = EXCLUDED.embedding,
  created_at = NOW();
`, articleID, model, vectorLiteral)
	return err
}

// CandidatesForRetrieval returns every embedded article, restricted to the
// category in SQL when one is given. The restriction happens before scoring
// so the retriever never sees out-of-category candidates.
func (s *Store) CandidatesForRetrieval(ctx context.Context, category string) ([]Candidate, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT a.id, a.url, a.title, a.content, a.summary, a.source, a.category, a.published_at, a.sentiment_score, a.sentiment_label, a.main_topic, a.created_at, a.updated_at, e.embedding::text
FROM articles a
JOIN article_embeddings e ON e.article_id = a.id
WHERE ($1 = '' OR a.category = $1)
`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var (
			a          models.Article
			content    sql.NullString
			summary    sql.NullString
			cat        sql.NullString
			sentLabel  sql.NullString
			mainTopic  sql.NullString
			updatedAt  sql.NullTime
			vecLiteral string
		)
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &content, &summary, &a.Source, &cat, &a.PublishedAt,
			&a.SentimentScore, &sentLabel, &mainTopic, &a.CreatedAt, &updatedAt, &vecLiteral); err != nil {
			return nil, err
		}
		a.Content = content.String
		a.Summary = summary.String
		a.Category = cat.String
		a.SentimentLabel = sentLabel.String
		a.MainTopic = mainTopic.String
		if updatedAt.Valid {
			t := updatedAt.Time
			a.UpdatedAt = &t
		}
		vec, err := decodeVectorLiteral(vecLiteral)
		if err != nil {
			return nil, fmt.Errorf("article %s: %w", a.ID, err)
		}
		out = append(out, Candidate{Article: a, Vector: vec})
	}
	return out, rows.Err()
}

// HasSimilarArticleEmbedding reports whether an embedding within the
// similarity threshold already exists, optionally limited to a recency
// window. Used by ingestion to skip near-duplicate articles.
func (s *Store) HasSimilarArticleEmbedding(ctx context.Context, vector []float32, threshold float64, window time.Duration) (bool, error) {
	if len(vector) == 0 {
		return false, fmt.Errorf("vector must not be empty")
	}
	vecLiteral, err := encodeVectorLiteral(vector)
	if err != nil {
		return false, err
	}
	if threshold <= 0 {
		threshold = 0.95
	}
	maxDistance := math.Max(0, 1-threshold)
	windowSeconds := int64(window / time.Second)
	row := s.DB.QueryRowContext(ctx, `
SELECT 1
FROM article_embeddings
WHERE ($3 <= 0 OR created_at >= NOW() - make_interval(secs => $3))
  AND embedding <=> $1::vector <= $2
LIMIT 1
`, vecLiteral, maxDistance, windowSeconds)
	var exists int
	switch err := row.Scan(&exists); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		return false, nil
	default:
		return false, err
	}
}

// RecordSearchQuery logs one answered query. Failures here must never fail
// the request, so callers log and move on.
func (s *Store) RecordSearchQuery(ctx context.Context, rec SearchQueryRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("query log id required")
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO search_queries (id, query, result_count, response_time_ms, cached, created_at)
VALUES ($1,$2,$3,$4,$5,NOW())
`, rec.ID, rec.Query, rec.ResultCount, rec.ResponseTimeMS, rec.Cached)
	return err
}

// TrendingTopics aggregates articles published within the window by their
// main topic, most frequent first.
func (s *Store) TrendingTopics(ctx context.Context, window time.Duration, limit int) ([]models.TrendingTopic, error) {
	if limit <= 0 {
		limit = 20
	}
	hours := int(window / time.Hour)
	if hours <= 0 {
		hours = 24
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT COALESCE(NULLIF(main_topic, ''), 'general') AS topic,
       COUNT(*) AS frequency,
       COALESCE(AVG(sentiment_score), 0) AS sentiment_avg
FROM articles
WHERE published_at >= NOW() - make_interval(hours => $1)
GROUP BY topic
ORDER BY frequency DESC, topic ASC
LIMIT $2
`, hours, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	period := strconv.Itoa(hours) + "h"
	var out []models.TrendingTopic
	for rows.Next() {
		var t models.TrendingTopic
		if err := rows.Scan(&t.Topic, &t.Frequency, &t.SentimentAvg); err != nil {
			return nil, err
		}
		t.ArticlesCount = t.Frequency
		t.Period = period
		out = append(out, t)
	}
	return out, rows.Err()
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (models.Article, error) {
	var (
		a         models.Article
		content   sql.NullString
		summary   sql.NullString
		category  sql.NullString
		sentLabel sql.NullString
		mainTopic sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.URL, &a.Title, &content, &summary, &a.Source, &category, &a.PublishedAt,
		&a.SentimentScore, &sentLabel, &mainTopic, &a.CreatedAt, &updatedAt)
	if err != nil {
		return models.Article{}, err
	}
	a.Content = content.String
	a.Summary = summary.String
	a.Category = category.String
	a.SentimentLabel = sentLabel.String
	a.MainTopic = mainTopic.String
	if updatedAt.Valid {
		t := updatedAt.Time
		a.UpdatedAt = &t
	}
	return a, nil
}

func collectArticles(rows *sql.Rows) ([]models.Article, error) {
	var out []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func encodeVectorLiteral(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", fmt.Errorf("vector must not be empty")
	}
	var builder strings.Builder
	builder.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String(), nil
}

func decodeVectorLiteral(lit string) ([]float32, error) {
	lit = strings.TrimSpace(lit)
	if lit == "" {
		return nil, fmt.Errorf("empty vector literal")
	}
	lit = strings.TrimPrefix(lit, "[")
	lit = strings.TrimSuffix(lit, "]")
	parts := strings.Split(lit, ",")
	vec := make([]float32, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector value %q: %w", value, err)
		}
		vec = append(vec, float32(f))
	}
	return vec, nil
}
