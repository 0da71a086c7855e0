// Package search maintains a bleve keyword index over ingested articles.
// It complements vector retrieval: the /news/search endpoint uses it to
// rank keyword matches before falling back to a plain database scan.
package search

import (
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/0-0Dibakar/AI-Powered-News/models"
)

// indexedArticle is the subset of an article worth keyword-matching.
type indexedArticle struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

// Hit is one keyword match, best first.
type Hit struct {
	ID    string
	Score float64
}

// Index wraps a bleve index keyed by article id.
type Index struct {
	mu    sync.RWMutex
	bleve bleve.Index
}

// Open opens the index at path, creating it on first use. An empty path
// gives a memory-only index that does not survive restarts.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, err
		}
		return &Index{bleve: idx}, nil
	}
	idx, err := bleve.Open(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("open index %s: %w", path, err)
		}
		idx, err = bleve.New(path, bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index %s: %w", path, err)
		}
	}
	return &Index{bleve: idx}, nil
}

// IndexArticle adds or replaces an article in the index.
func (i *Index) IndexArticle(a models.Article) error {
	if a.ID == "" {
		return fmt.Errorf("article id required")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.bleve.Index(a.ID, indexedArticle{
		Title:    a.Title,
		Content:  a.Content,
		Summary:  a.Summary,
		Source:   a.Source,
		Category: a.Category,
	})
}

// Delete removes an article from the index.
func (i *Index) Delete(id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.bleve.Delete(id)
}

// Search runs a keyword query and returns the requested page of article
// ids ranked by relevance, plus the total match count.
func (i *Index) Search(q string, page, pageSize int) ([]Hit, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, pageSize, (page-1)*pageSize, false)
	res, err := i.bleve.Search(req)
	if err != nil {
		return nil, 0, err
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, int(res.Total), nil
}

// Close flushes and closes the underlying index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.bleve.Close()
}
