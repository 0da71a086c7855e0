package models

import "time"

// Article is an ingested news item. ID is immutable once assigned and is the
// sole join key for embeddings, summaries and sentiment enrichment.
type Article struct {
	ID             string     `json:"id"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Content        string     `json:"content,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	Source         string     `json:"source"`
	Category       string     `json:"category,omitempty"`
	PublishedAt    time.Time  `json:"published_at"`
	SentimentScore *float64   `json:"sentiment_score,omitempty"`
	SentimentLabel string     `json:"sentiment_label,omitempty"`
	MainTopic      string     `json:"main_topic,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"-"`
}

// Known news categories. An unknown category in a query is a validation error.
const (
	CategoryBusiness      = "business"
	CategoryTechnology    = "technology"
	CategoryPolitics      = "politics"
	CategorySports        = "sports"
	CategoryHealth        = "health"
	CategoryScience       = "science"
	CategoryEntertainment = "entertainment"
	CategoryWorld         = "world"
	CategoryGeneral       = "general"
)

var categories = map[string]struct{}{
	CategoryBusiness:      {},
	CategoryTechnology:    {},
	CategoryPolitics:      {},
	CategorySports:        {},
	CategoryHealth:        {},
	CategoryScience:       {},
	CategoryEntertainment: {},
	CategoryWorld:         {},
	CategoryGeneral:       {},
}

// ValidCategory reports whether c is one of the known news categories.
func ValidCategory(c string) bool {
	_, ok := categories[c]
	return ok
}

// Categories returns the known category names in no particular order.
func Categories() []string {
	out := make([]string, 0, len(categories))
	for c := range categories {
		out = append(out, c)
	}
	return out
}

// TrendingTopic aggregates recent articles sharing a main topic.
type TrendingTopic struct {
	Topic         string  `json:"topic"`
	Frequency     int     `json:"frequency"`
	SentimentAvg  float64 `json:"sentiment_avg"`
	ArticlesCount int     `json:"articles_count"`
	Period        string  `json:"period"`
}
