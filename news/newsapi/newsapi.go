package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/0-0Dibakar/AI-Powered-News/config"
)

// Article is one headline as NewsAPI returns it.
type Article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
}

type response struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// NewsAPI fetches headlines from newsapi.org.
type NewsAPI struct {
	APIKey   string
	Endpoint string
	PageSize int
	Client   *http.Client
}

func New(cfg config.NewsAPIConfig) *NewsAPI {
	return &NewsAPI{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		PageSize: cfg.PageSize,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchTopHeadlines returns current headlines for a category. An empty
// category fetches across all of them.
func (n *NewsAPI) FetchTopHeadlines(ctx context.Context, category string) ([]Article, error) {
	params := url.Values{}
	params.Add("country", "us")
	if category != "" {
		params.Add("category", category)
	}
	if n.PageSize > 0 {
		params.Add("pageSize", fmt.Sprintf("%d", n.PageSize))
	}
	params.Add("apiKey", n.APIKey)

	reqURL := fmt.Sprintf("%s?%s", n.Endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	defer resp.Body.Close()

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s %s (%s)", resp.Status, result.Code, result.Message)
	}

	return result.Articles, nil
}
