package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/0-0Dibakar/AI-Powered-News/internal/cache"
	"github.com/0-0Dibakar/AI-Powered-News/internal/ingest"
	"github.com/0-0Dibakar/AI-Powered-News/internal/rag"
	"github.com/0-0Dibakar/AI-Powered-News/internal/store"
	"github.com/0-0Dibakar/AI-Powered-News/provider"
)

// QueryEngine answers natural-language questions over the article corpus.
type QueryEngine interface {
	Handle(ctx context.Context, q rag.Query) (rag.Response, error)
}

// AIHandler serves the LLM-backed endpoints: query, summarize, sentiment.
type AIHandler struct {
	Store  *store.Store
	Engine QueryEngine
	LLM    provider.Provider
	Cache  *cache.Cache
}

func (h *AIHandler) Register(g *echo.Group) {
	g.POST("/query", h.query)
	g.POST("/summarize", h.summarize)
	g.GET("/sentiment/:article_id", h.sentiment)
}

func (h *AIHandler) query(c echo.Context) error {
	var q rag.Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.Engine.Handle(c.Request().Context(), q)
	if err != nil {
		if rag.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

const summarizeSystemPrompt = `You are a news summarizer. Summarize the article in at most %d words. Use only the article text, keep the key facts and drop opinion.`

type summarizeRequest struct {
	ArticleID string `json:"article_id"`
	MaxLength int    `json:"max_length"`
}

type summarizeResponse struct {
	ArticleID string `json:"article_id"`
	Summary   string `json:"summary"`
	Cached    bool   `json:"cached"`
}

func (h *AIHandler) summarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.ArticleID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "article_id is required")
	}
	if req.MaxLength <= 0 {
		req.MaxLength = 150
	}
	ctx := c.Request().Context()

	article, err := h.Store.GetArticle(ctx, req.ArticleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if article.Summary != "" {
		return c.JSON(http.StatusOK, summarizeResponse{ArticleID: article.ID, Summary: article.Summary, Cached: true})
	}

	cacheKey := "summary:" + article.ID
	if raw, ok, err := h.Cache.Get(ctx, cacheKey); err == nil && ok {
		return c.JSON(http.StatusOK, summarizeResponse{ArticleID: article.ID, Summary: string(raw), Cached: true})
	}

	text := article.Content
	if text == "" {
		text = article.Title
	}
	summary, err := h.LLM.Complete(ctx, fmt.Sprintf(summarizeSystemPrompt, req.MaxLength), text)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "summarization failed")
	}
	summary = strings.TrimSpace(summary)
	if err := h.Store.SetArticleSummary(ctx, article.ID, summary); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	_ = h.Cache.Set(ctx, cacheKey, []byte(summary))
	return c.JSON(http.StatusOK, summarizeResponse{ArticleID: article.ID, Summary: summary, Cached: false})
}

type sentimentResponse struct {
	ArticleID      string  `json:"article_id"`
	SentimentScore float64 `json:"sentiment_score"`
	SentimentLabel string  `json:"sentiment_label"`
	Confidence     float64 `json:"confidence"`
}

func (h *AIHandler) sentiment(c echo.Context) error {
	articleID := c.Param("article_id")
	ctx := c.Request().Context()

	article, err := h.Store.GetArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	text := article.Title + " " + article.Content
	analyzed := ingest.AnalyzeSentiment(text)
	resp := sentimentResponse{
		ArticleID:      article.ID,
		SentimentScore: analyzed.Score,
		SentimentLabel: analyzed.Label,
		Confidence:     analyzed.Confidence,
	}
	if article.SentimentScore != nil {
		// Prefer the enrichment stored at ingest time.
		resp.SentimentScore = *article.SentimentScore
		resp.SentimentLabel = article.SentimentLabel
	} else {
		topic := article.MainTopic
		if topic == "" {
			topic = ingest.MainTopic(text)
		}
		if err := h.Store.SetArticleEnrichment(ctx, article.ID, analyzed.Score, analyzed.Label, topic); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, resp)
}
