package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/0-0Dibakar/AI-Powered-News/internal/search"
	"github.com/0-0Dibakar/AI-Powered-News/internal/store"
	"github.com/0-0Dibakar/AI-Powered-News/models"
)

// NewsHandler serves article browsing, keyword search and trends.
type NewsHandler struct {
	Store *store.Store
	Index *search.Index
}

func (h *NewsHandler) Register(api *echo.Group) {
	news := api.Group("/news")
	news.GET("/headlines", h.headlines)
	news.GET("/category/:category", h.byCategory)
	news.GET("/search", h.search)
	api.GET("/trending/topics", h.trending)
}

type articlePage struct {
	Articles   []models.Article `json:"articles"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

func (h *NewsHandler) headlines(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "all" {
		category = ""
	}
	if category != "" && !models.ValidCategory(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category: "+category)
	}
	page, pageSize := pageParams(c)

	articles, total, err := h.Store.ListByCategory(c.Request().Context(), category, page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, articlePage{Articles: articles, TotalCount: total, Page: page, PageSize: pageSize})
}

func (h *NewsHandler) byCategory(c echo.Context) error {
	category := c.Param("category")
	if !models.ValidCategory(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category: "+category)
	}
	page, pageSize := pageParams(c)

	articles, total, err := h.Store.ListByCategory(c.Request().Context(), category, page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, articlePage{Articles: articles, TotalCount: total, Page: page, PageSize: pageSize})
}

// search answers keyword queries from the bleve index when one is
// available, falling back to a database scan.
func (h *NewsHandler) search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	page, pageSize := pageParams(c)
	ctx := c.Request().Context()

	if h.Index != nil {
		hits, total, err := h.Index.Search(q, page, pageSize)
		if err == nil && total > 0 {
			ids := make([]string, len(hits))
			for i, hit := range hits {
				ids[i] = hit.ID
			}
			articles, err := h.Store.GetArticlesByIDs(ctx, ids)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			return c.JSON(http.StatusOK, articlePage{Articles: articles, TotalCount: total, Page: page, PageSize: pageSize})
		}
	}

	articles, total, err := h.Store.SearchArticles(ctx, q, page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, articlePage{Articles: articles, TotalCount: total, Page: page, PageSize: pageSize})
}

type trendingResponse struct {
	Topics []models.TrendingTopic `json:"topics"`
	Period string                 `json:"period"`
}

func (h *NewsHandler) trending(c echo.Context) error {
	hours := 24
	if raw := c.QueryParam("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 24*14 {
			return echo.NewHTTPError(http.StatusBadRequest, "hours must be between 1 and 336")
		}
		hours = n
	}

	topics, err := h.Store.TrendingTopics(c.Request().Context(), time.Duration(hours)*time.Hour, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, trendingResponse{Topics: topics, Period: strconv.Itoa(hours) + "h"})
}

func pageParams(c echo.Context) (int, int) {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	pageSize := 10
	if raw := c.QueryParam("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}
