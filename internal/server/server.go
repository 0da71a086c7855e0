package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0-0Dibakar/AI-Powered-News/config"
	"github.com/0-0Dibakar/AI-Powered-News/internal/cache"
	"github.com/0-0Dibakar/AI-Powered-News/internal/ingest"
	"github.com/0-0Dibakar/AI-Powered-News/internal/rag"
	"github.com/0-0Dibakar/AI-Powered-News/internal/search"
	"github.com/0-0Dibakar/AI-Powered-News/internal/store"
	"github.com/0-0Dibakar/AI-Powered-News/news/newsapi"
	"github.com/0-0Dibakar/AI-Powered-News/provider"
)

// Version is set at build time.
var Version = "dev"

// Run wires all dependencies and serves the API until the listener stops.
func Run(cfg *config.Config) error {
	e := newEcho()

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"version":   Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := Migrate("file://migrations", cfg.Storage.Postgres.DSN(), "up", 0); err != nil {
		log.Printf("migrations: %v", err)
	}

	ctx := context.Background()
	st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
	if err != nil {
		return err
	}

	var responseCache *cache.Cache
	if cfg.Storage.Redis.Host != "" {
		responseCache, err = cache.New(ctx, cfg.Storage.Redis, 10*time.Minute)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	llm, err := provider.NewProvider(provider.OpenAI, cfg.Providers.OpenAI)
	if err != nil {
		return err
	}

	index, err := search.Open(cfg.Ingest.IndexPath)
	if err != nil {
		return err
	}

	ragCfg := cfg.RAG.Normalize()
	metrics := rag.NewMetrics(prometheus.DefaultRegisterer)
	ragLogger := log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	embedder := rag.NewEmbedder(llm, ragCfg.MaxInputChars)
	synth := rag.NewSynthesizer(llm, ragCfg.ContextSnippet)
	orch := rag.NewOrchestrator(st, embedder, synth, ragCache(responseCache), metrics, ragLogger, ragCfg)

	api := e.Group("/api")
	ah := &AIHandler{Store: st, Engine: orch, LLM: llm, Cache: responseCache}
	ah.Register(api.Group("/ai"))
	nh := &NewsHandler{Store: st, Index: index}
	nh.Register(api)

	if cfg.Ingest.Enabled {
		pipeline := ingest.NewPipeline(newsapi.New(cfg.NewsAPI), st, embedder, index,
			log.New(log.Writer(), "[INGEST] ", log.LstdFlags), *cfg)
		sched := ingest.NewScheduler(pipeline, responseCache, cfg.Ingest,
			log.New(log.Writer(), "[SCHED] ", log.LstdFlags))
		sched.Start()
	}

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10001"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// newEcho builds the echo instance with recovery, CORS and the unified
// JSON error handler.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))
	return e
}

// ragCache adapts a possibly-nil *cache.Cache to the orchestrator's cache
// interface without handing it a typed nil.
func ragCache(c *cache.Cache) rag.ResponseCache {
	if c == nil {
		return nil
	}
	return c
}
