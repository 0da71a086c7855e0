package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0-0Dibakar/AI-Powered-News/config"
)

func TestFetchTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apiKey") != "test-key" {
			t.Errorf("apiKey = %q", q.Get("apiKey"))
		}
		if q.Get("category") != "technology" {
			t.Errorf("category = %q", q.Get("category"))
		}
		if q.Get("pageSize") != "50" {
			t.Errorf("pageSize = %q", q.Get("pageSize"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{"source":{"name":"TechCrunch"},"title":"Chips get faster","url":"https://example.com/chips","publishedAt":"2026-08-30T10:00:00Z"}]}`))
	}))
	defer srv.Close()

	n := New(config.NewsAPIConfig{APIKey: "test-key", Endpoint: srv.URL, PageSize: 50})
	articles, err := n.FetchTopHeadlines(context.Background(), "technology")
	if err != nil {
		t.Fatalf("FetchTopHeadlines: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}
	if articles[0].Source.Name != "TechCrunch" || articles[0].Title != "Chips get faster" {
		t.Fatalf("unexpected article: %+v", articles[0])
	}
}

func TestFetchTopHeadlinesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	}))
	defer srv.Close()

	n := New(config.NewsAPIConfig{APIKey: "bad", Endpoint: srv.URL})
	if _, err := n.FetchTopHeadlines(context.Background(), ""); err == nil {
		t.Fatal("expected error for rejected key")
	}
}

func TestFetchTopHeadlinesOmitsEmptyCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("category") {
			t.Error("category param sent for empty category")
		}
		w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	n := New(config.NewsAPIConfig{APIKey: "k", Endpoint: srv.URL})
	if _, err := n.FetchTopHeadlines(context.Background(), ""); err != nil {
		t.Fatalf("FetchTopHeadlines: %v", err)
	}
}
