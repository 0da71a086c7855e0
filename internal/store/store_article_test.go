package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/0-0Dibakar/AI-Powered-News/models"
)

var testColumns = []string{"id", "url", "title", "content", "summary", "source", "category", "published_at", "sentiment_score", "sentiment_label", "main_topic", "created_at", "updated_at"}

func TestUpsertArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	published := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	a := models.Article{
		ID:          "art-1",
		URL:         "https://example.com/a",
		Title:       "Election results announced",
		Content:     "Full text",
		Source:      "Example Wire",
		Category:    "politics",
		PublishedAt: published,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO articles`)).
		WithArgs(a.ID, a.URL, a.Title, a.Content, nil, a.Source, a.Category, published,
			nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.UpsertArticle(context.Background(), a); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertArticleRequiresID(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	if err := st.UpsertArticle(context.Background(), models.Article{Title: "no id"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestGetArticleNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, url, title, content, summary, source, category, published_at, sentiment_score, sentiment_label, main_topic, created_at, updated_at FROM articles WHERE id=$1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := st.GetArticle(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	now := time.Now()
	score := 0.4
	rows := sqlmock.NewRows(testColumns).
		AddRow("art-1", "https://example.com/a", "Title", "Body", nil, "Wire", "technology", now, score, "positive", "chips", now, nil)
	mock.ExpectQuery(`SELECT .+ FROM articles WHERE id=\$1`).
		WithArgs("art-1").
		WillReturnRows(rows)

	a, err := st.GetArticle(context.Background(), "art-1")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if a.ID != "art-1" || a.Category != "technology" || a.SentimentLabel != "positive" {
		t.Fatalf("unexpected article: %+v", a)
	}
	if a.SentimentScore == nil || *a.SentimentScore != score {
		t.Fatalf("unexpected sentiment score: %v", a.SentimentScore)
	}
	if a.Summary != "" {
		t.Fatalf("expected empty summary, got %q", a.Summary)
	}
}

func TestListByCategoryPagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM articles WHERE ($1 = '' OR category = $1)`)).
		WithArgs("technology").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	rows := sqlmock.NewRows(testColumns).
		AddRow("a2", "u2", "t2", nil, nil, "s", "technology", now, nil, nil, nil, now, nil).
		AddRow("a1", "u1", "t1", nil, nil, "s", "technology", now.Add(-time.Hour), nil, nil, nil, now, nil)
	mock.ExpectQuery(`ORDER BY published_at DESC, id DESC`).
		WithArgs("technology", 10, 10).
		WillReturnRows(rows)

	articles, total, err := st.ListByCategory(context.Background(), "technology", 2, 10)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if total != 12 {
		t.Fatalf("expected total 12, got %d", total)
	}
	if len(articles) != 2 || articles[0].ID != "a2" || articles[1].ID != "a1" {
		t.Fatalf("unexpected page: %+v", articles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByCategoryAllMeansNoFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM articles`).
		WithArgs("", 10, 0).
		WillReturnRows(sqlmock.NewRows(testColumns))

	if _, _, err := st.ListByCategory(context.Background(), "all", 1, 10); err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchArticles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM articles WHERE title ILIKE $1 OR content ILIKE $1`)).
		WithArgs("%election%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows(testColumns).
		AddRow("a1", "u1", "Election night", nil, nil, "s", "politics", now, nil, nil, nil, now, nil)
	mock.ExpectQuery(`title ILIKE \$1 OR content ILIKE \$1`).
		WithArgs("%election%", 10, 0).
		WillReturnRows(rows)

	articles, total, err := st.SearchArticles(context.Background(), "election", 1, 10)
	if err != nil {
		t.Fatalf("SearchArticles: %v", err)
	}
	if total != 1 || len(articles) != 1 || articles[0].ID != "a1" {
		t.Fatalf("unexpected results: total=%d articles=%+v", total, articles)
	}
}

func TestDeleteArticleNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM articles WHERE id=$1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := st.DeleteArticle(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetArticlesByIDsPreservesOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	now := time.Now()
	rows := sqlmock.NewRows(testColumns).
		AddRow("b", "u", "t", nil, nil, "s", nil, now, nil, nil, nil, now, nil).
		AddRow("a", "u", "t", nil, nil, "s", nil, now, nil, nil, nil, now, nil)
	mock.ExpectQuery(`WHERE id IN \(\$1,\$2\)`).
		WithArgs("a", "b").
		WillReturnRows(rows)

	articles, err := st.GetArticlesByIDs(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("GetArticlesByIDs: %v", err)
	}
	if len(articles) != 2 || articles[0].ID != "a" || articles[1].ID != "b" {
		t.Fatalf("order not preserved: %+v", articles)
	}
}

func TestSetArticleSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE articles SET summary=$2, updated_at=NOW() WHERE id=$1`)).
		WithArgs("art-1", "short summary").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.SetArticleSummary(context.Background(), "art-1", "short summary"); err != nil {
		t.Fatalf("SetArticleSummary: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
