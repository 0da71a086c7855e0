package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestRecordSearchQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	rec := SearchQueryRecord{
		ID:             "q-1",
		Query:          "who won the election",
		ResultCount:    2,
		ResponseTimeMS: 312.5,
		Cached:         false,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO search_queries (id, query, result_count, response_time_ms, cached, created_at)`)).
		WithArgs(rec.ID, rec.Query, rec.ResultCount, rec.ResponseTimeMS, rec.Cached).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.RecordSearchQuery(context.Background(), rec); err != nil {
		t.Fatalf("RecordSearchQuery: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTrendingTopics(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	rows := sqlmock.NewRows([]string{"topic", "frequency", "sentiment_avg"}).
		AddRow("elections", 7, 0.12).
		AddRow("chips", 3, -0.4)
	mock.ExpectQuery(`GROUP BY topic`).
		WithArgs(24, 20).
		WillReturnRows(rows)

	trends, err := st.TrendingTopics(context.Background(), 24*time.Hour, 0)
	if err != nil {
		t.Fatalf("TrendingTopics: %v", err)
	}
	if len(trends) != 2 {
		t.Fatalf("expected 2 trends, got %d", len(trends))
	}
	if trends[0].Topic != "elections" || trends[0].Frequency != 7 || trends[0].Period != "24h" {
		t.Fatalf("unexpected trend: %+v", trends[0])
	}
	if trends[1].ArticlesCount != 3 {
		t.Fatalf("unexpected articles count: %+v", trends[1])
	}
}
