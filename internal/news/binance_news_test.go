package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"newstrader/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.NewsConfig{URL: url, PageSize: 10}, nil)
}

func TestLatest_FlatLayout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pageSize") != "10" {
			t.Errorf("pageSize = %s, ожидалось 10", q.Get("pageSize"))
		}
		w.Write([]byte(`{"data":{"articles":[
			{"id":2,"code":"abc-2","title":"Binance Will List Arbitrum (ARB)"},
			{"id":1,"code":"abc-1","title":"Notice of System Upgrade"}
		]}}`))
	}))
	defer server.Close()

	articles, err := newTestClient(server.URL).Latest(context.Background())
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("Количество статей = %d, ожидалось 2", len(articles))
	}
	if articles[0].ID != "abc-2" {
		t.Errorf("ID = %q, ожидалось abc-2", articles[0].ID)
	}
	if articles[0].Title != "Binance Will List Arbitrum (ARB)" {
		t.Errorf("Неожиданный заголовок: %q", articles[0].Title)
	}
}

func TestLatest_CatalogLayout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"catalogs":[{"articles":[
			{"id":5,"code":"xyz-5","title":"Binance Will List Optimism (OP)"}
		]}]}}`))
	}))
	defer server.Close()

	articles, err := newTestClient(server.URL).Latest(context.Background())
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(articles) != 1 || articles[0].ID != "xyz-5" {
		t.Errorf("Неожиданные статьи: %+v", articles)
	}
}

func TestLatest_FallbackToNumericID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"articles":[{"id":42,"title":"Без кода"}]}}`))
	}))
	defer server.Close()

	articles, err := newTestClient(server.URL).Latest(context.Background())
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if articles[0].ID != "42" {
		t.Errorf("ID = %q, ожидалось 42", articles[0].ID)
	}
}

func TestLatest_EmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Latest(context.Background())
	if !errors.Is(err, ErrEmptyFeed) {
		t.Errorf("Ожидалась ErrEmptyFeed, получено %v", err)
	}
}

func TestLatest_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Latest(context.Background()); err == nil {
		t.Error("Ожидалась ошибка на 502")
	}
}
