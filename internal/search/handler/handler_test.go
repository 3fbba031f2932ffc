package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search/cache"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	pkgredis "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/redis"
)

func loadedEngine() *search.Engine {
	tok := tokenizer.New(nil)
	store := index.NewStore()
	store.IndexDocument(store.Resolve("https://s.test/1"), tok.Terms("dog dog cat"))
	store.Resolve("https://s.test/broken")
	store.IndexDocument(store.Resolve("https://s.test/2"), tok.Terms("dog bird"))
	e := search.NewEngine()
	e.Load(&search.Session{ID: "sess", Store: store, Scorer: scorer.New(store, tok, nil)})
	return e
}

func serve(h *Handler, method, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestSearch(t *testing.T) {
	rec := serve(New(loadedEngine(), nil), http.MethodGet, "/api/v1/search?q=bird+dog&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var res search.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 4 {
		t.Errorf("rows = %d, want 4", len(res.Rows))
	}
	if len(res.Ranking) != 1 || res.Ranking[0].URL != "https://s.test/2" {
		t.Errorf("ranking = %+v", res.Ranking)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name   string
		engine *search.Engine
		target string
		want   int
	}{
		{"missing q", loadedEngine(), "/api/v1/search", http.StatusBadRequest},
		{"bad limit", loadedEngine(), "/api/v1/search?q=dog&limit=0", http.StatusBadRequest},
		{"not ready", search.NewEngine(), "/api/v1/search?q=dog", http.StatusServiceUnavailable},
		{"unknown document", loadedEngine(), "/api/v1/documents/99", http.StatusNotFound},
		{"bad document id", loadedEngine(), "/api/v1/documents/abc", http.StatusBadRequest},
		{"documents not ready", search.NewEngine(), "/api/v1/documents", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(New(tt.engine, nil), http.MethodGet, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestDocuments(t *testing.T) {
	rec := serve(New(loadedEngine(), nil), http.MethodGet, "/api/v1/documents")
	var body struct {
		Registered int `json:"registered"`
		Documents  []struct {
			ID        int `json:"id"`
			WordCount int `json:"word_count"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Registered != 3 || len(body.Documents) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Documents[0].WordCount != 3 || body.Documents[1].ID != 3 {
		t.Errorf("documents = %+v", body.Documents)
	}

	rec = serve(New(loadedEngine(), nil), http.MethodGet, "/api/v1/documents/2")
	var doc index.DocumentCounts
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || doc.Total != 0 || doc.Document.URL != "https://s.test/broken" {
		t.Errorf("failed document = %d %+v", rec.Code, doc)
	}
}

type memStore struct{ data map[string][]byte }

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	if b, ok := m.data[key]; ok {
		return b, nil
	}
	return nil, pkgredis.ErrMiss
}

func (m *memStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memStore) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	n := int64(len(m.data))
	m.data = map[string][]byte{}
	return n, nil
}

func TestSearchUsesCache(t *testing.T) {
	qc := cache.New(&memStore{data: map[string][]byte{}}, time.Minute, nil)
	h := New(loadedEngine(), qc)
	serve(h, http.MethodGet, "/api/v1/search?q=dogs")
	serve(h, http.MethodGet, "/api/v1/search?q=DOG")
	if hits, misses := qc.Stats(); hits != 1 || misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", hits, misses)
	}

	rec := serve(h, http.MethodGet, "/api/v1/cache/stats")
	var stats map[string]any
	json.NewDecoder(rec.Body).Decode(&stats)
	if stats["hit_rate"] != "50.0%" {
		t.Errorf("stats = %v", stats)
	}
	if rec := serve(h, http.MethodPost, "/api/v1/cache/invalidate"); rec.Code != http.StatusOK {
		t.Errorf("invalidate status = %d", rec.Code)
	}
	if rec := serve(New(loadedEngine(), nil), http.MethodPost, "/api/v1/cache/invalidate"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("invalidate without cache = %d", rec.Code)
	}
}
