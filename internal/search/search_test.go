package search

import (
	"context"
	"errors"
	"testing"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
)

func TestEngineNotReady(t *testing.T) {
	if _, err := NewEngine().Search(context.Background(), "dog"); !errors.Is(err, apperrors.ErrNotReady) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
}

func TestEngineSearch(t *testing.T) {
	tok := tokenizer.New(nil)
	store := index.NewStore()
	store.IndexDocument(store.Resolve("https://s.test/1"), tok.Terms("dog dog cat"))
	store.IndexDocument(store.Resolve("https://s.test/2"), tok.Terms("dog bird"))

	e := NewEngine()
	e.Load(&Session{ID: "s", Store: store, Scorer: scorer.New(store, tok, nil)})
	res, err := e.Search(context.Background(), "Birds and dogs")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Terms) != 2 || res.Terms[0] != "bird" || res.Terms[1] != "dog" {
		t.Errorf("terms = %q", res.Terms)
	}
	if len(res.Rows) != 4 || res.Documents != 2 {
		t.Errorf("rows = %d, documents = %d", len(res.Rows), res.Documents)
	}
	if res.Ranking[0].URL != "https://s.test/2" {
		t.Errorf("top document = %s", res.Ranking[0].URL)
	}
}
