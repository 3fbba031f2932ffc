package report

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
)

func TestBuild(t *testing.T) {
	tok := tokenizer.New(nil)
	store := index.NewStore()
	store.IndexDocument(store.Resolve("https://s.test/1"), tok.Terms("dog dog cat"))
	store.Resolve("https://s.test/broken")
	store.IndexDocument(store.Resolve("https://s.test/2"), tok.Terms("dog bird"))

	r := Build(store, scorer.New(store, tok, nil), "sess", "https://s.test/", "bird dog", 2)

	if len(r.URLs) != 3 {
		t.Errorf("urls = %d, want 3 (failed URL keeps its ID)", len(r.URLs))
	}
	if len(r.WordCounts) != 2 {
		t.Errorf("word count tables = %d, want 2", len(r.WordCounts))
	}
	if len(r.TopTerms) != 2 || r.TopTerms[0].Term != "dog" || r.TopTerms[0].Total != 3 {
		t.Errorf("top terms = %+v", r.TopTerms)
	}
	if len(r.Scores) != 4 {
		t.Errorf("scores = %d, want 4", len(r.Scores))
	}
	if len(r.Ranking) != 2 || r.Ranking[0].URL != "https://s.test/2" {
		t.Errorf("ranking = %+v", r.Ranking)
	}
}

func TestRankDocuments(t *testing.T) {
	rows := []scorer.Row{
		{DocumentID: 1, URL: "a", TFIDF: 0.1},
		{DocumentID: 1, URL: "a", TFIDF: 0.1},
		{DocumentID: 2, URL: "b", TFIDF: 0.3},
		{DocumentID: 3, URL: "c", TFIDF: 0.2},
		{DocumentID: 4, URL: "d", TFIDF: 0},
		{DocumentID: 5, URL: "e", TFIDF: 0},
	}
	got := RankDocuments(rows)
	wantIDs := []int{2, 1, 3, 4, 5}
	if len(got) != len(wantIDs) {
		t.Fatalf("ranked = %+v", got)
	}
	for i, id := range wantIDs {
		if int(got[i].DocumentID) != id {
			t.Errorf("rank %d = doc %d, want %d", i, got[i].DocumentID, id)
		}
	}
	if RankDocuments(nil) != nil {
		t.Error("no rows should rank nothing")
	}
}

type stubSink struct {
	name   string
	err    error
	delay  time.Duration
	writes atomic.Int32
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Write(ctx context.Context, r *Report) error {
	s.writes.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func TestMultiSinkContinuesPastFailures(t *testing.T) {
	boom := errors.New("disk full")
	a := &stubSink{name: "a", err: boom}
	b := &stubSink{name: "b"}
	c := &stubSink{name: "c", delay: time.Second}
	m := metrics.New(prometheus.NewRegistry())

	err := NewMultiSink(20*time.Millisecond, m, a, b, c).Write(context.Background(), &Report{})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want to include %v", err, boom)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want to include deadline exceeded", err)
	}
	for _, s := range []*stubSink{a, b, c} {
		if n := s.writes.Load(); n != 1 {
			t.Errorf("sink %s writes = %d, want 1", s.name, n)
		}
	}
	if got := testutil.ToFloat64(m.SinkWritesTotal.WithLabelValues("b", "ok")); got != 1 {
		t.Errorf("ok writes for b = %v", got)
	}
}
