package scorer

import (
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
)

const eps = 1e-12

func newStore(tok *tokenizer.Tokenizer, pages ...string) *index.Store {
	s := index.NewStore()
	for i, text := range pages {
		doc := s.Resolve("https://site.test/" + string(rune('a'+i)))
		s.IndexDocument(doc, tok.Terms(text))
	}
	return s
}

func TestSingleDocumentScenario(t *testing.T) {
	tok := tokenizer.New(nil)
	s := newStore(tok, "the cat sat on the mat")
	if w := s.WordCount(1); w != 3 {
		t.Fatalf("word count = %d, want 3", w)
	}
	rows := New(s, tok, nil).Score("cat")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Term != "cat" || r.DocumentID != 1 || r.URL != "https://site.test/a" {
		t.Errorf("row = %+v", r)
	}
	if math.Abs(r.TF-1.0/3) > eps || r.IDF != 0 || r.TFIDF != 0 {
		t.Errorf("tf=%v idf=%v tfidf=%v, want 1/3, 0, 0", r.TF, r.IDF, r.TFIDF)
	}
}

func TestTermInEveryDocumentScoresZero(t *testing.T) {
	tok := tokenizer.New(nil)
	s := newStore(tok, "dog dog cat", "dog bird")
	if df := s.Index().DocumentFrequency("dog"); df != 2 {
		t.Fatalf("df = %d, want 2", df)
	}
	rows := New(s, tok, nil).Score("dog")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	wantTF := []float64{2.0 / 3, 1.0 / 2}
	for i, r := range rows {
		if math.Abs(r.TF-wantTF[i]) > eps {
			t.Errorf("row %d tf = %v, want %v", i, r.TF, wantTF[i])
		}
		if r.IDF != 0 || r.TFIDF != 0 {
			t.Errorf("row %d idf=%v tfidf=%v, want 0", i, r.IDF, r.TFIDF)
		}
	}
}

func TestRareTermAndAbsentTerm(t *testing.T) {
	tok := tokenizer.New(nil)
	s := newStore(tok, "dog dog cat", "dog bird")
	rows := New(s, tok, nil).Score("bird unicorn")
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	// document-then-term order
	order := []struct {
		doc  int
		term string
	}{{1, "bird"}, {1, "unicorn"}, {2, "bird"}, {2, "unicorn"}}
	for i, o := range order {
		if int(rows[i].DocumentID) != o.doc || rows[i].Term != o.term {
			t.Errorf("row %d = (%d,%s), want (%d,%s)", i, rows[i].DocumentID, rows[i].Term, o.doc, o.term)
		}
	}
	bird := rows[2]
	if math.Abs(bird.IDF-math.Log10(2)) > eps || math.Abs(bird.TFIDF-0.5*math.Log10(2)) > eps {
		t.Errorf("bird row = %+v", bird)
	}
	if rows[0].TF != 0 || rows[0].TFIDF != 0 {
		t.Errorf("bird absent from doc 1: %+v", rows[0])
	}
	for _, r := range []Row{rows[1], rows[3]} {
		if r.IDF != 0 || r.TFIDF != 0 || r.TF != 0 {
			t.Errorf("absent term must score zero: %+v", r)
		}
	}
}

func TestEmptyDocumentAndDuplicateQueryTerms(t *testing.T) {
	tok := tokenizer.New(nil)
	s := newStore(tok, "", "dog")
	rows := New(s, tok, nil).Score("dog dog")
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4 (duplicates kept)", len(rows))
	}
	for _, r := range rows[:2] {
		if r.TF != 0 {
			t.Errorf("empty document tf = %v, want 0", r.TF)
		}
	}
	if math.Abs(rows[2].IDF-math.Log10(2)) > eps || rows[2].TF != 1 {
		t.Errorf("row = %+v", rows[2])
	}
}

func TestEmptyQueryYieldsNoRows(t *testing.T) {
	tok := tokenizer.New(nil)
	s := newStore(tok, "dog")
	for _, q := range []string{"", "   ", "the of and"} {
		if rows := New(s, tok, nil).Score(q); len(rows) != 0 {
			t.Errorf("Score(%q) = %d rows, want 0", q, len(rows))
		}
	}
}

func TestScoreBounds(t *testing.T) {
	tok := tokenizer.New(nil)
	s := newStore(tok,
		"hospital waiting times in germany",
		"average waiting time by region",
		"germany region hospital hospital",
		"",
	)
	m := metrics.New(prometheus.NewRegistry())
	rows := New(s, tok, m).Score("What are the average waiting times in hospitals in Germany by region?")
	if len(rows) == 0 {
		t.Fatal("expected rows")
	}
	for _, r := range rows {
		if r.TF < 0 || r.TF > 1 {
			t.Errorf("tf out of range: %+v", r)
		}
		if r.IDF < 0 {
			t.Errorf("negative idf: %+v", r)
		}
		df := s.Index().DocumentFrequency(r.Term)
		if df == 0 && r.IDF != 0 {
			t.Errorf("df=0 but idf=%v: %+v", r.IDF, r)
		}
		if df > 0 && df < s.DocumentCount() && r.IDF <= 0 {
			t.Errorf("df=%d < N but idf=%v", df, r.IDF)
		}
	}
	if got := testutil.ToFloat64(m.ScoringRowsTotal); int(got) != len(rows) {
		t.Errorf("rows metric = %v, want %d", got, len(rows))
	}
}

func TestComputeHelpers(t *testing.T) {
	if computeTF(5, 0) != 0 {
		t.Error("tf with zero total")
	}
	if computeIDF(10, 0) != 0 {
		t.Error("idf with zero df")
	}
	if got := computeIDF(100, 10); math.Abs(got-1) > eps {
		t.Errorf("idf(100,10) = %v, want 1", got)
	}
}

func BenchmarkScore(b *testing.B) {
	tok := tokenizer.New(nil)
	pages := make([]string, 50)
	for i := range pages {
		pages[i] = strings.Repeat("hospital waiting region average germany patient doctor ", i+1)
	}
	s := newStore(tok, pages...)
	sc := New(s, tok, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sc.Score("average waiting times in hospitals in Germany by region")
	}
}
