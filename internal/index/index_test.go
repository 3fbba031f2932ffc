package index

import (
	"fmt"
	"iter"
	"slices"
	"testing"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/registry"
)

func terms(ts ...string) iter.Seq[string] {
	return slices.Values(ts)
}

func TestRecordAndFrequencies(t *testing.T) {
	x := New()
	x.Record("dog", 1)
	x.Record("dog", 1)
	x.Record("cat", 1)
	x.Record("dog", 2)

	tests := []struct {
		term   string
		doc    registry.DocumentID
		wantTF int
		wantDF int
	}{
		{"dog", 1, 2, 2},
		{"dog", 2, 1, 2},
		{"cat", 1, 1, 1},
		{"cat", 2, 0, 1},
		{"bird", 1, 0, 0},
	}
	for _, tt := range tests {
		if got := x.TermFrequency(tt.term, tt.doc); got != tt.wantTF {
			t.Errorf("TermFrequency(%q, %d) = %d, want %d", tt.term, tt.doc, got, tt.wantTF)
		}
		if got := x.DocumentFrequency(tt.term); got != tt.wantDF {
			t.Errorf("DocumentFrequency(%q) = %d, want %d", tt.term, got, tt.wantDF)
		}
	}
	if x.TermCount() != 2 {
		t.Errorf("TermCount = %d, want 2", x.TermCount())
	}
	want := []Posting{{DocumentID: 1, Count: 2}, {DocumentID: 2, Count: 1}}
	if got := x.Postings("dog"); !slices.Equal(got, want) {
		t.Errorf("Postings(dog) = %v, want %v", got, want)
	}
}

func TestWordCountEqualsSumOfTermFrequencies(t *testing.T) {
	s := NewStore()
	docs := map[string][]string{
		"https://a.test/1": {"dog", "dog", "cat"},
		"https://a.test/2": {"dog", "bird"},
		"https://a.test/3": nil,
	}
	for _, url := range []string{"https://a.test/1", "https://a.test/2", "https://a.test/3"} {
		s.IndexDocument(s.Resolve(url), terms(docs[url]...))
	}
	for _, dc := range s.DocumentTable() {
		sum := 0
		for _, tc := range dc.Terms {
			if tc.Count <= 0 {
				t.Errorf("stored non-positive count %v", tc)
			}
			sum += s.Index().TermFrequency(tc.Term, dc.Document.ID)
		}
		if sum != dc.Total || sum != s.WordCount(dc.Document.ID) {
			t.Errorf("doc %d: sum %d, total %d, word count %d", dc.Document.ID, sum, dc.Total, s.WordCount(dc.Document.ID))
		}
	}
	if s.DocumentCount() != 3 {
		t.Errorf("N = %d, want 3 (empty documents count)", s.DocumentCount())
	}
	for _, term := range []string{"dog", "cat", "bird"} {
		if df := s.Index().DocumentFrequency(term); df > s.DocumentCount() {
			t.Errorf("df(%s) = %d > N", term, df)
		}
	}
}

func TestIndexDocumentReturnsCountsInFirstSeenOrder(t *testing.T) {
	s := NewStore()
	got := s.IndexDocument(s.Resolve("u"), terms("b", "a", "b"))
	want := []TermCount{{"b", 2}, {"a", 1}}
	if !slices.Equal(got.Terms, want) || got.Total != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestIndexDocumentTwiceAccumulatesWithoutDuplicatingDocument(t *testing.T) {
	s := NewStore()
	doc := s.Resolve("u")
	s.IndexDocument(doc, terms("a"))
	s.IndexDocument(doc, terms("a"))
	if s.DocumentCount() != 1 {
		t.Errorf("N = %d, want 1", s.DocumentCount())
	}
	if tf := s.Index().TermFrequency("a", doc.ID); tf != 2 {
		t.Errorf("tf = %d, want 2", tf)
	}
}

func TestTopTerms(t *testing.T) {
	x := New()
	for _, r := range []struct {
		term string
		doc  registry.DocumentID
	}{
		{"x", 1}, {"y", 1}, {"y", 2}, {"z", 2}, {"z", 3}, {"z", 3}, {"w", 1},
	} {
		x.Record(r.term, r.doc)
	}
	got := x.TopTerms(3)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Term != "z" || got[0].Total != 3 || !slices.Equal(got[0].Documents, []registry.DocumentID{2, 3}) {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Term != "y" || got[2].Term != "x" {
		t.Errorf("tie order = %s, %s; want y, x", got[1].Term, got[2].Term)
	}
	if x.TopTerms(0) != nil {
		t.Error("TopTerms(0) should be nil")
	}
	if n := len(x.TopTerms(100)); n != 4 {
		t.Errorf("TopTerms(100) len = %d, want 4", n)
	}
}

func BenchmarkRecord(b *testing.B) {
	x := New()
	vocab := make([]string, 1000)
	for i := range vocab {
		vocab[i] = fmt.Sprintf("term%d", i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.Record(vocab[i%len(vocab)], registry.DocumentID(i%50+1))
	}
}
