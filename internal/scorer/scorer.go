// Package scorer computes TF-IDF rows for a query against a session store.
// It emits the full documents × query-terms cross product; ordering by
// score is left to the caller.
package scorer

import (
	"log/slog"
	"math"
	"time"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/registry"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/tokenizer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
)

// Row is one (document, query term) score.
type Row struct {
	DocumentID registry.DocumentID `json:"document_id"`
	URL        string              `json:"url"`
	Term       string              `json:"term"`
	TF         float64             `json:"tf"`
	IDF        float64             `json:"idf"`
	TFIDF      float64             `json:"tf_idf"`
}

// Scorer reads a Store; it never mutates it.
type Scorer struct {
	store     *index.Store
	tokenizer *tokenizer.Tokenizer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Scorer. tok must be the tokenizer the documents were
// indexed with. m may be nil.
func New(store *index.Store, tok *tokenizer.Tokenizer, m *metrics.Metrics) *Scorer {
	return &Scorer{
		store:     store,
		tokenizer: tok,
		metrics:   m,
		logger:    slog.Default().With("component", "scorer"),
	}
}

// QueryTerms tokenizes query with the indexing pipeline. Duplicates are kept.
func (s *Scorer) QueryTerms(query string) []string {
	return s.tokenizer.Tokenize(query)
}

// Score returns one Row per indexed document and query term occurrence, in
// indexing order then query order. An empty query yields no rows.
func (s *Scorer) Score(query string) []Row {
	start := time.Now()
	terms := s.QueryTerms(query)
	docs := s.store.Documents()
	if len(terms) == 0 || len(docs) == 0 {
		return nil
	}

	idx := s.store.Index()
	n := len(docs)
	idf := make(map[string]float64, len(terms))
	for _, term := range terms {
		if _, ok := idf[term]; !ok {
			idf[term] = computeIDF(n, idx.DocumentFrequency(term))
		}
	}

	rows := make([]Row, 0, len(docs)*len(terms))
	for _, doc := range docs {
		total := idx.WordCount(doc.ID)
		for _, term := range terms {
			tf := computeTF(idx.TermFrequency(term, doc.ID), total)
			rows = append(rows, Row{
				DocumentID: doc.ID,
				URL:        doc.URL,
				Term:       term,
				TF:         tf,
				IDF:        idf[term],
				TFIDF:      tf * idf[term],
			})
		}
	}

	if s.metrics != nil {
		s.metrics.ScoringRowsTotal.Add(float64(len(rows)))
		s.metrics.ScoreLatency.Observe(time.Since(start).Seconds())
	}
	s.logger.Debug("query scored", "terms", len(terms), "documents", n, "rows", len(rows))
	return rows
}

// computeTF is raw/total, or 0 for an empty document.
func computeTF(raw, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(raw) / float64(total)
}

// computeIDF is log10(n/df), or 0 when no document contains the term.
func computeIDF(n, df int) float64 {
	if df <= 0 {
		return 0
	}
	return math.Log10(float64(n) / float64(df))
}
