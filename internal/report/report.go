// Package report assembles the tables a crawl session exports (URL
// mappings, per-page word counts, the most frequent terms, query scores)
// and fans them out to sinks.
package report

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/registry"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
)

// Report is everything a sink persists for one session.
type Report struct {
	SessionID   string                 `json:"session_id"`
	Seed        string                 `json:"seed"`
	Query       string                 `json:"query"`
	GeneratedAt time.Time              `json:"generated_at"`
	URLs        []registry.Document    `json:"urls"`
	WordCounts  []index.DocumentCounts `json:"word_counts"`
	TopN        int                    `json:"top_n"`
	TopTerms    []index.TermSummary    `json:"top_terms"`
	Scores      []scorer.Row           `json:"scores"`
	Ranking     []RankedDocument       `json:"ranking"`
}

// RankedDocument is a document's summed TF-IDF over all query terms.
type RankedDocument struct {
	DocumentID registry.DocumentID `json:"document_id"`
	URL        string              `json:"url"`
	Score      float64             `json:"score"`
}

// Build scores query against store and collects the session tables. URLs
// lists every registered URL, including ones whose fetch failed.
func Build(store *index.Store, sc *scorer.Scorer, sessionID, seed, query string, topTerms int) *Report {
	rows := sc.Score(query)
	return &Report{
		SessionID:   sessionID,
		Seed:        seed,
		Query:       query,
		GeneratedAt: time.Now().UTC(),
		URLs:        store.Registry().Documents(),
		WordCounts:  store.DocumentTable(),
		TopN:        topTerms,
		TopTerms:    store.Index().TopTerms(topTerms),
		Scores:      rows,
		Ranking:     RankDocuments(rows),
	}
}

// RankDocuments sums TF-IDF per document and orders by score descending,
// lower ID first on ties. It is a display aid and not part of scoring.
func RankDocuments(rows []scorer.Row) []RankedDocument {
	pos := make(map[registry.DocumentID]int)
	var ranked []RankedDocument
	for _, r := range rows {
		i, ok := pos[r.DocumentID]
		if !ok {
			i = len(ranked)
			pos[r.DocumentID] = i
			ranked = append(ranked, RankedDocument{DocumentID: r.DocumentID, URL: r.URL})
		}
		ranked[i].Score += r.TFIDF
	}
	slices.SortFunc(ranked, func(a, b RankedDocument) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.DocumentID, b.DocumentID)
	})
	return ranked
}

// JoinIDs renders document IDs as "1, 2, 3".
func JoinIDs(ids []registry.DocumentID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ", ")
}
