// Package index holds the session's inverted index and the Store that owns
// it together with the URL registry.
//
// Counts are stored under a composite (TermID, DocumentID) key. Terms are
// interned into dense TermIDs on first sight; every per-term and per-document
// list keeps first-recorded order so derived views are deterministic.
package index

import (
	"cmp"
	"slices"
	"sync"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/registry"
)

// TermID is the dense dictionary ID of a term, starting at 0.
type TermID int32

type postingKey struct {
	term TermID
	doc  registry.DocumentID
}

// Posting is one (document, count) entry of a term.
type Posting struct {
	DocumentID registry.DocumentID `json:"document_id"`
	Count      int                 `json:"count"`
}

// TermCount is one (term, count) entry of a document.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Index is an append-only inverted index, safe for concurrent use.
// Invariant: every stored count is > 0.
type Index struct {
	mu       sync.RWMutex
	termIDs  map[string]TermID
	terms    []string
	counts   map[postingKey]int
	postings [][]registry.DocumentID // by TermID, first-recorded order
	totals   []int                   // by TermID, occurrences across all documents
	docTerms map[registry.DocumentID][]TermID
	docLen   map[registry.DocumentID]int
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		termIDs:  make(map[string]TermID),
		counts:   make(map[postingKey]int),
		docTerms: make(map[registry.DocumentID][]TermID),
		docLen:   make(map[registry.DocumentID]int),
	}
}

// Record adds one occurrence of term to doc.
func (x *Index) Record(term string, doc registry.DocumentID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.recordLocked(term, doc)
}

func (x *Index) recordLocked(term string, doc registry.DocumentID) {
	id, ok := x.termIDs[term]
	if !ok {
		id = TermID(len(x.terms))
		x.termIDs[term] = id
		x.terms = append(x.terms, term)
		x.postings = append(x.postings, nil)
		x.totals = append(x.totals, 0)
	}
	k := postingKey{term: id, doc: doc}
	if x.counts[k] == 0 {
		x.postings[id] = append(x.postings[id], doc)
		x.docTerms[doc] = append(x.docTerms[doc], id)
	}
	x.counts[k]++
	x.totals[id]++
	x.docLen[doc]++
}

// DocumentFrequency returns the number of distinct documents containing term.
func (x *Index) DocumentFrequency(term string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	id, ok := x.termIDs[term]
	if !ok {
		return 0
	}
	return len(x.postings[id])
}

// TermFrequency returns the raw count of term in doc, or 0.
func (x *Index) TermFrequency(term string, doc registry.DocumentID) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	id, ok := x.termIDs[term]
	if !ok {
		return 0
	}
	return x.counts[postingKey{term: id, doc: doc}]
}

// WordCount returns the sum of all term counts recorded for doc.
func (x *Index) WordCount(doc registry.DocumentID) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.docLen[doc]
}

// Postings returns the documents containing term in first-recorded order.
func (x *Index) Postings(term string) []Posting {
	x.mu.RLock()
	defer x.mu.RUnlock()
	id, ok := x.termIDs[term]
	if !ok {
		return nil
	}
	out := make([]Posting, len(x.postings[id]))
	for i, doc := range x.postings[id] {
		out[i] = Posting{DocumentID: doc, Count: x.counts[postingKey{term: id, doc: doc}]}
	}
	return out
}

// DocumentTerms returns doc's terms with counts in first-recorded order.
func (x *Index) DocumentTerms(doc registry.DocumentID) []TermCount {
	x.mu.RLock()
	defer x.mu.RUnlock()
	ids := x.docTerms[doc]
	out := make([]TermCount, len(ids))
	for i, id := range ids {
		out[i] = TermCount{Term: x.terms[id], Count: x.counts[postingKey{term: id, doc: doc}]}
	}
	return out
}

// TermCount returns the number of distinct terms.
func (x *Index) TermCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.terms)
}

// TermSummary is a term with its total occurrences and the documents it
// appears in.
type TermSummary struct {
	Term      string                `json:"term"`
	Total     int                   `json:"total"`
	Documents []registry.DocumentID `json:"documents"`
}

// TopTerms returns up to n terms with the highest total occurrence count.
// Ties keep dictionary order, i.e. the term recorded first wins.
func (x *Index) TopTerms(n int) []TermSummary {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	ids := make([]TermID, len(x.terms))
	for i := range ids {
		ids[i] = TermID(i)
	}
	slices.SortStableFunc(ids, func(a, b TermID) int {
		return cmp.Compare(x.totals[b], x.totals[a])
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	out := make([]TermSummary, len(ids))
	for i, id := range ids {
		out[i] = TermSummary{
			Term:      x.terms[id],
			Total:     x.totals[id],
			Documents: slices.Clone(x.postings[id]),
		}
	}
	return out
}
