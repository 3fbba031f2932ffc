package index

import (
	"iter"
	"sync"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/registry"
)

// DocumentCounts is the term table of one indexed document.
type DocumentCounts struct {
	Document registry.Document `json:"document"`
	Terms    []TermCount       `json:"terms"`
	Total    int               `json:"total"`
}

// Store owns the registry and index of one crawl session. Crawler and
// scorer receive the same *Store; nothing is shared through globals.
type Store struct {
	registry *registry.Registry
	index    *Index

	mu      sync.RWMutex
	indexed []registry.Document
	seen    map[registry.DocumentID]struct{}
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{
		registry: registry.New(),
		index:    New(),
		seen:     make(map[registry.DocumentID]struct{}),
	}
}

// Registry returns the session's URL registry.
func (s *Store) Registry() *registry.Registry { return s.registry }

// Index returns the session's inverted index.
func (s *Store) Index() *Index { return s.index }

// Resolve registers url and returns its document handle.
func (s *Store) Resolve(url string) registry.Document {
	return s.registry.Resolve(url)
}

// IndexDocument records every term of doc and marks doc as indexed, even
// when terms is empty. Indexing the same document twice accumulates counts;
// callers are expected not to do that.
func (s *Store) IndexDocument(doc registry.Document, terms iter.Seq[string]) DocumentCounts {
	s.mu.Lock()
	s.index.mu.Lock()
	for term := range terms {
		s.index.recordLocked(term, doc.ID)
	}
	s.index.mu.Unlock()
	if _, ok := s.seen[doc.ID]; !ok {
		s.seen[doc.ID] = struct{}{}
		s.indexed = append(s.indexed, doc)
	}
	s.mu.Unlock()

	return DocumentCounts{
		Document: doc,
		Terms:    s.index.DocumentTerms(doc.ID),
		Total:    s.index.WordCount(doc.ID),
	}
}

// Documents returns the indexed documents in indexing order.
func (s *Store) Documents() []registry.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.Document, len(s.indexed))
	copy(out, s.indexed)
	return out
}

// DocumentCount returns N, the number of indexed documents.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.indexed)
}

// WordCount returns W(doc), the total number of terms recorded for doc.
func (s *Store) WordCount(doc registry.DocumentID) int {
	return s.index.WordCount(doc)
}

// DocumentTable returns the term table of every indexed document in
// indexing order. It is derived from the index on each call.
func (s *Store) DocumentTable() []DocumentCounts {
	docs := s.Documents()
	out := make([]DocumentCounts, len(docs))
	for i, doc := range docs {
		out[i] = DocumentCounts{
			Document: doc,
			Terms:    s.index.DocumentTerms(doc.ID),
			Total:    s.index.WordCount(doc.ID),
		}
	}
	return out
}
