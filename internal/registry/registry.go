// Package registry assigns stable integer document IDs to URLs. IDs start at
// 1, are handed out in first-seen order without gaps, and are never reused.
package registry

import (
	"fmt"
	"sync"

	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
)

// DocumentID identifies a registered URL.
type DocumentID int

// Document carries both identities of a page so callers resolve once.
type Document struct {
	ID  DocumentID `json:"id"`
	URL string     `json:"url"`
}

// Registry is a grow-only bidirectional URL↔ID map, safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byURL map[string]DocumentID
	urls  []string // urls[id-1]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{byURL: make(map[string]DocumentID)}
}

// Resolve returns the document for url, allocating the next ID on first sight.
func (r *Registry) Resolve(url string) Document {
	r.mu.RLock()
	id, ok := r.byURL[url]
	r.mu.RUnlock()
	if ok {
		return Document{ID: id, URL: url}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byURL[url]; ok {
		return Document{ID: id, URL: url}
	}
	r.urls = append(r.urls, url)
	id = DocumentID(len(r.urls))
	r.byURL[url] = id
	return Document{ID: id, URL: url}
}

// Lookup returns the URL for id or an error wrapping ErrDocumentNotFound.
func (r *Registry) Lookup(id DocumentID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 1 || int(id) > len(r.urls) {
		return "", fmt.Errorf("document %d: %w", id, apperrors.ErrDocumentNotFound)
	}
	return r.urls[id-1], nil
}

// MustLookup is Lookup for IDs the caller obtained from Resolve. An unknown
// ID is a programming error and panics.
func (r *Registry) MustLookup(id DocumentID) string {
	url, err := r.Lookup(id)
	if err != nil {
		panic(err)
	}
	return url
}

// Len returns the number of registered URLs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.urls)
}

// Documents returns every registered document in ID order.
func (r *Registry) Documents() []Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := make([]Document, len(r.urls))
	for i, url := range r.urls {
		docs[i] = Document{ID: DocumentID(i + 1), URL: url}
	}
	return docs
}
