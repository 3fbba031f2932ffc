// Package tokenizer turns raw text into the stream of terms the index and
// the scorer agree on: word runs, lowercased, stopwords removed, stemmed.
// Queries and documents must go through the same Tokenizer.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer is safe for concurrent use; it holds no mutable state.
type Tokenizer struct {
	stemmer Stemmer
}

// New returns a Tokenizer using stemmer, or Porter if stemmer is nil.
func New(stemmer Stemmer) *Tokenizer {
	if stemmer == nil {
		stemmer = Porter
	}
	return &Tokenizer{stemmer: stemmer}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Terms yields the terms of text in input order. The sequence is computed
// lazily and is meant to be ranged over once.
func (t *Tokenizer) Terms(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i <= len(text); {
			r, size := utf8.RuneError, 1
			if i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
			}
			if i < len(text) && isWordRune(r) {
				if start < 0 {
					start = i
				}
				i += size
				continue
			}
			if start >= 0 {
				if term, ok := t.term(text[start:i]); ok && !yield(term) {
					return
				}
				start = -1
			}
			i += size
		}
	}
}

func (t *Tokenizer) term(word string) (string, bool) {
	word = strings.ToLower(word)
	if IsStopword(word) {
		return "", false
	}
	stemmed := t.stemmer.Stem(word)
	if stemmed == "" {
		return "", false
	}
	return stemmed, true
}

// Tokenize collects Terms(text) into a slice. Empty input gives nil.
func (t *Tokenizer) Tokenize(text string) []string {
	var terms []string
	for term := range t.Terms(text) {
		terms = append(terms, term)
	}
	return terms
}
