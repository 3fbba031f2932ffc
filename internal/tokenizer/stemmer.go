package tokenizer

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball/english"

	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
)

// Stemmer reduces a lowercased word to its indexing form.
type Stemmer interface {
	Stem(word string) string
}

// StemmerFunc adapts a plain function to Stemmer.
type StemmerFunc func(word string) string

// Stem calls f(word).
func (f StemmerFunc) Stem(word string) string { return f(word) }

const (
	StemmerPorter = "porter"
	StemmerSuffix = "suffix"
)

// Porter is the English Porter2 stemmer.
var Porter Stemmer = StemmerFunc(func(word string) string {
	return english.Stem(word, true)
})

// Suffix is a light rule-table stemmer: the first matching suffix whose
// replacement leaves at least minLen bytes wins.
var Suffix Stemmer = StemmerFunc(stemSuffix)

// StemmerByName returns the stemmer for a config value. Empty selects Porter.
func StemmerByName(name string) (Stemmer, error) {
	switch strings.ToLower(name) {
	case "", StemmerPorter:
		return Porter, nil
	case StemmerSuffix:
		return Suffix, nil
	default:
		return nil, fmt.Errorf("%w: unknown stemmer %q", apperrors.ErrInvalidInput, name)
	}
}

var suffixRules = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"eness", "ene", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ling", "l", 3},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"est", "", 3},
	{"ful", "", 3},
	{"ous", "", 3},
	{"ess", "", 3},
	{"ble", "", 3},
	{"ed", "", 3},
	{"er", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

func stemSuffix(word string) string {
	for _, rule := range suffixRules {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		stemmed := word[:len(word)-len(rule.suffix)] + rule.replacement
		if len(stemmed) >= rule.minLen {
			return stemmed
		}
	}
	return word
}
