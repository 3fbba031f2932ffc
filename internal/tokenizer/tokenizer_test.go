package tokenizer

import (
	"errors"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
)

func TestTokenizePorter(t *testing.T) {
	tok := New(nil)
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"only stopwords", "The and of THE", nil},
		{"scenario", "the cat sat on the mat", []string{"cat", "sat", "mat"}},
		{"plurals and case", "Cats DOGS running", []string{"cat", "dog", "run"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTermBoundaries(t *testing.T) {
	tok := New(StemmerFunc(func(w string) string { return w }))
	tests := []struct {
		in   string
		want []string
	}{
		{"dog,dog;cat!", []string{"dog", "dog", "cat"}},
		{"snake_case x-ray", []string{"snake_case", "x", "ray"}},
		{"route 66", []string{"route", "66"}},
		{"Café NAÏVE", []string{"café", "naïve"}},
		{"  \n\t ", nil},
	}
	for _, tt := range tests {
		if got := tok.Tokenize(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTermsStopsEarly(t *testing.T) {
	tok := New(Suffix)
	var got []string
	for term := range tok.Terms("alpha beta gamma delta") {
		got = append(got, term)
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []string{"alpha", "beta"}) {
		t.Errorf("got %q", got)
	}
}

func TestSuffixStemmer(t *testing.T) {
	tests := map[string]string{
		"relational": "relate",
		"ponies":     "pony",
		"class":      "class",
		"jumped":     "jump",
		"is":         "is",
		"cats":       "cat",
	}
	for in, want := range tests {
		if got := Suffix.Stem(in); got != want {
			t.Errorf("Suffix.Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStemmerByName(t *testing.T) {
	for _, name := range []string{"", "porter", "PORTER", "suffix"} {
		if _, err := StemmerByName(name); err != nil {
			t.Errorf("StemmerByName(%q): %v", name, err)
		}
	}
	if _, err := StemmerByName("lancaster"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestStopwordCount(t *testing.T) {
	if len(stopWords) != 127 {
		t.Errorf("stopword list has %d entries, want 127", len(stopWords))
	}
}

func BenchmarkTokenize(b *testing.B) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog while running connections. ", 200)
	tok := New(nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(text)
	}
}
