package ingest

import (
	"strings"
	"unicode"

	"github.com/cognicore/noweats/pkg/noweats/stoplist"
)

// Tokenizer splits cleaned sentences into lowercase words.
type Tokenizer struct {
	stopwords *stoplist.Set
}

// NewTokenizer creates a new tokenizer with the given stopword set. A nil set
// disables stopword removal.
func NewTokenizer(stopwords *stoplist.Set) *Tokenizer {
	return &Tokenizer{stopwords: stopwords}
}

// Words splits text into lowercase words. Letters, digits, inner hyphens and
// apostrophes belong to a word; everything else separates words.
func (t *Tokenizer) Words(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			if word := cleanToken(current.String()); word != "" {
				tokens = append(tokens, word)
			}
			current.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// Tokenize splits text into lowercase words, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	words := t.Words(text)
	kept := words[:0]
	for _, w := range words {
		if !t.stopwords.IsStop(w) {
			kept = append(kept, w)
		}
	}
	return kept
}

// cleanToken strips leading/trailing hyphens and apostrophes and collapses
// consecutive hyphens.
func cleanToken(token string) string {
	token = strings.Trim(token, "-'")

	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}

	return token
}
