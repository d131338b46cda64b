package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"

	"github.com/cognicore/noweats/pkg/noweats/internalerr"
)

// DefaultKeepThresh keeps only messages whose signature is unique in the
// batch.
const DefaultKeepThresh = 1

// Suppressor drops messages that share a word signature with too many
// others; identical word sets across a batch are almost always spam
// broadcasts.
type Suppressor struct {
	tokenizer  *Tokenizer
	keepThresh int
	stem       bool
}

// SuppressorOptions configures a Suppressor.
type SuppressorOptions struct {
	KeepThresh     int  // largest signature group that is kept
	StemSignatures bool // stem words before building signatures
}

// NewSuppressor creates a duplicate suppressor. The tokenizer's stopword set
// defines which words are ignored in signatures.
func NewSuppressor(tok *Tokenizer, opts SuppressorOptions) (*Suppressor, error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: suppressor needs a tokenizer", internalerr.ErrInvalidConfig)
	}
	if opts.KeepThresh < 0 {
		return nil, fmt.Errorf("%w: keep_thresh must be >= 0, got %d", internalerr.ErrInvalidConfig, opts.KeepThresh)
	}
	return &Suppressor{tokenizer: tok, keepThresh: opts.KeepThresh, stem: opts.StemSignatures}, nil
}

// Signature returns the order-independent key of a document: its sorted,
// unique, non-stopword lowercase words.
func (s *Suppressor) Signature(d Doc) string {
	set := make(map[string]struct{})
	for _, sentence := range d.Sentences {
		for _, w := range s.tokenizer.Tokenize(sentence) {
			if s.stem {
				w = english.Stem(w, false)
			}
			set[w] = struct{}{}
		}
	}
	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

// Suppress returns the documents whose signature group has at most
// keepThresh members. Kept documents stay in input order.
func (s *Suppressor) Suppress(docs []Doc) []Doc {
	sigs := make([]string, len(docs))
	groups := make(map[string]int, len(docs))
	for i, d := range docs {
		sigs[i] = s.Signature(d)
		groups[sigs[i]]++
	}

	kept := make([]Doc, 0, len(docs))
	for i, d := range docs {
		if groups[sigs[i]] <= s.keepThresh {
			kept = append(kept, d)
		}
	}
	return kept
}
