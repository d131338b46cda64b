package stoplist

import (
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"
)

// Set is a read-only stopword lookup shared by the dedup signature and the
// phrase extractor.
type Set struct {
	stops       map[string]struct{}
	useFallback bool
}

// New creates a stopword set from the given terms. Terms are lowercased.
func New(terms []string) *Set {
	stops := make(map[string]struct{}, len(terms))
	for _, s := range terms {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			stops[s] = struct{}{}
		}
	}
	return &Set{stops: stops}
}

// English returns a set backed by the snowball English stopword list.
// Extra terms are added on top.
func English(extra ...string) *Set {
	s := New(extra)
	s.useFallback = true
	return s
}

// IsStop checks if a token is a stopword
func (s *Set) IsStop(token string) bool {
	if s == nil {
		return false
	}
	token = strings.ToLower(token)
	if _, ok := s.stops[token]; ok {
		return true
	}
	return s.useFallback && english.IsStopWord(token)
}

// Len returns the number of explicitly configured terms.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.stops)
}

// All returns the explicitly configured terms, sorted.
func (s *Set) All() []string {
	if s == nil {
		return nil
	}
	result := make([]string, 0, len(s.stops))
	for w := range s.stops {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}
