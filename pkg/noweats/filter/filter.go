// Package filter rejects words that should never appear in a food phrase:
// vulgarities, corpus-specific noise and words that only look like food.
package filter

import (
	"fmt"
	"strings"

	"github.com/cognicore/noweats/pkg/noweats/internalerr"
)

// Rules are the four configured rejection lists. Every list must be present;
// a nil list is a configuration error while an empty one disables that rule.
type Rules struct {
	Infix  []string `yaml:"infix"`
	Prefix []string `yaml:"prefix"`
	Suffix []string `yaml:"suffix"`
	Match  []string `yaml:"match"`
}

// Set is a compiled, read-only word acceptance predicate.
type Set struct {
	infix  []string
	prefix []string
	suffix []string
	match  map[string]struct{}
}

// New compiles rules into a Set.
func New(r Rules) (*Set, error) {
	var missing []string
	if r.Infix == nil {
		missing = append(missing, "infix")
	}
	if r.Prefix == nil {
		missing = append(missing, "prefix")
	}
	if r.Suffix == nil {
		missing = append(missing, "suffix")
	}
	if r.Match == nil {
		missing = append(missing, "match")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: filter lists missing: %s", internalerr.ErrInvalidConfig, strings.Join(missing, ", "))
	}

	s := &Set{
		infix:  lowerAll(r.Infix),
		prefix: lowerAll(r.Prefix),
		suffix: lowerAll(r.Suffix),
		match:  make(map[string]struct{}, len(r.Match)),
	}
	for _, m := range lowerAll(r.Match) {
		s.match[m] = struct{}{}
	}
	return s, nil
}

// Empty returns a Set that accepts every word.
func Empty() *Set {
	s, _ := New(Rules{Infix: []string{}, Prefix: []string{}, Suffix: []string{}, Match: []string{}})
	return s
}

// Accept reports whether word passes all four rules.
func (s *Set) Accept(word string) bool {
	if s == nil {
		return true
	}
	w := strings.ToLower(word)
	return s.passInfix(w) && s.passPrefix(w) && s.passSuffix(w) && s.passMatch(w)
}

func (s *Set) passInfix(w string) bool {
	for _, f := range s.infix {
		if strings.Contains(w, f) {
			return false
		}
	}
	return true
}

// A prefix only rejects words strictly longer than itself.
func (s *Set) passPrefix(w string) bool {
	for _, f := range s.prefix {
		if len(w) > len(f) && strings.HasPrefix(w, f) {
			return false
		}
	}
	return true
}

// A suffix only rejects words strictly longer than itself.
func (s *Set) passSuffix(w string) bool {
	for _, f := range s.suffix {
		if len(w) > len(f) && strings.HasSuffix(w, f) {
			return false
		}
	}
	return true
}

func (s *Set) passMatch(w string) bool {
	_, hit := s.match[w]
	return !hit
}

// lowerAll drops empty entries; an empty infix would reject every word.
func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
