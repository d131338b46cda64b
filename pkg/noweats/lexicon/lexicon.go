package lexicon

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon stores the eating-verb vocabulary as groups of a canonical verb
// and its inflections:
//
//	eat -> [eat, eats, eating, ate, eaten]
//
// Membership tests are case-insensitive. A Lexicon is built once at startup
// and only read afterwards.
type Lexicon struct {
	// canonical -> all variants (including canonical itself)
	groups map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// Group is one canonical verb with its variants, as stored in YAML.
type Group struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:       make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// FromTerms builds a lexicon where every term is its own group.
func FromTerms(terms ...string) *Lexicon {
	lex := New()
	for _, t := range terms {
		lex.AddGroup(t, nil)
	}
	return lex
}

// FromGroups builds a lexicon from decoded configuration groups.
func FromGroups(groups []Group) *Lexicon {
	lex := New()
	for _, g := range groups {
		lex.AddGroup(g.Canonical, g.Variants)
	}
	return lex
}

// LoadFromYAML loads verb groups from a YAML file.
//
// Expected format:
//
//	eat_verbs:
//	  - canonical: eat
//	    variants: [eats, eating, ate, eaten]
//	  - canonical: devour
//	    variants: [devoured, devouring]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		EatVerbs []Group `yaml:"eat_verbs"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return FromGroups(config.EatVerbs), nil
}

// AddGroup adds a canonical verb and its variants. Re-adding a canonical
// replaces its previous variants.
func (l *Lexicon) AddGroup(canonical string, variants []string) {
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if canonical == "" {
		return
	}

	if old, exists := l.groups[canonical]; exists {
		for _, v := range old {
			delete(l.reverseIndex, v)
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := map[string]bool{canonical: true}
	normalized = append(normalized, canonical)
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !seen[v] {
			normalized = append(normalized, v)
			seen[v] = true
		}
	}

	l.groups[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Contains reports whether word is any known variant.
func (l *Lexicon) Contains(word string) bool {
	_, ok := l.reverseIndex[strings.ToLower(word)]
	return ok
}

// Canonical returns the canonical verb for a variant.
func (l *Lexicon) Canonical(word string) (string, bool) {
	c, ok := l.reverseIndex[strings.ToLower(word)]
	return c, ok
}

// Terms returns every variant, sorted.
func (l *Lexicon) Terms() []string {
	terms := make([]string, 0, len(l.reverseIndex))
	for v := range l.reverseIndex {
		terms = append(terms, v)
	}
	sort.Strings(terms)
	return terms
}

// Len returns the number of variants.
func (l *Lexicon) Len() int {
	return len(l.reverseIndex)
}

// Pattern compiles a case-insensitive regexp that matches any variant as a
// substring. Longer terms come first so alternation prefers them. An empty
// lexicon yields a pattern matching everything.
func (l *Lexicon) Pattern() *regexp.Regexp {
	terms := l.Terms()
	if len(terms) == 0 {
		return regexp.MustCompile(`(?i)`)
	}
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}
