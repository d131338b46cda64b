package counts

import (
	"sort"
	"strings"
)

// Counts maps a food phrase to the number of times it was extracted. Keys
// are never empty and values are always positive.
type Counts map[string]int

// Entry is one phrase with its count.
type Entry struct {
	Phrase string
	Count  int
}

// Extractor is the part of the phrase extractor the tally needs.
type Extractor[S any] interface {
	Extract(s S) (string, bool)
}

// New creates an empty table.
func New() Counts {
	return make(Counts)
}

// Add counts one occurrence of phrase. Empty phrases are ignored.
func (c Counts) Add(phrase string) {
	c.AddN(phrase, 1)
}

// AddN adds n occurrences of phrase. Empty phrases and non-positive n are
// ignored.
func (c Counts) AddN(phrase string, n int) {
	if strings.TrimSpace(phrase) == "" || n <= 0 {
		return
	}
	c[phrase] += n
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	t := 0
	for _, n := range c {
		t += n
	}
	return t
}

// MostCommon returns entries ordered by count descending, then phrase
// ascending.
func (c Counts) MostCommon() []Entry {
	entries := make([]Entry, 0, len(c))
	for p, n := range c {
		entries = append(entries, Entry{Phrase: p, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Phrase < entries[j].Phrase
	})
	return entries
}

// Tally runs the extractor over every sentence and counts the phrases it
// finds. Sentences without a phrase are skipped.
func Tally[S any](ex Extractor[S], sentences []S) Counts {
	c := New()
	for _, s := range sentences {
		if phrase, ok := ex.Extract(s); ok {
			c.Add(phrase)
		}
	}
	return c
}
