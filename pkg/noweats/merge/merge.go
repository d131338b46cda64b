// Package merge consolidates near-duplicate food phrases ("pizza",
// "pizzas", "piza") whose spellings differ by a few edits.
package merge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/cognicore/noweats/pkg/noweats/counts"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
)

// Defaults mirror the settings file.
const (
	DefaultSimilarityThresh = 0.7
	DefaultMinLen           = 3
	DefaultMaxLen           = 30
)

// Options configures a Merger.
type Options struct {
	NumToGet         int     // maximum number of output keys; 0 means no cap
	SimilarityThresh float64 // phrases more similar than this are merged
	MinLen, MaxLen   int     // inclusive phrase length bounds in characters
}

// DefaultOptions returns the default merge settings.
func DefaultOptions() Options {
	return Options{
		SimilarityThresh: DefaultSimilarityThresh,
		MinLen:           DefaultMinLen,
		MaxLen:           DefaultMaxLen,
	}
}

// Group is one emitted key and the phrases it absorbed.
type Group struct {
	Key     string
	Count   int
	Members []counts.Entry // first member is the group head
}

// Merger is configured once and reused across batches.
type Merger struct {
	opts Options
}

// New validates options and returns a Merger.
func New(opts Options) (*Merger, error) {
	if opts.NumToGet < 0 {
		return nil, fmt.Errorf("%w: num_to_get must be >= 0, got %d", internalerr.ErrInvalidConfig, opts.NumToGet)
	}
	if opts.SimilarityThresh < 0 || opts.SimilarityThresh > 1 {
		return nil, fmt.Errorf("%w: similarity_thresh must be in [0,1], got %g", internalerr.ErrInvalidConfig, opts.SimilarityThresh)
	}
	if opts.MinLen < 0 || opts.MaxLen < opts.MinLen {
		return nil, fmt.Errorf("%w: invalid length range [%d,%d]", internalerr.ErrInvalidConfig, opts.MinLen, opts.MaxLen)
	}
	return &Merger{opts: opts}, nil
}

// Similarity is 1 - edit distance / length of the longer phrase.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Merge groups similar phrases. Phrases are visited by descending count; each
// unmerged phrase absorbs every later unmerged phrase more similar than the
// threshold. The key of a group is its member with the largest count, the
// first seen winning ties, and its count is the sum of its members' counts.
// Once NumToGet groups exist the remaining phrases are dropped.
func (m *Merger) Merge(c counts.Counts) []Group {
	entries := m.candidates(c)
	merged := make([]bool, len(entries))

	var groups []Group
	for i, head := range entries {
		if merged[i] {
			continue
		}
		merged[i] = true

		if m.opts.NumToGet > 0 && len(groups) == m.opts.NumToGet {
			break
		}

		g := Group{Key: head.Phrase, Count: head.Count, Members: []counts.Entry{head}}
		best := head.Count
		for j := i + 1; j < len(entries); j++ {
			if merged[j] || Similarity(head.Phrase, entries[j].Phrase) <= m.opts.SimilarityThresh {
				continue
			}
			merged[j] = true
			g.Members = append(g.Members, entries[j])
			g.Count += entries[j].Count
			if entries[j].Count > best {
				best = entries[j].Count
				g.Key = entries[j].Phrase
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// MergeCounts is Merge returning the emitted keys as a count table.
func (m *Merger) MergeCounts(c counts.Counts) counts.Counts {
	out := counts.New()
	for _, g := range m.Merge(c) {
		out.AddN(g.Key, g.Count)
	}
	return out
}

// candidates lowercases keys, folding case variants together, and keeps
// phrases inside the length bounds, most common first.
func (m *Merger) candidates(c counts.Counts) []counts.Entry {
	lowered := counts.New()
	for p, n := range c {
		lowered.AddN(strings.ToLower(p), n)
	}
	all := lowered.MostCommon()
	kept := all[:0]
	for _, e := range all {
		n := utf8.RuneCountInString(e.Phrase)
		if n >= m.opts.MinLen && n <= m.opts.MaxLen {
			kept = append(kept, e)
		}
	}
	return kept
}
