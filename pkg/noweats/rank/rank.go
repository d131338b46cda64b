package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/noweats/pkg/noweats/counts"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
)

// DefaultMatchThresh is the overlap above which a lower-scored phrase is
// folded into a higher-scored one.
const DefaultMatchThresh = 0.6

// Options configures a Ranker.
type Options struct {
	NumToFind   int     // number of phrases returned; 0 returns all
	MaxWords    int     // phrases with more terms are ignored; 0 disables
	MatchThresh float64 // overlap threshold for the merge pass
}

// DefaultOptions returns the default ranking settings.
func DefaultOptions() Options {
	return Options{MatchThresh: DefaultMatchThresh}
}

// Ranker picks the most distinctive phrases of a batch.
type Ranker struct {
	opts Options
}

// Scored is a phrase with its interestingness score.
type Scored struct {
	Phrase string
	Terms  []string
	Score  float64
}

// New validates options and returns a Ranker.
func New(opts Options) (*Ranker, error) {
	if opts.NumToFind < 0 {
		return nil, fmt.Errorf("%w: num_to_find must be >= 0, got %d", internalerr.ErrInvalidConfig, opts.NumToFind)
	}
	if opts.MaxWords < 0 {
		return nil, fmt.Errorf("%w: max_words must be >= 0, got %d", internalerr.ErrInvalidConfig, opts.MaxWords)
	}
	if opts.MatchThresh < 0 || opts.MatchThresh > 1 {
		return nil, fmt.Errorf("%w: match_thresh must be in [0,1], got %g", internalerr.ErrInvalidConfig, opts.MatchThresh)
	}
	return &Ranker{opts: opts}, nil
}

// Score computes a TF-IDF style score per phrase and returns phrases sorted
// by score, highest first.
//
//	weight(t) = sum of counts of phrases containing t
//	idf(t)    = log(N / weight(t)), N = number of distinct phrases
//	score(p)  = sum of idf over the unique terms of p
func (r *Ranker) Score(c counts.Counts) []Scored {
	numDocs := float64(len(c))

	var phrases []Scored
	weights := make(map[string]int)
	for phrase, n := range c {
		terms := strings.Fields(phrase)
		if len(terms) == 0 || (r.opts.MaxWords > 0 && len(terms) > r.opts.MaxWords) {
			continue
		}
		phrases = append(phrases, Scored{Phrase: strings.Join(terms, " "), Terms: terms})
		for t := range unique(terms) {
			weights[t] += n
		}
	}

	for i := range phrases {
		for t := range unique(phrases[i].Terms) {
			phrases[i].Score += math.Log(numDocs / float64(weights[t]))
		}
	}

	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].Score != phrases[j].Score {
			return phrases[i].Score > phrases[j].Score
		}
		return phrases[i].Phrase < phrases[j].Phrase
	})
	return phrases
}

// Rank returns the top phrases after folding near-duplicates: each phrase
// absorbs every lower-scored phrase whose overlap exceeds the threshold.
func (r *Ranker) Rank(c counts.Counts) []string {
	scored := r.Score(c)
	merged := make([]bool, len(scored))

	var out []string
	for i := range scored {
		if merged[i] {
			continue
		}
		merged[i] = true
		for j := i + 1; j < len(scored); j++ {
			if !merged[j] && MatchScore(scored[i].Terms, scored[j].Terms) > r.opts.MatchThresh {
				merged[j] = true
			}
		}
		out = append(out, scored[i].Phrase)
		if r.opts.NumToFind > 0 && len(out) == r.opts.NumToFind {
			break
		}
	}
	return out
}

// MatchScore measures how much two phrases overlap from the front. The
// shared leading terms, with the spaces between them, are compared to the
// longer phrase's character length.
func MatchScore(a, b []string) float64 {
	m := 0
	for m < len(a) && m < len(b) && a[m] == b[m] {
		m++
	}
	if m == 0 {
		return 0
	}

	matchLen := m - 1 + charLen(a[:m])
	aLen := matchLen + charLen(a[m:]) + len(a) - m
	bLen := matchLen + charLen(b[m:]) + len(b) - m

	longest := aLen
	if bLen > longest {
		longest = bLen
	}
	if longest == 0 {
		return 0
	}
	return float64(matchLen) / float64(longest)
}

func charLen(terms []string) int {
	n := 0
	for _, t := range terms {
		n += len(t)
	}
	return n
}

func unique(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}
