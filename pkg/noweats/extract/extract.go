// Package extract pulls the food phrase out of a chunked sentence: the noun
// phrase right after an eating verb, optionally extended by a connective and
// a second noun phrase ("spicy taco with salsa").
//
// The scan is a single left-to-right pass with one element of lookahead.
// Only the first verb/noun-phrase match of a sentence is used.
package extract

import (
	"fmt"
	"strings"

	"github.com/cognicore/noweats/pkg/noweats/chunk"
	"github.com/cognicore/noweats/pkg/noweats/filter"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/lexicon"
	"github.com/cognicore/noweats/pkg/noweats/stoplist"
)

// Connectives may join two noun phrases into one food phrase.
var Connectives = []string{"of", "in", "on", "with", "and"}

// Extractor is read-only after construction and safe to share.
type Extractor struct {
	eat         *lexicon.Lexicon
	filters     *filter.Set
	stopwords   *stoplist.Set
	connectives map[string]struct{}
}

// Result describes one extraction.
type Result struct {
	Phrase     string // filtered phrase; empty when OK is false
	Unfiltered string // every word the automaton collected
	OK         bool
	final      state
}

// New creates an extractor. The eat lexicon must not be empty; filters and
// stopwords may be nil.
func New(eat *lexicon.Lexicon, filters *filter.Set, stopwords *stoplist.Set) (*Extractor, error) {
	if eat == nil || eat.Len() == 0 {
		return nil, fmt.Errorf("%w: empty eat lexicon", internalerr.ErrInvalidConfig)
	}
	conn := make(map[string]struct{}, len(Connectives))
	for _, c := range Connectives {
		conn[c] = struct{}{}
	}
	return &Extractor{eat: eat, filters: filters, stopwords: stopwords, connectives: conn}, nil
}

// Extract returns the food phrase of a sentence, if any.
func (e *Extractor) Extract(s chunk.Sentence) (string, bool) {
	r := e.ExtractDetailed(s)
	return r.Phrase, r.OK
}

// ExtractDetailed runs the automaton and reports both word lists.
func (e *Extractor) ExtractDetailed(s chunk.Sentence) Result {
	run := runner{e: e, state: stateScanEat}
	for _, c := range s {
		if run.state.terminal() {
			break
		}
		run.step(e.classify(c), c)
	}
	if !run.state.terminal() {
		run.step(inputEnd, nil)
	}

	res := Result{Unfiltered: strings.Join(run.words, " "), final: run.state}
	if run.state != stateNPComplete {
		return res
	}
	phrase := strings.Join(run.filtered, " ")
	if phrase == "" || e.stopwords.IsStop(phrase) {
		return res
	}
	res.Phrase = phrase
	res.OK = true
	return res
}

func (e *Extractor) classify(c chunk.Chunk) input {
	switch c := c.(type) {
	case chunk.Leaf:
		w := strings.ToLower(c.Word)
		if e.eat.Contains(w) {
			return inputEat
		}
		if _, ok := e.connectives[w]; ok {
			return inputConnective
		}
		return inputLeaf
	case chunk.Group:
		if len(c.Children) == 0 {
			return inputInvalid
		}
		if c.Label == chunk.LabelNP {
			return inputNP
		}
		return inputGroup
	default:
		return inputInvalid
	}
}

// keep reports whether an NP word belongs in the filtered phrase: nouns and
// adjectives that pass the lexical filters.
func (e *Extractor) keep(l chunk.Leaf) bool {
	return (strings.HasPrefix(l.Tag, "N") || strings.HasPrefix(l.Tag, "JJ")) && e.filters.Accept(l.Word)
}

type runner struct {
	e        *Extractor
	state    state
	words    []string
	filtered []string
}

func (r *runner) step(in input, c chunk.Chunk) {
	t := transitions[r.state][in]
	if r.apply(t.act, c) {
		r.state = t.next
	} else {
		r.state = t.onFail
	}
}

func (r *runner) apply(act action, c chunk.Chunk) bool {
	switch act {
	case actNone:
		return true
	case actExtractNP:
		r.words, r.filtered = nil, nil
		r.extend(c.(chunk.Group))
		return len(r.filtered) > 0
	case actAppendConnective:
		w := strings.ToLower(c.(chunk.Leaf).Word)
		r.words = append(r.words, w)
		r.filtered = append(r.filtered, w)
		return true
	case actExtendNP:
		r.extend(c.(chunk.Group))
		return true
	case actPopConnective:
		r.words = r.words[:len(r.words)-1]
		r.filtered = r.filtered[:len(r.filtered)-1]
		return true
	}
	return false
}

func (r *runner) extend(g chunk.Group) {
	for _, l := range g.Children {
		l.Word = strings.ToLower(l.Word)
		r.words = append(r.words, l.Word)
		if r.e.keep(l) {
			r.filtered = append(r.filtered, l.Word)
		}
	}
}
