package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/noweats/pkg/noweats/chunk"
	"github.com/cognicore/noweats/pkg/noweats/filter"
	"github.com/cognicore/noweats/pkg/noweats/lexicon"
	"github.com/cognicore/noweats/pkg/noweats/stoplist"
)

func leaf(w, tag string) chunk.Leaf { return chunk.Leaf{Word: w, Tag: tag} }

func np(pairs ...string) chunk.Group {
	g := chunk.Group{Label: chunk.LabelNP}
	for i := 0; i+1 < len(pairs); i += 2 {
		g.Children = append(g.Children, leaf(pairs[i], pairs[i+1]))
	}
	return g
}

// tacoSentence is "I/PRP ate/VBD NP[a/DT spicy/JJ taco/NN] with/IN NP[salsa/NN]".
func tacoSentence() chunk.Sentence {
	return chunk.Sentence{
		leaf("I", "PRP"),
		leaf("ate", "VBD"),
		np("a", "DT", "spicy", "JJ", "taco", "NN"),
		leaf("with", "IN"),
		np("salsa", "NN"),
	}
}

func newExtractor(t *testing.T, eat []string, rules *filter.Rules, stops []string) *Extractor {
	t.Helper()
	fs := filter.Empty()
	if rules != nil {
		var err error
		fs, err = filter.New(*rules)
		require.NoError(t, err)
	}
	e, err := New(lexicon.FromTerms(eat...), fs, stoplist.New(stops))
	require.NoError(t, err)
	return e
}

func TestScenarioVerbNounConnective(t *testing.T) {
	e := newExtractor(t, []string{"ate"}, nil, nil)

	got, ok := e.Extract(tacoSentence())
	require.True(t, ok)
	assert.Equal(t, "spicy taco with salsa", got)
}

func TestScenarioVerbNotInLexicon(t *testing.T) {
	e := newExtractor(t, []string{"drank"}, nil, nil)

	r := e.ExtractDetailed(tacoSentence())
	assert.False(t, r.OK)
	assert.Empty(t, r.Phrase)
	assert.Equal(t, stateScanEat, r.final)
}

func TestScenarioInfixFilterAfterNPFound(t *testing.T) {
	rules := filter.Rules{Infix: []string{"tac"}, Prefix: []string{}, Suffix: []string{}, Match: []string{}}
	e := newExtractor(t, []string{"ate"}, &rules, nil)

	r := e.ExtractDetailed(tacoSentence())
	require.True(t, r.OK)
	assert.Equal(t, "spicy with salsa", r.Phrase)
	assert.Equal(t, "a spicy taco with salsa", r.Unfiltered)
}

func TestDeterministic(t *testing.T) {
	e := newExtractor(t, []string{"ate"}, nil, nil)

	first, _ := e.Extract(tacoSentence())
	for i := 0; i < 20; i++ {
		got, ok := e.Extract(tacoSentence())
		require.True(t, ok)
		assert.Equal(t, first, got)
	}
}

func TestExtractCases(t *testing.T) {
	e := newExtractor(t, []string{"ate", "eating"}, nil, []string{"it", "something"})

	tests := []struct {
		name   string
		in     chunk.Sentence
		want   string
		wantOK bool
	}{
		{
			name:   "verb at end of sentence",
			in:     chunk.Sentence{leaf("I", "PRP"), leaf("ate", "VBD")},
			wantOK: false,
		},
		{
			name:   "verb followed by a leaf",
			in:     chunk.Sentence{leaf("ate", "VBD"), leaf("quickly", "RB"), np("pizza", "NN")},
			wantOK: false,
		},
		{
			name:   "np at end of sentence",
			in:     chunk.Sentence{leaf("Eating", "VBG"), np("cold", "JJ", "Pizza", "NN")},
			want:   "cold pizza",
			wantOK: true,
		},
		{
			name:   "connective at end is undone",
			in:     chunk.Sentence{leaf("ate", "VBD"), np("pizza", "NN"), leaf("with", "IN")},
			want:   "pizza",
			wantOK: true,
		},
		{
			name:   "connective followed by leaf is undone",
			in:     chunk.Sentence{leaf("ate", "VBD"), np("pizza", "NN"), leaf("and", "CC"), leaf("slept", "VBD")},
			want:   "pizza",
			wantOK: true,
		},
		{
			name:   "np followed by other leaf completes",
			in:     chunk.Sentence{leaf("ate", "VBD"), np("pizza", "NN"), leaf("today", "RB"), leaf("with", "IN"), np("bob", "NNP")},
			want:   "pizza",
			wantOK: true,
		},
		{
			name:   "np with only determiners restarts scan",
			in:     chunk.Sentence{leaf("ate", "VBD"), np("that", "DT", "one", "CD"), leaf("then", "RB"), leaf("ate", "VBD"), np("soup", "NN")},
			want:   "soup",
			wantOK: true,
		},
		{
			name:   "only first match is used",
			in:     chunk.Sentence{leaf("ate", "VBD"), np("soup", "NN"), leaf("then", "RB"), leaf("ate", "VBD"), np("cake", "NN")},
			want:   "soup",
			wantOK: true,
		},
		{
			name:   "second np keeps only nouns and adjectives",
			in:     chunk.Sentence{leaf("ate", "VBD"), np("rice", "NN"), leaf("with", "IN"), np("my", "PRP$", "mom", "NN")},
			want:   "rice with mom",
			wantOK: true,
		},
		{
			name:   "phrase equal to stopword is rejected",
			in:     chunk.Sentence{leaf("ate", "VBD"), np("something", "NN")},
			wantOK: false,
		},
		{
			name:   "other group label is not an np",
			in:     chunk.Sentence{leaf("ate", "VBD"), chunk.Group{Label: "VP", Children: []chunk.Leaf{leaf("run", "VB")}}},
			wantOK: false,
		},
		{
			name:   "empty sentence",
			in:     chunk.Sentence{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Connective handling uses the multi-connective variant (of, in, on, with,
// and) with the connective popped when no NP follows. The single-connective
// variant would stop at "on" and "and".
func TestMultiConnectiveVariant(t *testing.T) {
	e := newExtractor(t, []string{"ate"}, nil, nil)

	for _, conn := range []string{"of", "in", "on", "with", "and", "With"} {
		in := chunk.Sentence{leaf("ate", "VBD"), np("chips", "NNS"), leaf(conn, "IN"), np("guac", "NN")}
		got, ok := e.Extract(in)
		require.True(t, ok, conn)
		assert.Equal(t, "chips "+strings.ToLower(conn)+" guac", got)
	}

	in := chunk.Sentence{leaf("ate", "VBD"), np("chips", "NNS"), leaf("at", "IN"), np("home", "NN")}
	got, ok := e.Extract(in)
	require.True(t, ok)
	assert.Equal(t, "chips", got)
}

// Phrases equal to a stopword are rejected; the variant that kept them is
// not supported.
func TestStopwordPhraseRejected(t *testing.T) {
	e := newExtractor(t, []string{"ate"}, nil, []string{"lunch"})

	_, ok := e.Extract(chunk.Sentence{leaf("ate", "VBD"), np("Lunch", "NN")})
	assert.False(t, ok)

	got, ok := e.Extract(chunk.Sentence{leaf("ate", "VBD"), np("late", "JJ", "lunch", "NN")})
	require.True(t, ok)
	assert.Equal(t, "late lunch", got)
}

func TestMalformedInputYieldsNoPhrase(t *testing.T) {
	e := newExtractor(t, []string{"ate"}, nil, nil)

	tests := []chunk.Sentence{
		{leaf("ate", "VBD"), nil, np("pizza", "NN")},
		{leaf("ate", "VBD"), chunk.Group{Label: chunk.LabelNP}},
		{nil},
	}
	for _, in := range tests {
		r := e.ExtractDetailed(in)
		assert.False(t, r.OK)
		assert.Equal(t, stateInvalid, r.final)
	}

	// Malformed elements after completion are never read.
	got, ok := e.Extract(chunk.Sentence{leaf("ate", "VBD"), np("pizza", "NN"), leaf("now", "RB"), nil})
	require.True(t, ok)
	assert.Equal(t, "pizza", got)
}

func TestNewRequiresLexicon(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
	_, err = New(lexicon.New(), nil, nil)
	assert.Error(t, err)
}

func lexiconOf(terms ...string) *lexicon.Lexicon { return lexicon.FromTerms(terms...) }

func chunkGroup(label string, pairs ...string) chunk.Group {
	g := np(pairs...)
	g.Label = label
	return g
}
