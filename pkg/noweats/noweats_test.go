package noweats

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/noweats/pkg/noweats/chunk"
	"github.com/cognicore/noweats/pkg/noweats/counts"
	"github.com/cognicore/noweats/pkg/noweats/extract"
	"github.com/cognicore/noweats/pkg/noweats/filter"
	"github.com/cognicore/noweats/pkg/noweats/ingest"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/langmodel"
	"github.com/cognicore/noweats/pkg/noweats/lexicon"
	"github.com/cognicore/noweats/pkg/noweats/merge"
	"github.com/cognicore/noweats/pkg/noweats/rank"
	"github.com/cognicore/noweats/pkg/noweats/stoplist"
	"github.com/cognicore/noweats/pkg/noweats/store"
	"github.com/cognicore/noweats/pkg/noweats/store/memstore"
)

// dictTagger tags whitespace-separated words from a fixed table.
type dictTagger map[string]string

func (d dictTagger) Tag(sentence string) ([]chunk.Leaf, error) {
	var leaves []chunk.Leaf
	for _, w := range strings.Fields(sentence) {
		tag, ok := d[strings.ToLower(w)]
		if !ok {
			tag = "RB"
		}
		leaves = append(leaves, chunk.Leaf{Word: w, Tag: tag})
	}
	return leaves, nil
}

var testTags = dictTagger{
	"i": "PRP", "ate": "VBD", "a": "DT",
	"pizza": "NN", "pizzas": "NNS", "sushi": "NN", "tacos": "NNS",
	"big": "JJ",
}

func newTestEngine(t *testing.T, st store.Store, mutate ...func(*Options)) *Engine {
	t.Helper()
	eat := lexicon.FromGroups([]lexicon.Group{{Canonical: "eat", Variants: []string{"ate", "eating"}}})
	stops := stoplist.English()
	tok := ingest.NewTokenizer(stops)

	sup, err := ingest.NewSuppressor(tok, ingest.SuppressorOptions{KeepThresh: ingest.DefaultKeepThresh})
	require.NoError(t, err)
	ex, err := extract.New(eat, filter.Empty(), stops)
	require.NoError(t, err)
	mg, err := merge.New(merge.DefaultOptions())
	require.NoError(t, err)
	rk, err := rank.New(rank.DefaultOptions())
	require.NoError(t, err)

	opts := Options{
		Store:      st,
		Normalizer: ingest.NewNormalizer(eat),
		Suppressor: sup,
		Chunker:    chunk.NewPipeline(testTags, nil),
		Extractor:  ex,
		Merger:     mg,
		Ranker:     rk,
		TargetLang: "en",
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
	for _, m := range mutate {
		m(&opts)
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func batch() []ingest.Message {
	return []ingest.Message{
		{Text: "I ate pizza today", Lang: "en"},
		{Text: "Ate pizza today!!", Lang: "en"},
		{Text: "RT I ate tacos", Lang: "en"},
		{Text: "J'ai mangé une pizza", Lang: "fr"},
		{Text: "just ate a pizzas", Lang: "en"},
		{Text: "ate sushi", Lang: "en-GB"},
		{Text: "I ate a pizza", Lang: "en"},
		{Text: "no food here", Lang: "en"},
	}
}

func TestRun(t *testing.T) {
	st := memstore.New()
	e := newTestEngine(t, st)

	rep, err := e.Run(context.Background(), batch())
	require.NoError(t, err)

	assert.Equal(t, store.RunStats{
		Messages: 8, Accepted: 5, Unique: 3, Kept: 3, Sentences: 3, Phrases: 3,
	}, rep.Stats)

	assert.Equal(t, 1, rep.Counts["pizza"])
	assert.Equal(t, 1, rep.Counts["pizzas"])
	assert.Equal(t, 1, rep.Counts["sushi"])

	assert.Equal(t, 2, rep.Merged["pizza"])
	assert.Equal(t, 1, rep.Merged["sushi"])
	assert.Equal(t, rep.Counts.Total(), rep.Merged.Total())
	assert.Equal(t, []string{"sushi", "pizza"}, rep.Ranking)

	top := rep.Top()
	require.Len(t, top, 2)
	assert.Equal(t, "pizza", top[0].Phrase)

	parsed, err := ulid.ParseStrict(rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(rep.CreatedAt), parsed.Time())

	saved, err := st.GetRun(context.Background(), rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Ranking, saved.Ranking)
	assert.Equal(t, rep.Stats, saved.Stats)
}

func TestRunIDsAreOrdered(t *testing.T) {
	e := newTestEngine(t, nil)

	first, err := e.Run(context.Background(), batch())
	require.NoError(t, err)
	second, err := e.Run(context.Background(), batch())
	require.NoError(t, err)

	assert.Less(t, first.RunID, second.RunID)
}

func TestRunDeterministic(t *testing.T) {
	e := newTestEngine(t, nil)

	a, err := e.Run(context.Background(), batch())
	require.NoError(t, err)
	b, err := e.Run(context.Background(), batch())
	require.NoError(t, err)

	assert.Equal(t, a.Counts, b.Counts)
	assert.Equal(t, a.Ranking, b.Ranking)
}

func TestRunEmpty(t *testing.T) {
	e := newTestEngine(t, nil)

	rep, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Counts)
	assert.Empty(t, rep.Ranking)
}

func TestRunCanceled(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, batch())
	assert.ErrorIs(t, err, context.Canceled)
}

type failingTagger struct{}

func (failingTagger) Tag(string) ([]chunk.Leaf, error) { return nil, errors.New("tagger down") }

func TestRunSkipsChunkErrors(t *testing.T) {
	e := newTestEngine(t, nil, func(o *Options) {
		o.Chunker = chunk.NewPipeline(failingTagger{}, nil)
	})

	rep, err := e.Run(context.Background(), batch())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Stats.Sentences)
	assert.Empty(t, rep.Counts)
}

func TestRunWithLanguageModel(t *testing.T) {
	st := memstore.New()
	e := newTestEngine(t, st)
	tok := ingest.NewTokenizer(stoplist.English())

	_, err := e.TrainModel(context.Background(), store.DefaultModel, []ingest.Message{
		{Text: "I ate pizza and ate a salad and ate sushi", Lang: "en"},
		{Text: "ate pasta with cheese", Lang: "en"},
	}, tok)
	require.NoError(t, err)

	scorer, err := LoadScorer(context.Background(), st, store.DefaultModel, tok)
	require.NoError(t, err)

	withLM := newTestEngine(t, nil, func(o *Options) {
		o.Scorer = scorer
		o.KeepPct = 0.5
	})
	rep, err := withLM.Run(context.Background(), batch())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Stats.Unique)
	assert.Equal(t, 1, rep.Stats.Kept)
}

func TestLoadScorerMissingModel(t *testing.T) {
	_, err := LoadScorer(context.Background(), memstore.New(), "missing", nil)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	e := newTestEngine(t, nil)
	_, err = New(Options{
		Normalizer: e.normalizer, Suppressor: e.suppressor, Chunker: e.chunker,
		Extractor: e.extractor, Merger: e.merger, Ranker: e.ranker,
		Scorer: langmodel.NewScorer(langmodel.Train(nil), nil), KeepPct: 0,
	})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestTrainModelUsesEverySentence(t *testing.T) {
	st := memstore.New()
	e := newTestEngine(t, st)

	_, err := e.TrainModel(context.Background(), store.DefaultModel, []ingest.Message{
		{Text: "pasta with cheese tonight", Lang: "en"},
		{Text: "RT ramen forever", Lang: "en"},
		{Text: "fromage et baguette", Lang: "fr"},
	}, ingest.NewTokenizer(stoplist.English()))
	require.NoError(t, err)

	f, err := st.LoadModel(context.Background(), store.DefaultModel)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.Prefixes["pas"])
	assert.Equal(t, int64(1), f.Suffixes["ese"])
	assert.NotContains(t, f.Prefixes, "ram", "retweets are not trained on")
	assert.NotContains(t, f.Prefixes, "fro", "other languages are not trained on")
}

func TestRunLogsFilteredPhrases(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(t, nil, func(o *Options) {
		filters, err := filter.New(filter.Rules{Infix: []string{}, Prefix: []string{}, Suffix: []string{}, Match: []string{"big"}})
		require.NoError(t, err)
		eat := lexicon.FromGroups([]lexicon.Group{{Canonical: "eat", Variants: []string{"ate"}}})
		o.Extractor, err = extract.New(eat, filters, stoplist.English())
		require.NoError(t, err)
		o.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	rep, err := e.Run(context.Background(), []ingest.Message{{Text: "I ate a big pizza", Lang: "en"}})
	require.NoError(t, err)

	assert.Equal(t, counts.Counts{"pizza": 1}, rep.Counts)
	assert.Contains(t, buf.String(), "msg=filtered")
	assert.Contains(t, buf.String(), "to=pizza")
}
