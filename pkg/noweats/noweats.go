// Package noweats finds what people are eating from a batch of short social
// messages. The Engine runs every stage in order: normalize, suppress
// near-duplicates, keep the most language-like messages, chunk, extract
// food phrases, count, fuzzy-merge and rank.
package noweats

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/noweats/pkg/noweats/chunk"
	"github.com/cognicore/noweats/pkg/noweats/config"
	"github.com/cognicore/noweats/pkg/noweats/counts"
	"github.com/cognicore/noweats/pkg/noweats/extract"
	"github.com/cognicore/noweats/pkg/noweats/ingest"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/langmodel"
	"github.com/cognicore/noweats/pkg/noweats/merge"
	"github.com/cognicore/noweats/pkg/noweats/rank"
	"github.com/cognicore/noweats/pkg/noweats/store"
)

// Engine is the pipeline facade
type Engine struct {
	store      store.Store
	normalizer *ingest.Normalizer
	trainNorm  *ingest.Normalizer
	suppressor *ingest.Suppressor
	scorer     *langmodel.Scorer
	keepPct    float64
	chunker    chunk.Chunker
	extractor  *extract.Extractor
	merger     *merge.Merger
	ranker     *rank.Ranker
	targetLang string
	log        *slog.Logger
	now        func() time.Time

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine. Store, Scorer, TargetLang and Logger are
// optional.
type Options struct {
	Store      store.Store
	Normalizer *ingest.Normalizer
	Suppressor *ingest.Suppressor
	Scorer     *langmodel.Scorer
	KeepPct    float64
	Chunker    chunk.Chunker
	Extractor  *extract.Extractor
	Merger     *merge.Merger
	Ranker     *rank.Ranker
	TargetLang string // messages in other languages, and retweets, are dropped
	Logger     *slog.Logger
	Now        func() time.Time
}

// OptionsFromComponents fills Options from loaded configuration.
func OptionsFromComponents(c *config.Components) Options {
	return Options{
		Normalizer: c.Normalizer,
		Suppressor: c.Suppressor,
		KeepPct:    c.Settings.KeepPct,
		Chunker:    c.Chunker,
		Extractor:  c.Extractor,
		Merger:     c.Merger,
		Ranker:     c.Ranker,
		TargetLang: c.Settings.TargetLang,
	}
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Normalizer == nil, opts.Suppressor == nil, opts.Chunker == nil,
		opts.Extractor == nil, opts.Merger == nil, opts.Ranker == nil:
		return nil, fmt.Errorf("%w: engine needs normalizer, suppressor, chunker, extractor, merger and ranker", internalerr.ErrInvalidConfig)
	}
	if opts.Scorer != nil && (opts.KeepPct <= 0 || opts.KeepPct > 1) {
		return nil, fmt.Errorf("%w: keep_pct must be in (0,1], got %g", internalerr.ErrInvalidConfig, opts.KeepPct)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		store:      opts.Store,
		normalizer: opts.Normalizer,
		trainNorm:  ingest.NewNormalizer(nil),
		suppressor: opts.Suppressor,
		scorer:     opts.Scorer,
		keepPct:    opts.KeepPct,
		chunker:    opts.Chunker,
		extractor:  opts.Extractor,
		merger:     opts.Merger,
		ranker:     opts.Ranker,
		targetLang: opts.TargetLang,
		log:        opts.Logger,
		now:        opts.Now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Report is the outcome of one Run.
type Report struct {
	RunID     string
	CreatedAt time.Time
	Stats     store.RunStats
	Counts    counts.Counts // extracted phrase counts
	Groups    []merge.Group // fuzzy-merge groups, largest first
	Merged    counts.Counts
	Ranking   []string
}

// Top returns the merged phrases by count, highest first.
func (r Report) Top() []counts.Entry {
	return r.Merged.MostCommon()
}

// Run processes one batch of messages.
func (e *Engine) Run(ctx context.Context, msgs []ingest.Message) (Report, error) {
	now := e.now()
	id, err := e.newRunID(now)
	if err != nil {
		return Report{}, err
	}
	rep := Report{RunID: id, CreatedAt: now}
	rep.Stats.Messages = len(msgs)
	log := e.log.With("run", rep.RunID)

	docs := e.prepare(e.normalizer, msgs)
	rep.Stats.Accepted = len(docs)

	docs = e.suppressor.Suppress(docs)
	rep.Stats.Unique = len(docs)

	if e.scorer != nil {
		if docs, err = e.scorer.KeepTop(docs, e.keepPct); err != nil {
			return Report{}, err
		}
	}
	rep.Stats.Kept = len(docs)
	log.Info("messages prepared",
		"messages", rep.Stats.Messages, "accepted", rep.Stats.Accepted,
		"unique", rep.Stats.Unique, "kept", rep.Stats.Kept)

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	var chunked []chunk.Sentence
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		for _, sentence := range d.Sentences {
			rep.Stats.Sentences++
			c, err := e.chunker.Chunk(ctx, sentence)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return Report{}, err
				}
				log.Warn("chunk failed", "sentence", sentence, "err", err)
				continue
			}
			chunked = append(chunked, c)
		}
	}

	rep.Counts = counts.Tally[chunk.Sentence](loggingExtractor{ex: e.extractor, log: log}, chunked)
	rep.Stats.Phrases = rep.Counts.Total()
	log.Info("phrases extracted", "sentences", rep.Stats.Sentences, "phrases", rep.Stats.Phrases, "distinct", len(rep.Counts))

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	rep.Groups = e.merger.Merge(rep.Counts)
	rep.Merged = counts.New()
	for _, g := range rep.Groups {
		rep.Merged.AddN(g.Key, g.Count)
		if len(g.Members) > 1 {
			log.Debug("merged", "key", g.Key, "count", g.Count, "members", len(g.Members))
		}
	}
	rep.Ranking = e.ranker.Rank(rep.Merged)
	log.Info("ranked", "groups", len(rep.Groups), "ranked", len(rep.Ranking))

	if e.store != nil {
		err := e.store.SaveRun(ctx, store.Run{
			ID:        rep.RunID,
			CreatedAt: rep.CreatedAt,
			Stats:     rep.Stats,
			Counts:    rep.Counts,
			Merged:    rep.Merged,
			Ranking:   rep.Ranking,
		})
		if err != nil {
			return rep, fmt.Errorf("save run %s: %w", rep.RunID, err)
		}
	}
	return rep, nil
}

// loggingExtractor logs filter rewrites at debug level.
type loggingExtractor struct {
	ex  *extract.Extractor
	log *slog.Logger
}

func (l loggingExtractor) Extract(s chunk.Sentence) (string, bool) {
	res := l.ex.ExtractDetailed(s)
	if res.OK && res.Unfiltered != res.Phrase {
		l.log.Debug("filtered", "from", res.Unfiltered, "to", res.Phrase)
	}
	return res.Phrase, res.OK
}

func (e *Engine) newRunID(t time.Time) (string, error) {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), e.entropy)
	if err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	return id.String(), nil
}

// prepare drops foreign-language messages and retweets, then normalizes.
func (e *Engine) prepare(n *ingest.Normalizer, msgs []ingest.Message) []ingest.Doc {
	if e.targetLang == "" {
		return n.NormalizeAll(msgs)
	}
	accepted := make([]ingest.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Accept(e.targetLang) {
			accepted = append(accepted, m)
		}
	}
	return n.NormalizeAll(accepted)
}

// TrainModel trains a language model from a batch of messages and saves it
// under name when a store is configured. Messages pass the same acceptance
// and cleaning as Run, but every sentence is kept, not only those with an
// eating verb.
func (e *Engine) TrainModel(ctx context.Context, name string, msgs []ingest.Message, tok *ingest.Tokenizer) (*langmodel.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := e.prepare(e.trainNorm, msgs)
	model := langmodel.TrainFromDocs(docs, tok)
	e.log.Info("model trained", "docs", len(docs), "alphabet", model.AlphabetSize())

	if e.store != nil {
		if err := e.store.SaveModel(ctx, name, model.Features()); err != nil {
			return nil, fmt.Errorf("save model %q: %w", name, err)
		}
	}
	return model, nil
}

// LoadScorer rebuilds a stored model and wraps it in a Scorer.
func LoadScorer(ctx context.Context, st store.Store, name string, tok *ingest.Tokenizer) (*langmodel.Scorer, error) {
	f, err := st.LoadModel(ctx, name)
	if err != nil {
		return nil, err
	}
	return langmodel.NewScorer(langmodel.FromFeatures(f), tok), nil
}
