package config

import (
	"fmt"

	"github.com/cognicore/noweats/pkg/noweats/chunk"
	"github.com/cognicore/noweats/pkg/noweats/extract"
	"github.com/cognicore/noweats/pkg/noweats/filter"
	"github.com/cognicore/noweats/pkg/noweats/ingest"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/lexicon"
	"github.com/cognicore/noweats/pkg/noweats/merge"
	"github.com/cognicore/noweats/pkg/noweats/rank"
	"github.com/cognicore/noweats/pkg/noweats/stoplist"
)

// Loader loads the configuration files and constructs components
type Loader struct {
	LexiconPath  string
	SettingsPath string // optional; environment and defaults otherwise
}

// Components holds every pipeline stage, built once.
type Components struct {
	Settings Settings

	EatVerbs  *lexicon.Lexicon
	Stopwords *stoplist.Set
	Filters   *filter.Set

	Tokenizer  *ingest.Tokenizer
	Normalizer *ingest.Normalizer
	Suppressor *ingest.Suppressor
	Chunker    chunk.Chunker
	Extractor  *extract.Extractor
	Merger     *merge.Merger
	Ranker     *rank.Ranker
}

// Load reads the configuration and returns initialized components
func (l *Loader) Load() (*Components, error) {
	if l.LexiconPath == "" {
		return nil, fmt.Errorf("%w: lexicon path is required", internalerr.ErrInvalidConfig)
	}

	settings, err := LoadSettings(l.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	lexFile, err := LoadLexicon(l.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	comp := &Components{Settings: settings}
	comp.EatVerbs = lexicon.FromGroups(lexFile.EatVerbs)

	if lexFile.Stopwords != nil {
		comp.Stopwords = stoplist.New(lexFile.Stopwords)
	} else {
		comp.Stopwords = stoplist.English()
	}

	if comp.Filters, err = filter.New(*lexFile.Filters); err != nil {
		return nil, fmt.Errorf("load filters: %w", err)
	}

	comp.Tokenizer = ingest.NewTokenizer(comp.Stopwords)
	comp.Normalizer = ingest.NewNormalizer(comp.EatVerbs)
	if comp.Suppressor, err = ingest.NewSuppressor(comp.Tokenizer, settings.SuppressorOptions()); err != nil {
		return nil, err
	}
	comp.Chunker = chunk.NewPipeline(chunk.NewProseTagger(), chunk.NewNPChunker())
	if comp.Extractor, err = extract.New(comp.EatVerbs, comp.Filters, comp.Stopwords); err != nil {
		return nil, err
	}
	if comp.Merger, err = merge.New(settings.MergeOptions()); err != nil {
		return nil, err
	}
	if comp.Ranker, err = rank.New(settings.RankOptions()); err != nil {
		return nil, err
	}

	return comp, nil
}
