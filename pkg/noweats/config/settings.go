package config

import (
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/cognicore/noweats/pkg/noweats/ingest"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/merge"
	"github.com/cognicore/noweats/pkg/noweats/rank"
)

// Settings are the numeric knobs of the pipeline. Each can be set in the
// settings YAML file or overridden with its NOWEATS_* environment variable.
type Settings struct {
	KeepThresh     int  `yaml:"keep_thresh" env:"NOWEATS_KEEP_THRESH" env-default:"1"`
	StemSignatures bool `yaml:"stem_signatures" env:"NOWEATS_STEM_SIGNATURES" env-default:"false"`

	KeepPct float64 `yaml:"keep_pct" env:"NOWEATS_KEEP_PCT" env-default:"0.95"`

	SimilarityThresh float64 `yaml:"similarity_thresh" env:"NOWEATS_SIMILARITY_THRESH" env-default:"0.7"`
	MinLen           int     `yaml:"min_len" env:"NOWEATS_MIN_LEN" env-default:"3"`
	MaxLen           int     `yaml:"max_len" env:"NOWEATS_MAX_LEN" env-default:"30"`
	NumToGet         int     `yaml:"num_to_get" env:"NOWEATS_NUM_TO_GET" env-default:"0"`

	NumToFind   int     `yaml:"num_to_find" env:"NOWEATS_NUM_TO_FIND" env-default:"0"`
	MaxWords    int     `yaml:"max_words" env:"NOWEATS_MAX_WORDS" env-default:"0"`
	MatchThresh float64 `yaml:"match_thresh" env:"NOWEATS_MATCH_THRESH" env-default:"0.6"`

	TargetLang string `yaml:"target_lang" env:"NOWEATS_TARGET_LANG" env-default:"en"`
	LogLevel   string `yaml:"log_level" env:"NOWEATS_LOG_LEVEL" env-default:"INFO"`
}

// LoadSettings reads settings from path, or from the environment only when
// path is empty, and validates them.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path != "" {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return Settings{}, fmt.Errorf("read settings %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&s); err != nil {
		return Settings{}, fmt.Errorf("read settings from env: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	switch {
	case s.KeepThresh < 0:
		return invalid("keep_thresh must be >= 0, got %d", s.KeepThresh)
	case s.KeepPct <= 0 || s.KeepPct > 1:
		return invalid("keep_pct must be in (0,1], got %g", s.KeepPct)
	case s.SimilarityThresh < 0 || s.SimilarityThresh > 1:
		return invalid("similarity_thresh must be in [0,1], got %g", s.SimilarityThresh)
	case s.MinLen < 0 || s.MaxLen < s.MinLen:
		return invalid("need 0 <= min_len <= max_len, got %d..%d", s.MinLen, s.MaxLen)
	case s.NumToGet < 0:
		return invalid("num_to_get must be >= 0, got %d", s.NumToGet)
	case s.NumToFind < 0:
		return invalid("num_to_find must be >= 0, got %d", s.NumToFind)
	case s.MaxWords < 0:
		return invalid("max_words must be >= 0, got %d", s.MaxWords)
	case s.MatchThresh < 0 || s.MatchThresh > 1:
		return invalid("match_thresh must be in [0,1], got %g", s.MatchThresh)
	case s.TargetLang == "":
		return invalid("target_lang is empty")
	}
	if _, err := s.Level(); err != nil {
		return invalid("log_level %q: %v", s.LogLevel, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{internalerr.ErrInvalidConfig}, args...)...)
}

// Level parses LogLevel.
func (s Settings) Level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(s.LogLevel))
	return lvl, err
}

// SuppressorOptions maps the dedup settings.
func (s Settings) SuppressorOptions() ingest.SuppressorOptions {
	return ingest.SuppressorOptions{KeepThresh: s.KeepThresh, StemSignatures: s.StemSignatures}
}

// MergeOptions maps the fuzzy merge settings.
func (s Settings) MergeOptions() merge.Options {
	return merge.Options{
		NumToGet:         s.NumToGet,
		SimilarityThresh: s.SimilarityThresh,
		MinLen:           s.MinLen,
		MaxLen:           s.MaxLen,
	}
}

// RankOptions maps the ranking settings.
func (s Settings) RankOptions() rank.Options {
	return rank.Options{NumToFind: s.NumToFind, MaxWords: s.MaxWords, MatchThresh: s.MatchThresh}
}
