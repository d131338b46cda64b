package config

import (
	"errors"
	"testing"

	"github.com/cognicore/noweats/pkg/noweats/chunk"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
)

func TestLoaderFull(t *testing.T) {
	loader := Loader{LexiconPath: writeFile(t, "lexicon.yaml", fullLexicon)}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !comp.EatVerbs.Contains("devoured") {
		t.Error("Expected 'devoured' in eat verbs")
	}
	if !comp.Stopwords.IsStop("some") || comp.Stopwords.IsStop("pizza") {
		t.Error("Stopwords should come from the file")
	}
	if comp.Filters.Accept("food") {
		t.Error("'food' should be rejected by match filter")
	}
	if comp.Tokenizer == nil || comp.Normalizer == nil || comp.Suppressor == nil ||
		comp.Chunker == nil || comp.Extractor == nil || comp.Merger == nil || comp.Ranker == nil {
		t.Fatal("All pipeline components should be constructed")
	}

	sentence := chunk.Sentence{
		chunk.Leaf{Word: "I", Tag: "PRP"},
		chunk.Leaf{Word: "ate", Tag: "VBD"},
		chunk.Group{Label: chunk.LabelNP, Children: []chunk.Leaf{{Word: "pizza", Tag: "NN"}}},
	}
	phrase, ok := comp.Extractor.Extract(sentence)
	if !ok || phrase != "pizza" {
		t.Errorf("Extract = %q, %v; want pizza", phrase, ok)
	}
}

func TestLoaderDefaultStopwords(t *testing.T) {
	content := "eat_verbs:\n  - canonical: eat\nfilters:\n  infix: []\n  prefix: []\n  suffix: []\n  match: []\n"
	comp, err := (&Loader{LexiconPath: writeFile(t, "lexicon.yaml", content)}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !comp.Stopwords.IsStop("the") {
		t.Error("Should fall back to the English stopword list")
	}
}

func TestLoaderNoLexicon(t *testing.T) {
	_, err := (&Loader{}).Load()
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoaderNonExistentSettings(t *testing.T) {
	loader := Loader{
		LexiconPath:  writeFile(t, "lexicon.yaml", fullLexicon),
		SettingsPath: "/nonexistent/settings.yaml",
	}
	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent settings")
	}
}

func TestLoaderMissingFilterList(t *testing.T) {
	content := "eat_verbs:\n  - canonical: eat\nfilters:\n  infix: []\n  prefix: []\n  suffix: []\n"
	_, err := (&Loader{LexiconPath: writeFile(t, "lexicon.yaml", content)}).Load()
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for missing match list, got %v", err)
	}
}
