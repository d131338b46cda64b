package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/noweats/pkg/noweats/filter"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/lexicon"
)

// Lexicon is the word-list configuration file.
//
//	eat_verbs:
//	  - canonical: eat
//	    variants: [eats, eating, ate, eaten]
//	stopwords: [a, the]
//	filters:
//	  infix: [...]
//	  prefix: [...]
//	  suffix: [...]
//	  match: [...]
//
// Stopwords are optional; when absent the snowball English list is used.
// All four filter lists are required but may be empty.
type Lexicon struct {
	EatVerbs  []lexicon.Group `yaml:"eat_verbs"`
	Stopwords []string        `yaml:"stopwords"`
	Filters   *filter.Rules   `yaml:"filters"`
}

// LoadLexicon reads and checks a lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if len(lex.EatVerbs) == 0 {
		return nil, fmt.Errorf("%w: %s: eat_verbs is empty", internalerr.ErrInvalidConfig, path)
	}
	if lex.Filters == nil {
		return nil, fmt.Errorf("%w: %s: filters section missing", internalerr.ErrInvalidConfig, path)
	}
	return &lex, nil
}
