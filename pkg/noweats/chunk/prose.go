package chunk

import (
	"github.com/jdkato/prose/v2"
)

// ProseTagger tags English text with the prose averaged-perceptron tagger.
// Segmentation and entity extraction are disabled: callers pass one
// sentence at a time.
type ProseTagger struct{}

// NewProseTagger returns a prose-backed Tagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag implements Tagger.
func (ProseTagger) Tag(sentence string) ([]Leaf, error) {
	doc, err := prose.NewDocument(sentence,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}

	toks := doc.Tokens()
	leaves := make([]Leaf, 0, len(toks))
	for _, tok := range toks {
		leaves = append(leaves, Leaf{Word: tok.Text, Tag: tok.Tag})
	}
	return leaves, nil
}
