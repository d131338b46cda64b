// Package chunk models the output of the external tagging and chunking step:
// a sentence is a flat sequence of tagged words, some of which are wrapped in
// labeled groups. Groups hold words only, so nesting is at most one level.
package chunk

import (
	"context"
	"strings"
)

// LabelNP labels a noun-phrase group.
const LabelNP = "NP"

// Chunk is either a Leaf or a Group.
type Chunk interface {
	isChunk()
}

// Leaf is a word with its part-of-speech tag.
type Leaf struct {
	Word string
	Tag  string
}

// Group is a labeled span of consecutive leaves.
type Group struct {
	Label    string
	Children []Leaf
}

func (Leaf) isChunk()  {}
func (Group) isChunk() {}

// Sentence is an ordered chunk sequence.
type Sentence []Chunk

// String renders the sentence in bracket notation, e.g.
// "I/PRP ate/VBD [NP a/DT taco/NN]".
func (s Sentence) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s {
		switch c := c.(type) {
		case Leaf:
			parts = append(parts, c.Word+"/"+c.Tag)
		case Group:
			inner := make([]string, len(c.Children))
			for i, l := range c.Children {
				inner[i] = l.Word + "/" + l.Tag
			}
			parts = append(parts, "["+c.Label+" "+strings.Join(inner, " ")+"]")
		default:
			parts = append(parts, "?")
		}
	}
	return strings.Join(parts, " ")
}

// Tagger assigns part-of-speech tags to the words of a sentence.
type Tagger interface {
	Tag(sentence string) ([]Leaf, error)
}

// Chunker turns a sentence string into a chunked sentence.
type Chunker interface {
	Chunk(ctx context.Context, sentence string) (Sentence, error)
}

// Pipeline tags a sentence and groups its noun phrases.
type Pipeline struct {
	tagger Tagger
	np     *NPChunker
}

// NewPipeline combines a tagger with the noun-phrase grammar.
func NewPipeline(tagger Tagger, np *NPChunker) *Pipeline {
	if np == nil {
		np = NewNPChunker()
	}
	return &Pipeline{tagger: tagger, np: np}
}

// Chunk implements Chunker.
func (p *Pipeline) Chunk(ctx context.Context, sentence string) (Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	leaves, err := p.tagger.Tag(sentence)
	if err != nil {
		return nil, err
	}
	return p.np.Group(leaves), nil
}
