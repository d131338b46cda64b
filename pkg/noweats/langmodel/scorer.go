package langmodel

import (
	"fmt"
	"sort"

	"github.com/cognicore/noweats/pkg/noweats/ingest"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
)

// DefaultKeepPct is the share of a batch kept after ranking by score.
const DefaultKeepPct = 0.95

// Scorer applies a Model to normalized documents.
type Scorer struct {
	model     *Model
	tokenizer *ingest.Tokenizer
}

// NewScorer creates a scorer. Words are split with the ingest tokenizer so
// training and scoring see the same vocabulary.
func NewScorer(model *Model, tok *ingest.Tokenizer) *Scorer {
	if tok == nil {
		tok = ingest.NewTokenizer(nil)
	}
	return &Scorer{model: model, tokenizer: tok}
}

// TrainFromDocs trains a model on every word of the given documents.
func TrainFromDocs(docs []ingest.Doc, tok *ingest.Tokenizer) *Model {
	if tok == nil {
		tok = ingest.NewTokenizer(nil)
	}
	var words []string
	for _, d := range docs {
		for _, s := range d.Sentences {
			words = append(words, tok.Words(s)...)
		}
	}
	return Train(words)
}

// ScoreDoc returns the message score of a document.
func (s *Scorer) ScoreDoc(d ingest.Doc) (float64, bool) {
	sentences := make([][]string, len(d.Sentences))
	for i, sentence := range d.Sentences {
		sentences[i] = s.tokenizer.Words(sentence)
	}
	return s.model.ScoreMessage(sentences)
}

// KeepTop ranks documents by score and keeps the best keepPct share.
// Documents that cannot be scored rank last. Ties keep input order.
func (s *Scorer) KeepTop(docs []ingest.Doc, keepPct float64) ([]ingest.Doc, error) {
	if keepPct <= 0 || keepPct > 1 {
		return nil, fmt.Errorf("%w: keep_pct must be in (0,1], got %g", internalerr.ErrInvalidConfig, keepPct)
	}

	type scored struct {
		doc   ingest.Doc
		score float64
		ok    bool
	}
	ranked := make([]scored, len(docs))
	for i, d := range docs {
		score, ok := s.ScoreDoc(d)
		ranked[i] = scored{doc: d, score: score, ok: ok}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ok != ranked[j].ok {
			return ranked[i].ok
		}
		return ranked[i].score > ranked[j].score
	})

	n := int(keepPct * float64(len(ranked)))
	kept := make([]ingest.Doc, n)
	for i := 0; i < n; i++ {
		kept[i] = ranked[i].doc
	}
	return kept, nil
}
