package chunk

import (
	"regexp"
	"strings"
)

// npPattern is the noun-phrase grammar over encoded tag sequences:
//
//	(<DT|PRP$?|CD> | <DT>?<NN.?><POS>)? <JJ|W.*>* <NN.*>+
//
// Each tag is written as "<TAG>"; "." inside a tag never crosses a tag
// boundary.
var npPattern = regexp.MustCompile(
	`(?:<(?:DT|PRP\$?|CD)>|(?:<DT>)?<NN[^{}<>]?><POS>)?` +
		`(?:<(?:JJ|W[^{}<>]*)>)*` +
		`(?:<NN[^{}<>]*>)+`)

var tagSanitizer = strings.NewReplacer("<", "", ">", "")

// NPChunker wraps maximal tag spans matching the noun-phrase grammar in NP
// groups. It is stateless and safe to share.
type NPChunker struct {
	pattern *regexp.Regexp
}

// NewNPChunker returns a chunker for the default grammar.
func NewNPChunker() *NPChunker {
	return &NPChunker{pattern: npPattern}
}

// Group chunks tagged leaves. Leaves outside any match stay top-level.
func (c *NPChunker) Group(leaves []Leaf) Sentence {
	var enc strings.Builder
	starts := make(map[int]int, len(leaves)+1)
	for i, l := range leaves {
		starts[enc.Len()] = i
		enc.WriteByte('<')
		enc.WriteString(tagSanitizer.Replace(l.Tag))
		enc.WriteByte('>')
	}
	starts[enc.Len()] = len(leaves)

	out := make(Sentence, 0, len(leaves))
	next := 0
	for _, loc := range c.pattern.FindAllStringIndex(enc.String(), -1) {
		from, ok1 := starts[loc[0]]
		to, ok2 := starts[loc[1]]
		if !ok1 || !ok2 || from < next || to <= from {
			continue
		}
		for ; next < from; next++ {
			out = append(out, leaves[next])
		}
		children := make([]Leaf, to-from)
		copy(children, leaves[from:to])
		out = append(out, Group{Label: LabelNP, Children: children})
		next = to
	}
	for ; next < len(leaves); next++ {
		out = append(out, leaves[next])
	}
	return out
}
