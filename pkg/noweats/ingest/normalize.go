package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/noweats/pkg/noweats/lexicon"
)

var (
	// Links, unicode artifacts, mentions and hashtags are deleted.
	rePreproc = regexp.MustCompile(strings.Join([]string{
		`\s?\bhttps?://\S+`, // hyperlinks
		`\[\?\]`,            // unprintable characters left by transliteration
		`@\S+`,              // any @mention
		`(?:#\S+\s+)+#\S+`,  // 2 or more #hashtags in a row
		`#\b`,               // the # of a single #hashtag
	}, "|"))

	// Three or more single characters separated by whitespace ("e a t s").
	// The trailing whitespace is captured and put back so a newline
	// boundary survives.
	reSpacedChars = regexp.MustCompile(`(?:\A|\s)\w(?:\s+\w){2,}(\z|\s)`)

	// Sentence boundaries. A lone period is a boundary only when it is not
	// followed by a digit; that check happens in splitSentences.
	// Leading whitespace excludes newlines so a newline before a decimal
	// point still splits.
	reSentence = regexp.MustCompile(`[^\S\n]*(?:[?!;\n]+|\.{2,}|\.)\s*`)

	reRemoveChars   = regexp.MustCompile(`[^\s\w@&+()',-]+`)
	reFixWhitespace = regexp.MustCompile(`[\s\\/]+`)

	punctReplacer = strings.NewReplacer(
		"‘", "'", "’", "'", "“", `"`, "”", `"`,
		"–", "-", "—", "-", "…", "...",
	)
)

// Normalizer cleans raw message text and splits it into sentences that
// mention at least one lexicon term.
type Normalizer struct {
	lexicon *regexp.Regexp
}

// NewNormalizer creates a normalizer for the given lexicon. A nil or empty
// lexicon keeps every non-empty sentence.
func NewNormalizer(lex *lexicon.Lexicon) *Normalizer {
	if lex == nil {
		lex = lexicon.New()
	}
	return &Normalizer{lexicon: lex.Pattern()}
}

// Normalize cleans a message. It returns false when no sentence survives.
func (n *Normalizer) Normalize(msg Message) (Doc, bool) {
	sentences := n.Sentences(msg.Text)
	if len(sentences) == 0 {
		return Doc{}, false
	}
	return Doc{Message: msg, Sentences: sentences}, true
}

// NormalizeAll normalizes a batch, dropping messages without sentences.
func (n *Normalizer) NormalizeAll(msgs []Message) []Doc {
	docs := make([]Doc, 0, len(msgs))
	for _, m := range msgs {
		if d, ok := n.Normalize(m); ok {
			docs = append(docs, d)
		}
	}
	return docs
}

// Sentences returns the cleaned sentences of text that match the lexicon.
func (n *Normalizer) Sentences(text string) []string {
	text = Fold(text)
	text = rePreproc.ReplaceAllString(text, "")
	text = reSpacedChars.ReplaceAllString(text, "${1}")

	var kept []string
	for _, raw := range splitSentences(text) {
		s := CleanSentence(raw)
		if s == "" || !n.lexicon.MatchString(s) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// CleanSentence replaces disallowed characters with spaces and collapses
// whitespace and slashes.
func CleanSentence(s string) string {
	s = reRemoveChars.ReplaceAllString(s, " ")
	s = reFixWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fold decodes HTML entities and reduces text to ASCII where a close
// equivalent exists. Unresolvable escapes are left as they are.
func Fold(text string) string {
	text = html.UnescapeString(text)
	text = punctReplacer.Replace(text)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

func splitSentences(text string) []string {
	var parts []string
	start := 0
	for _, loc := range reSentence.FindAllStringIndex(text, -1) {
		if isDecimalPoint(text, loc[0], loc[1]) {
			continue
		}
		parts = append(parts, text[start:loc[0]])
		start = loc[1]
	}
	return append(parts, text[start:])
}

// isDecimalPoint reports whether the boundary match is a single period
// immediately followed by a digit.
func isDecimalPoint(text string, from, to int) bool {
	m := text[from:to]
	if strings.TrimSpace(m) != "." {
		return false
	}
	dot := from + strings.IndexByte(m, '.')
	return dot+1 < len(text) && text[dot+1] >= '0' && text[dot+1] <= '9'
}
