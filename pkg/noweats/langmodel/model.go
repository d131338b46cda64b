// Package langmodel scores how much a word, sentence or message looks like
// the training language using 3-character prefix, 3-character suffix and
// bag-of-characters statistics.
//
// For the affixes there are |A|(|A|+1)^2 possible observations (the leading
// or trailing positions may be padding); for bags there are 2^|A|-1
// non-empty character sets. These sizes are added to the observed totals so
// unseen keys keep a non-zero floor.
//
// Scoring whole messages avoids the partition function over all word
// sequences: a message scores as the expected sentence likelihood.
package langmodel

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// AffixLen is the prefix/suffix length. Shorter words are not scorable.
const AffixLen = 3

// unseenLogCount is the smoothed log-count of a key never seen in training.
const unseenLogCount = 0.0

// baseAlphabet holds the characters that survive sentence cleaning,
// lowercased and without whitespace.
const baseAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789_@&+()',-"

// Features are the raw training counts of a model.
type Features struct {
	Prefixes map[string]int64
	Suffixes map[string]int64
	Bags     map[string]int64
}

// Model is a trained scorer. It is immutable once built.
type Model struct {
	features Features

	normPrefix float64
	normSuffix float64
	normBag    float64

	alphabetSize int
}

// Train builds a model from words. Words are lowercased; words shorter than
// AffixLen are skipped.
func Train(words []string) *Model {
	f := Features{
		Prefixes: make(map[string]int64),
		Suffixes: make(map[string]int64),
		Bags:     make(map[string]int64),
	}
	for _, w := range words {
		w = strings.ToLower(w)
		if utf8.RuneCountInString(w) < AffixLen {
			continue
		}
		f.Prefixes[prefix(w)]++
		f.Suffixes[suffix(w)]++
		f.Bags[Bag(w)]++
	}
	return FromFeatures(f)
}

// FromFeatures builds a model from previously exported counts.
func FromFeatures(f Features) *Model {
	f = copyFeatures(f)

	alphabet := make(map[rune]struct{})
	for _, r := range baseAlphabet {
		alphabet[r] = struct{}{}
	}
	for _, m := range []map[string]int64{f.Prefixes, f.Suffixes, f.Bags} {
		for k := range m {
			for _, r := range k {
				alphabet[r] = struct{}{}
			}
		}
	}
	n := float64(len(alphabet))

	// Partition sizes are kept as logs: 2^n overflows for large alphabets.
	logAffixes := (AffixLen-1)*math.Log(n+1) + math.Log(n)
	logBags := n*math.Ln2 + math.Log1p(-math.Exp2(-n))

	return &Model{
		features:     f,
		normPrefix:   -logAddTotal(total(f.Prefixes), logAffixes),
		normSuffix:   -logAddTotal(total(f.Suffixes), logAffixes),
		normBag:      -logAddTotal(total(f.Bags), logBags),
		alphabetSize: len(alphabet),
	}
}

// logAddTotal returns log(total + exp(logSpace)).
func logAddTotal(total, logSpace float64) float64 {
	if total <= 0 {
		return logSpace
	}
	a := math.Log(total)
	hi, lo := a, logSpace
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi + math.Log1p(math.Exp(lo-hi))
}

// Features returns a copy of the training counts.
func (m *Model) Features() Features {
	return copyFeatures(m.features)
}

// AlphabetSize returns the number of characters the model accounts for.
func (m *Model) AlphabetSize() int {
	return m.alphabetSize
}

// ScoreWord returns the log-likelihood of a word. The boolean is false when
// the word is too short to score.
func (m *Model) ScoreWord(word string) (float64, bool) {
	w := strings.ToLower(word)
	if utf8.RuneCountInString(w) < AffixLen {
		return 0, false
	}
	return logCount(m.features.Prefixes, prefix(w)) + m.normPrefix +
		logCount(m.features.Suffixes, suffix(w)) + m.normSuffix +
		logCount(m.features.Bags, Bag(w)) + m.normBag, true
}

// ScoreSentence returns the mean score of the scorable words.
func (m *Model) ScoreSentence(words []string) (float64, bool) {
	sum, n := 0.0, 0
	for _, w := range words {
		if s, ok := m.ScoreWord(w); ok {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ScoreMessage returns log(mean(exp(sentence score))) over the scorable
// sentences of a message.
func (m *Model) ScoreMessage(sentences [][]string) (float64, bool) {
	scores := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		if score, ok := m.ScoreSentence(s); ok {
			scores = append(scores, score)
		}
	}
	if len(scores) == 0 {
		return 0, false
	}
	return logMeanExp(scores), true
}

// Bag returns the sorted set of distinct characters in word.
func Bag(word string) string {
	seen := make(map[rune]struct{})
	chars := make([]rune, 0, len(word))
	for _, r := range word {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			chars = append(chars, r)
		}
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return string(chars)
}

func prefix(w string) string {
	r := []rune(w)
	return string(r[:AffixLen])
}

func suffix(w string) string {
	r := []rune(w)
	return string(r[len(r)-AffixLen:])
}

func logCount(m map[string]int64, key string) float64 {
	if c, ok := m[key]; ok {
		return math.Log(float64(c) + 1)
	}
	return unseenLogCount
}

func total(m map[string]int64) float64 {
	var t int64
	for _, c := range m {
		t += c
	}
	return float64(t)
}

func logMeanExp(xs []float64) float64 {
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	sum := 0.0
	for _, x := range xs {
		sum += math.Exp(x - max)
	}
	return max + math.Log(sum/float64(len(xs)))
}

func copyFeatures(f Features) Features {
	cp := func(src map[string]int64) map[string]int64 {
		dst := make(map[string]int64, len(src))
		for k, v := range src {
			dst[k] = v
		}
		return dst
	}
	return Features{Prefixes: cp(f.Prefixes), Suffixes: cp(f.Suffixes), Bags: cp(f.Bags)}
}
