package ingest

import (
	"strings"

	"golang.org/x/text/language"
)

// retweetPrefix marks a manual retweet in the message text.
const retweetPrefix = "RT"

// Message is one raw social post as read from a data segment.
type Message struct {
	Text    string
	Lang    string
	Retweet bool // record carried a retweeted-status marker
}

// IsRetweet reports whether the message is a retweet, either by field or by
// the "RT" text prefix.
func (m Message) IsRetweet() bool {
	return m.Retweet || strings.HasPrefix(m.Text, retweetPrefix)
}

// Accept reports whether the message should enter the pipeline: it must be
// in the target language and must not be a retweet.
func (m Message) Accept(target string) bool {
	if m.IsRetweet() {
		return false
	}
	return SameLanguage(m.Lang, target)
}

// SameLanguage compares two BCP 47 tags by base language, so "en-GB"
// matches "en". Unparseable tags fall back to a case-insensitive prefix
// check.
func SameLanguage(tag, target string) bool {
	if tag == "" || target == "" {
		return false
	}
	t, err1 := language.Parse(tag)
	want, err2 := language.Parse(target)
	if err1 != nil || err2 != nil {
		return strings.HasPrefix(strings.ToLower(tag), strings.ToLower(target))
	}
	if t == language.Und || want == language.Und {
		return false
	}
	tb, _ := t.Base()
	wb, _ := want.Base()
	return tb == wb
}

// Doc is a message after normalization: the sentences that survived
// cleaning and the lexicon test, in message order.
type Doc struct {
	Message   Message
	Sentences []string
}
