package stoplist

import (
	"testing"
)

func TestSetBasic(t *testing.T) {
	set := New([]string{"the", "a", "and"})

	if !set.IsStop("the") {
		t.Error("'the' should be a stopword")
	}

	if set.IsStop("hello") {
		t.Error("'hello' should not be a stopword")
	}
}

func TestSetCaseInsensitive(t *testing.T) {
	set := New([]string{"The", " AND "})

	for _, w := range []string{"the", "THE", "and", "And"} {
		if !set.IsStop(w) {
			t.Errorf("%q should be a stopword", w)
		}
	}
}

func TestSetAll(t *testing.T) {
	set := New([]string{"the", "a", "and", "", "a"})

	all := set.All()
	want := []string{"a", "and", "the"}
	if len(all) != len(want) {
		t.Fatalf("Expected %d stopwords, got %d (%v)", len(want), len(all), all)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, all[i], want[i])
		}
	}
}

func TestEnglishFallback(t *testing.T) {
	set := English("lol")

	for _, w := range []string{"the", "with", "lol", "I"} {
		if !set.IsStop(w) {
			t.Errorf("%q should be a stopword", w)
		}
	}
	if set.IsStop("pizza") {
		t.Error("'pizza' should not be a stopword")
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1 configured term", set.Len())
	}
}

func TestNilSet(t *testing.T) {
	var set *Set
	if set.IsStop("the") {
		t.Error("nil set should not report stopwords")
	}
	if len(set.All()) != 0 {
		t.Error("nil set should have no terms")
	}
}
