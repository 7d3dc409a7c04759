package solver

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadDictionaryFilters(t *testing.T) {
	src := "Cat\n  cats  \nox\ndon't\nco-op\n\nCAR\nnaïve\ncat\r\n"
	d, err := LoadDictionary(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, w := range []string{"cat", "cats", "car"} {
		if !d.Contains(w) {
			t.Errorf("expected %q in dictionary", w)
		}
	}
	for _, w := range []string{"ox", "don't", "co-op", "naïve", "Cat", ""} {
		if d.Contains(w) {
			t.Errorf("did not expect %q in dictionary", w)
		}
	}
	if d.Len() != 3 {
		t.Fatalf("expected 3 words, got %d", d.Len())
	}
}

func TestLoadDictionaryLongLine(t *testing.T) {
	src := "cat\n" + strings.Repeat("x", 70000) + "\ncats"
	d, err := LoadDictionary(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Contains("cat") || !d.Contains("cats") {
		t.Fatal("words around the long line should be kept")
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 words, got %d", d.Len())
	}
}

func TestNewDictionaryDropsOverlongWords(t *testing.T) {
	long := strings.Repeat("a", maxDictionaryWord+1)
	d, err := NewDictionary([]string{"cat", long, strings.Repeat("b", maxDictionaryWord)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Contains(long) || d.Len() != 2 {
		t.Fatalf("expected only words up to %d letters, got %d words", maxDictionaryWord, d.Len())
	}
}

func TestLoadDictionaryEmpty(t *testing.T) {
	for _, src := range []string{"", "\n\n", "ox\nab\n12345\n"} {
		_, err := LoadDictionary(strings.NewReader(src))
		if !errors.Is(err, ErrDictionaryUnavailable) {
			t.Errorf("source %q: expected ErrDictionaryUnavailable, got %v", src, err)
		}
	}
}

func TestHasPrefix(t *testing.T) {
	d, err := NewDictionary([]string{"cat", "cart", "quiz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		token string
		want  bool
	}{
		{"c", true},
		{"ca", true},
		{"car", true}, // "cart" continues it
		{"cat", false},
		{"cart", false},
		{"qu", true},
		{"qui", true},
		{"x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := d.HasPrefix(tt.token); got != tt.want {
			t.Errorf("HasPrefix(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestContainsAndPrefixOverlap(t *testing.T) {
	d, _ := NewDictionary([]string{"cat", "cats"})
	if !d.Contains("cat") || !d.HasPrefix("cat") {
		t.Fatal("cat should be both a word and a prefix of cats")
	}
	if d.HasPrefix("cats") {
		t.Fatal("cats is not a proper prefix of any word")
	}
}
