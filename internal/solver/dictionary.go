package solver

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minDictionaryWord is the shortest entry kept in a Dictionary.
const minDictionaryWord = 3

// maxDictionaryWord is the longest entry kept in a Dictionary.
const maxDictionaryWord = 64

// maxDictionaryLine leaves room for surrounding blanks and a CRLF.
const maxDictionaryLine = 4 * maxDictionaryWord

// Dictionary is an immutable word set with its prefix index.
// It is safe for concurrent use once built.
type Dictionary struct {
	words    map[string]struct{}
	prefixes map[string]struct{}
}

// LoadDictionary parses newline-separated candidate words. Lines of any
// length are read; those too long to be a word are skipped.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	var words []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 && len(line) <= maxDictionaryLine {
			words = append(words, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dictionary: %w", err)
		}
	}
	return NewDictionary(words)
}

// NewDictionary builds a Dictionary from candidate words, dropping entries
// shorter than three characters, longer than maxDictionaryWord, or
// containing anything but a-z after folding.
func NewDictionary(candidates []string) (*Dictionary, error) {
	lower := cases.Lower(language.Und)
	d := &Dictionary{
		words:    make(map[string]struct{}, len(candidates)),
		prefixes: make(map[string]struct{}),
	}
	for _, c := range candidates {
		w := lower.String(strings.TrimSpace(c))
		if len(w) < minDictionaryWord || len(w) > maxDictionaryWord || !isLowerAlpha(w) {
			continue
		}
		if _, dup := d.words[w]; dup {
			continue
		}
		d.words[w] = struct{}{}
		for i := 1; i < len(w); i++ {
			d.prefixes[w[:i]] = struct{}{}
		}
	}
	if len(d.words) == 0 {
		return nil, fmt.Errorf("%w: no words of %d+ letters a-z", ErrDictionaryUnavailable, minDictionaryWord)
	}
	return d, nil
}

// Contains reports whether token is a dictionary word.
func (d *Dictionary) Contains(token string) bool {
	_, ok := d.words[token]
	return ok
}

// HasPrefix reports whether some strictly longer word starts with token.
func (d *Dictionary) HasPrefix(token string) bool {
	_, ok := d.prefixes[token]
	return ok
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.words) }

func isLowerAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
