package solver

import (
	"cmp"
	"slices"
)

// Result is one discovered word with the path that spells it.
type Result struct {
	Word  string     `json:"word"`
	Path  []Position `json:"path"`
	Score int        `json:"score"`
}

// Aggregator keeps at most one Result per word.
// It is not safe for concurrent use; give each goroutine its own and Merge.
type Aggregator struct {
	byWord map[string]Result
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byWord: make(map[string]Result)}
}

// Add stores r unless an entry for the same word with an equal or higher score exists.
func (a *Aggregator) Add(r Result) {
	if cur, ok := a.byWord[r.Word]; ok && cur.Score >= r.Score {
		return
	}
	a.byWord[r.Word] = r
}

// Merge adds every entry of other.
func (a *Aggregator) Merge(other *Aggregator) {
	for _, r := range other.byWord {
		a.Add(r)
	}
}

// Len returns the number of distinct words.
func (a *Aggregator) Len() int { return len(a.byWord) }

// Results returns the entries ordered by score desc, length desc, then word asc.
func (a *Aggregator) Results() []Result {
	out := make([]Result, 0, len(a.byWord))
	for _, r := range a.byWord {
		out = append(out, r)
	}
	slices.SortFunc(out, compareResults)
	return out
}

func compareResults(x, y Result) int {
	if c := cmp.Compare(y.Score, x.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(len(y.Word), len(x.Word)); c != 0 {
		return c
	}
	return cmp.Compare(x.Word, y.Word)
}
