package solver

// Score returns the points for a word, keyed by its character length.
func Score(word string) int {
	switch n := len(word); {
	case n <= 2:
		return 0
	case n == 3:
		return 100
	case n == 4:
		return 400
	case n == 5:
		return 800
	case n == 6:
		return 1400
	case n == 7:
		return 1800
	default:
		return 2200
	}
}

// TotalScore sums the scores of results.
func TotalScore(results []Result) int {
	total := 0
	for _, r := range results {
		total += r.Score
	}
	return total
}
