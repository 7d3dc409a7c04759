package solver

import (
	"strings"
	"testing"
)

func TestScoreTable(t *testing.T) {
	want := map[int]int{0: 0, 1: 0, 2: 0, 3: 100, 4: 400, 5: 800, 6: 1400, 7: 1800, 8: 2200, 9: 2200, 16: 2200}
	for n, points := range want {
		if got := Score(strings.Repeat("a", n)); got != points {
			t.Errorf("Score(len %d) = %d, want %d", n, got, points)
		}
	}
}

func TestScoreDependsOnlyOnLength(t *testing.T) {
	if Score("cat") != Score("zzz") || Score("quiz") != Score("cart") {
		t.Fatal("equal lengths should score the same")
	}
}

func TestTotalScore(t *testing.T) {
	rs := []Result{{Word: "cats", Score: 400}, {Word: "car", Score: 100}}
	if got := TotalScore(rs); got != 500 {
		t.Fatalf("expected 500, got %d", got)
	}
	if TotalScore(nil) != 0 {
		t.Fatal("expected 0 for no results")
	}
}
