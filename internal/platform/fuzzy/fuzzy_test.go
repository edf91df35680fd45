package fuzzy

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestRatio(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 100},
		{"abc", "", 0},
		{"Chelsea", "Chelsea", 100},
		{"this is a test", "this is a test!", 96.55},
		{"Manchester Utd", "Manchester United", 90.32},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); !approx(got, tc.want) {
			t.Fatalf("Ratio(%q, %q) = %.2f, want %.2f", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestPartialRatio(t *testing.T) {
	t.Parallel()

	if got := PartialRatio("United", "Manchester United"); got != 100 {
		t.Fatalf("expected substring to score 100, got %.2f", got)
	}
	if got := PartialRatio("Manchester United", "United"); got != 100 {
		t.Fatalf("expected argument order not to matter, got %.2f", got)
	}
	if got := PartialRatio("", "abc"); got != 0 {
		t.Fatalf("expected empty vs non-empty to be 0, got %.2f", got)
	}
	if got := PartialRatio("xyz", "abc"); got != 0 {
		t.Fatalf("expected disjoint strings to be 0, got %.2f", got)
	}
}

func TestTokenSortRatio(t *testing.T) {
	t.Parallel()

	if got := TokenSortRatio("Kevin De Bruyne", "De Bruyne Kevin"); got != 100 {
		t.Fatalf("expected reordered tokens to score 100, got %.2f", got)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	if got := Score("Wolves", "Wolverhampton Wanderers"); got < 0.6 {
		t.Fatalf("expected prefix to pass threshold via partial ratio, got %.3f", got)
	}
	if got := Score("Manchester Utd", "Chelsea"); got >= 0.6 {
		t.Fatalf("expected unrelated names below threshold, got %.3f", got)
	}
}

func TestRatio_MatchesReferenceScores(t *testing.T) {
	t.Parallel()

	if got := Score("Manchester Utd", "Manchester United"); !approx(got*100, 92.31) {
		t.Fatalf("unexpected score for abbreviation: %.3f", got)
	}
	if got := PartialRatio("this is a test", "this is a test!"); got != 100 {
		t.Fatalf("expected contained string to score 100, got %.2f", got)
	}
	if got := Ratio("Atlético Madrid", "Atletico Madrid"); !approx(got, 93.33) {
		t.Fatalf("expected rune-wise comparison, got %.2f", got)
	}
}
