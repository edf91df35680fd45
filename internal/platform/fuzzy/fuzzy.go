// Package fuzzy implements Indel-based string similarity scores on a 0-100
// scale. Strings are compared rune by rune and case-sensitively.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Ratio is the normalized Indel similarity: 200*LCS / (len(a)+len(b)).
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

// PartialRatio scores the shorter string against every alignment of a window
// of the same length over the longer one, including windows clipped at either
// end, and keeps the best.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	short, long := len(ra), len(rb)
	best := 0.0
	for start := -(short - 1); start < long; start++ {
		lo := max(start, 0)
		hi := min(start+short, long)
		score := ratioRunes(ra, rb[lo:hi])
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio sorts whitespace-separated tokens before computing Ratio,
// so word order does not matter.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

// Score is max(Ratio, PartialRatio, TokenSortRatio) scaled to [0, 1].
func Score(a, b string) float64 {
	best := Ratio(a, b)
	if v := PartialRatio(a, b); v > best {
		best = v
	}
	if v := TokenSortRatio(a, b); v > best {
		best = v
	}
	return best / 100
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(edlib.LCS(string(a), string(b))) / float64(total)
}
