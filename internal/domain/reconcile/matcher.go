// Package reconcile maps entity names between two independently scraped
// datasets that share no key.
package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/riskibarqy/football-scraper/internal/platform/fuzzy"
)

const DefaultMinSimilarity = 0.6

var (
	ErrNoConfidentMatch = errors.New("no confident match")
	ErrEmptyName        = errors.New("empty name")
	ErrNoBijection      = errors.New("more names to map than candidates")
)

// Matcher builds one-to-one name mappings. Exact matches are taken first, then
// the globally best-scoring remaining pair is assigned until every name is
// mapped or the best score falls below MinSimilarity.
type Matcher struct {
	MinSimilarity float64
	Score         func(a, b string) float64
}

func NewMatcher(minSimilarity float64) *Matcher {
	if minSimilarity <= 0 || minSimilarity > 1 {
		minSimilarity = DefaultMinSimilarity
	}
	return &Matcher{MinSimilarity: minSimilarity, Score: fuzzy.Score}
}

// Match maps every distinct name of a onto a distinct name of b. Either the
// full mapping is returned or an error; never a partial mapping. Names are
// compared trimmed, but the mapping is keyed by and points to the strings as
// given, so spellings that differ only in surrounding whitespace share a target.
func (m *Matcher) Match(a, b []string) (map[string]string, error) {
	left, err := distinct(a)
	if err != nil {
		return nil, err
	}
	right := distinctNonEmpty(b)
	if len(left) > len(right) {
		return nil, fmt.Errorf("%w: %d names, %d candidates", ErrNoBijection, len(left), len(right))
	}

	out := make(map[string]string, len(a))
	assign := func(l, r name) {
		for _, raw := range l.raw {
			out[raw] = r.raw[0]
		}
	}

	byKey := make(map[string]name, len(right))
	for _, r := range right {
		byKey[r.key] = r
	}
	exact := make(map[string]struct{}, len(left))
	for _, l := range left {
		if r, ok := byKey[l.key]; ok {
			assign(l, r)
			exact[l.key] = struct{}{}
		}
	}
	isExact := func(n name) bool { _, ok := exact[n.key]; return ok }
	left = slices.DeleteFunc(left, isExact)
	right = slices.DeleteFunc(right, isExact)
	if len(left) == 0 {
		return out, nil
	}

	score := m.Score
	if score == nil {
		score = fuzzy.Score
	}
	scores := make([][]float64, len(left))
	for i, l := range left {
		scores[i] = make([]float64, len(right))
		for j, r := range right {
			scores[i][j] = score(l.key, r.key)
		}
	}

	leftUsed := make([]bool, len(left))
	rightUsed := make([]bool, len(right))
	for assigned := 0; assigned < len(left); assigned++ {
		bestI, bestJ, best := -1, -1, -1.0
		for i := range left {
			if leftUsed[i] {
				continue
			}
			for j := range right {
				if rightUsed[j] {
					continue
				}
				if scores[i][j] > best {
					bestI, bestJ, best = i, j, scores[i][j]
				}
			}
		}
		if best < m.MinSimilarity {
			var unmatched []string
			for i, l := range left {
				if !leftUsed[i] {
					unmatched = append(unmatched, l.key)
				}
			}
			return nil, fmt.Errorf("%w: best remaining score %.3f below %.3f for %s",
				ErrNoConfidentMatch, best, m.MinSimilarity, strings.Join(unmatched, ", "))
		}
		leftUsed[bestI], rightUsed[bestJ] = true, true
		assign(left[bestI], right[bestJ])
	}
	return out, nil
}

// name is one trimmed comparison key and every input spelling of it.
type name struct {
	key string
	raw []string
}

func distinct(names []string) ([]name, error) {
	out := make([]name, 0, len(names))
	index := make(map[string]int, len(names))
	for _, raw := range names {
		key := strings.TrimSpace(raw)
		if key == "" {
			return nil, ErrEmptyName
		}
		if i, ok := index[key]; ok {
			if !slices.Contains(out[i].raw, raw) {
				out[i].raw = append(out[i].raw, raw)
			}
			continue
		}
		index[key] = len(out)
		out = append(out, name{key: key, raw: []string{raw}})
	}
	return out, nil
}

func distinctNonEmpty(names []string) []name {
	out := make([]name, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		key := strings.TrimSpace(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name{key: key, raw: []string{raw}})
	}
	return out
}
