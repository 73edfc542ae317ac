// Package fuzzy ranks "did you mean" candidates for unknown option and
// subcommand names by edit distance.
package fuzzy

import (
	"sort"
	"strings"
)

// Matcher scores candidates against a mistyped input.
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a matcher that accepts candidates up to maxDistance edits away.
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   2,
	}
}

// Match is one ranked candidate.
type Match struct {
	Value    string
	Distance int
	Score    float64 // 0.0 to 1.0, higher is better
}

// Rank returns candidates within the distance limit, best first. Leading
// dashes are ignored when comparing so "--fo" and "--foo" differ by one edit.
func (m *Matcher) Rank(input string, candidates []string) []Match {
	bare := strings.ToLower(strings.TrimLeft(input, "-"))
	if len(bare) < m.minLength {
		return nil
	}

	var matches []Match
	for _, candidate := range candidates {
		other := strings.ToLower(strings.TrimLeft(candidate, "-"))
		if other == bare {
			continue
		}
		distance := m.distance(bare, other)
		if distance > m.maxDistance {
			continue
		}
		matches = append(matches, Match{
			Value:    candidate,
			Distance: distance,
			Score:    m.score(bare, other, distance),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// score folds edit distance, shared prefix and length similarity into [0,1].
func (m *Matcher) score(input, candidate string, distance int) float64 {
	longest := max(len(input), len(candidate))
	if longest == 0 {
		return 1.0
	}

	score := 1.0 - float64(distance)/float64(longest)
	if p := commonPrefix(input, candidate); p > 0 {
		score += float64(p) / float64(min(len(input), len(candidate))) * 0.3
	}
	diff := len(input) - len(candidate)
	if diff < 0 {
		diff = -diff
	}
	score += (1.0 - float64(diff)/float64(longest)) * 0.2
	return min(score, 1.0)
}

// distance is the Levenshtein distance, cut off once it exceeds maxDistance.
func (m *Matcher) distance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if d := len(a) - len(b); d > m.maxDistance || -d > m.maxDistance {
		return m.maxDistance + 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	cur := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for i := 1; i <= len(b); i++ {
		cur[0] = i
		rowMin := i
		for j := 1; j <= len(a); j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			cur[j] = min(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > m.maxDistance {
			return m.maxDistance + 1
		}
		prev, cur = cur, prev
	}
	return prev[len(a)]
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// Suggest returns at most limit candidates close to input.
func Suggest(input string, candidates []string, maxDistance, limit int) []string {
	matches := NewMatcher(maxDistance).Rank(input, candidates)
	out := make([]string, 0, min(len(matches), limit))
	for _, match := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, match.Value)
	}
	return out
}
