package analyzer

import (
	"math"
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/akoskomuves/promptly/internal/session"
)

// roundHalfUp rounds to the nearest integer, with halves rounded toward
// positive infinity (so -2.5 becomes -2).
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func round1(x float64) float64 {
	return roundHalfUp(float64(x*10)) / 10
}

func round2(x float64) float64 {
	return roundHalfUp(float64(x*100)) / 100
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}

// rankCounts orders counts by count descending, then name ascending, and
// keeps at most limit entries.
func rankCounts(counts map[string]int, limit int) []session.NameCount {
	ranked := make([]session.NameCount, 0, len(counts))
	for name, n := range counts {
		ranked = append(ranked, session.NameCount{Name: name, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

var whitespace = regexp.MustCompile(`\s+`)

// splitWords splits on whitespace runs. Leading whitespace yields an empty
// first element and the empty string yields one empty word, so a blank
// prompt still counts as one word.
func splitWords(s string) []string {
	return whitespace.Split(s, -1)
}

func wordCount(s string) int {
	return len(splitWords(s))
}

// estimateTokens returns the recorded token count for a turn, or a
// four-characters-per-token estimate.
func estimateTokens(t session.Turn) int {
	if t.TokenCount != nil {
		return *t.TokenCount
	}
	n := utf8.RuneCountInString(t.Content)
	return (n + 3) / 4
}
