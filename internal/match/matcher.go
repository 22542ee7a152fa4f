// Package match resolves a loosely typed note title against the titles that
// already exist in the store.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultThreshold is the minimum similarity accepted by the fuzzy stage.
const DefaultThreshold = 0.6

// Matcher picks the existing title closest to a query. Stages run in order
// and the first one that yields a single answer wins: exact, normalized exact,
// unique case-insensitive prefix, then edit-distance similarity.
type Matcher struct {
	threshold float64
	dmp       *diffmatchpatch.DiffMatchPatch
}

// New returns a Matcher. A threshold outside (0,1] falls back to
// DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold, dmp: diffmatchpatch.New()}
}

func (m *Matcher) Threshold() float64 { return m.threshold }

// Best returns the candidate that query most plausibly refers to. When nothing
// qualifies it returns query unchanged and false.
func (m *Matcher) Best(query string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return query, false
	}
	for _, c := range candidates {
		if c == query {
			return c, true
		}
	}

	nq := normalize(query)
	if nq == "" {
		return query, false
	}
	for _, c := range candidates {
		if normalize(c) == nq {
			return c, true
		}
	}

	var prefixed []string
	for _, c := range candidates {
		if strings.HasPrefix(normalize(c), nq) {
			prefixed = append(prefixed, c)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0], true
	}

	best, bestScore := "", 0.0
	for _, c := range candidates {
		score := m.Similarity(nq, normalize(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore >= m.threshold {
		return best, true
	}
	return query, false
}

// Similarity is 1 minus the Levenshtein distance over the longer length,
// counted in runes. Two empty strings are identical.
func (m *Matcher) Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	diffs := m.dmp.DiffMain(a, b, false)
	dist := m.dmp.DiffLevenshtein(diffs)
	return 1 - float64(dist)/float64(longest)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
