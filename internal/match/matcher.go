// Package match scores how well a candidate listing title matches the
// target product title. Scoring is pure and deterministic; no I/O.
package match

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// containmentWeight is how far a contiguous-substring match pulls the
// score towards 1 on top of the token overlap.
const containmentWeight = 0.5

// Matcher computes a similarity score in [0,1] between titles. Scores
// below Threshold are meant to be discarded by the caller.
type Matcher struct {
	threshold float64
}

func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

func (m *Matcher) Threshold() float64 { return m.threshold }

// Score returns the similarity of candidate to target. It is monotonic
// non-decreasing with textual similarity: token-set Jaccard over stemmed
// tokens, lifted towards 1 when the normalized target appears as a
// contiguous substring of the normalized candidate.
func (m *Matcher) Score(candidate, target string) float64 {
	normCandidate := Normalize(candidate)
	normTarget := Normalize(target)
	if normCandidate == "" || normTarget == "" {
		return 0
	}

	candidateSet := tokenSet(normCandidate)
	targetSet := tokenSet(normTarget)

	intersection := 0
	for tok := range targetSet {
		if _, ok := candidateSet[tok]; ok {
			intersection++
		}
	}
	union := len(candidateSet) + len(targetSet) - intersection
	score := 0.0
	if union > 0 {
		score = float64(intersection) / float64(union)
	}

	if strings.Contains(normCandidate, normTarget) {
		score += (1 - score) * containmentWeight
	}
	return score
}

// Normalize lowercases, strips punctuation and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenSet splits a normalized string into stemmed tokens. Stemming keeps
// plural/singular variants of the same product word together.
func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		stemmed, err := snowball.Stem(f, "english", false)
		if err != nil || stemmed == "" {
			stemmed = f
		}
		set[stemmed] = struct{}{}
	}
	return set
}

// CommonSubstringLen returns the length of the longest common substring of
// the normalized forms of a and b. Used as a deterministic tie-break when
// scores are equal.
func CommonSubstringLen(a, b string) int {
	x := []rune(Normalize(a))
	y := []rune(Normalize(b))
	if len(x) == 0 || len(y) == 0 {
		return 0
	}
	prev := make([]int, len(y)+1)
	curr := make([]int, len(y)+1)
	best := 0
	for i := 1; i <= len(x); i++ {
		for j := 1; j <= len(y); j++ {
			if x[i-1] == y[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return best
}
