// Package similarity scores the closeness of two canonical name keys.
// Three independent metrics, each in [0,1], are combined by taking the
// best signal: edit distance catches typos, token overlap catches word
// reordering, containment catches truncated names. Averaging would wash
// out a strong single signal, so Combined takes the max.
package similarity

import "strings"

// maxEditLength bounds the O(n*m) edit-distance computation. Longer
// inputs fall back to token overlap rather than being truncated, which
// would produce false negatives on long legitimate names.
const maxEditLength = 255

// ContainmentBonus is the score assigned when one key is a substring of
// the other.
const ContainmentBonus = 0.75

// EditRatio returns 1 - editDistance(a,b)/max(len(a),len(b)), using
// Damerau-Levenshtein distance over runes. Empty input on either side
// scores 0.
func EditRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > maxEditLength || len(rb) > maxEditLength {
		return TokenJaccard(a, b)
	}
	m := len(ra)
	if len(rb) > m {
		m = len(rb)
	}
	d := damerauLevenshtein(ra, rb)
	return 1 - float64(d)/float64(m)
}

// TokenJaccard returns |intersection| / |union| over whitespace-split
// token sets. Order-insensitive: "trading contracting" and
// "contracting trading" score 1. Empty input on either side scores 0.
func TokenJaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// Combined returns the best of edit ratio, token overlap and the
// containment bonus for a pair of canonical keys.
func Combined(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	best := EditRatio(a, b)
	if j := TokenJaccard(a, b); j > best {
		best = j
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		if ContainmentBonus > best {
			best = ContainmentBonus
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func damerauLevenshtein(ra, rb []rune) int {
	al, bl := len(ra), len(rb)

	dp := make([][]int, al+1)
	for i := 0; i <= al; i++ {
		dp[i] = make([]int, bl+1)
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			dp[i][j] = min3(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)

			// transposition of adjacent runes
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if v := dp[i-2][j-2] + 1; v < dp[i][j] {
					dp[i][j] = v
				}
			}
		}
	}
	return dp[al][bl]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
