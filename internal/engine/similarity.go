package engine

import "strings"

// Similarity returns the Sørensen–Dice coefficient over character bigrams of
// the two strings, in [0,1]. 1 means identical bigram multisets, 0 means no
// overlap. Comparison is case-insensitive and whitespace-trimmed; runs of
// whitespace are not bigram candidates.
func Similarity(a, b string) float64 {
	a = strings.TrimSpace(strings.ToLower(a))
	b = strings.TrimSpace(strings.ToLower(b))
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(a))
	for i := 0; i < len(a)-1; i++ {
		g := a[i : i+2]
		if g[0] == ' ' || g[1] == ' ' {
			continue
		}
		bigrams[g]++
	}

	var total, matches int
	for g := range bigrams {
		total += bigrams[g]
	}
	otherTotal := 0
	for i := 0; i < len(b)-1; i++ {
		g := b[i : i+2]
		if g[0] == ' ' || g[1] == ' ' {
			continue
		}
		otherTotal++
		if bigrams[g] > 0 {
			bigrams[g]--
			matches++
		}
	}
	if total+otherTotal == 0 {
		return 0
	}
	return 2 * float64(matches) / float64(total+otherTotal)
}
