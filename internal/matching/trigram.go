package matching

import "strings"

// trigramSet extracts the trigrams of s, word by word, with each
// lower-cased word padded by two leading and one trailing space. Padding
// means any non-empty string yields at least one trigram, so identical
// strings always compare at 1.0.
func trigramSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(s)) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// TrigramSimilarity returns the fraction of shared trigrams between a and b
// relative to their union, in [0,1]. Symmetric; 1.0 for equal strings and
// 0.0 when exactly one side is empty.
func TrigramSimilarity(a, b string) float64 {
	sa := trigramSet(a)
	sb := trigramSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}

	shared := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			shared++
		}
	}
	union := len(sa) + len(sb) - shared
	return float64(shared) / float64(union)
}
