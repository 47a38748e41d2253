package matching

import "strings"

// HasExactTagToken reports whether any question token equals one of the
// entry's tags exactly (both lower-cased).
func HasExactTagToken(tokens []string, tags []string) bool {
	for _, tag := range tags {
		lowered := strings.ToLower(tag)
		for _, tok := range tokens {
			if tok == lowered {
				return true
			}
		}
	}
	return false
}

// MaxTagTokenSimilarity returns the highest pairwise trigram similarity
// between any question token and any entry tag, in [0,1].
func MaxTagTokenSimilarity(tokens []string, tags []string) float64 {
	best := 0.0
	for _, tag := range tags {
		for _, tok := range tokens {
			if sim := TrigramSimilarity(tag, tok); sim > best {
				best = sim
			}
		}
	}
	return best
}

// TagOverlapCount counts the case-insensitive set intersection between the
// caller-supplied extracted tags and the entry's tags.
func TagOverlapCount(extracted []string, tags []string) int {
	if len(extracted) == 0 || len(tags) == 0 {
		return 0
	}
	entrySet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		entrySet[strings.ToLower(tag)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(extracted))
	count := 0
	for _, ext := range extracted {
		lowered := strings.ToLower(ext)
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		if _, ok := entrySet[lowered]; ok {
			count++
		}
	}
	return count
}
