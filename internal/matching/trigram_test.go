package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrigramSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"a", "ab", "hours", "what are your hours", "déjà"} {
		assert.Equal(t, 1.0, TrigramSimilarity(s, s), "sim(%q,%q)", s, s)
	}
}

func TestTrigramSimilarityEmpty(t *testing.T) {
	assert.Equal(t, 0.0, TrigramSimilarity("hours", ""))
	assert.Equal(t, 0.0, TrigramSimilarity("", "hours"))
	assert.Equal(t, 1.0, TrigramSimilarity("", ""))
}

func TestTrigramSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"hours", "hour"},
		{"walk-ins", "walkins"},
		{"business hours", "opening hours"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		assert.Equal(t, TrigramSimilarity(p[0], p[1]), TrigramSimilarity(p[1], p[0]),
			"sim(%q,%q)", p[0], p[1])
	}
}

func TestTrigramSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"hours", "hour"},
		{"threading", "treading"},
		{"abc", "xyz"},
		{"a", "b"},
	}
	for _, p := range pairs {
		sim := TrigramSimilarity(p[0], p[1])
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestTrigramSimilarityOrdering(t *testing.T) {
	// A near-duplicate must score higher than an unrelated string.
	near := TrigramSimilarity("what are your hours", "what are your hours?")
	far := TrigramSimilarity("what are your hours", "do you sell gift cards")
	assert.Greater(t, near, far)
	assert.Greater(t, near, 0.7)

	// Disjoint strings share no trigrams.
	assert.Equal(t, 0.0, TrigramSimilarity("abc", "xyz"))
}

func TestTrigramSimilarityCaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, TrigramSimilarity("Hours", "hours"))
}
