package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasExactTagToken(t *testing.T) {
	tokens := Tokens("what are your hours today")
	assert.True(t, HasExactTagToken(tokens, []string{"hours", "schedule"}))
	assert.True(t, HasExactTagToken(tokens, []string{"HOURS"}))
	assert.False(t, HasExactTagToken(tokens, []string{"pricing"}))
	assert.False(t, HasExactTagToken(nil, []string{"hours"}))
	assert.False(t, HasExactTagToken(tokens, nil))
}

func TestMaxTagTokenSimilarity(t *testing.T) {
	tokens := Tokens("when do you open on mondays")

	// "mondays" vs tag "monday" is a near-hit.
	sim := MaxTagTokenSimilarity(tokens, []string{"monday"})
	assert.Greater(t, sim, 0.6)
	assert.Less(t, sim, 1.0)

	// An exact token equals 1.0.
	assert.Equal(t, 1.0, MaxTagTokenSimilarity(tokens, []string{"open"}))

	assert.Equal(t, 0.0, MaxTagTokenSimilarity(tokens, nil))
}

func TestTagOverlapCount(t *testing.T) {
	tags := []string{"hours", "schedule", "timing"}

	assert.Equal(t, 0, TagOverlapCount(nil, tags))
	assert.Equal(t, 0, TagOverlapCount([]string{"pricing"}, tags))
	assert.Equal(t, 1, TagOverlapCount([]string{"HOURS"}, tags))
	assert.Equal(t, 2, TagOverlapCount([]string{"hours", "timing", "other"}, tags))

	// Set semantics: duplicate extracted tags count once.
	assert.Equal(t, 1, TagOverlapCount([]string{"hours", "hours"}, tags))
}
