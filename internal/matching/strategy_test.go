package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateFor(pattern string, tags ...string) Candidate {
	return Candidate{
		Pattern:           pattern,
		NormalizedPattern: Normalize(pattern),
		Tags:              tags,
	}
}

func TestExactMatchTier(t *testing.T) {
	q := NewQuery("What are your business hours?", nil, 0.3)
	c := candidateFor("WHAT ARE YOUR BUSINESS HOURS")

	res := ScoreCandidate(q, c)
	assert.Equal(t, ExactMatch{}.Name(), res.Tier)
	assert.Equal(t, 1.0, res.Score)
	assert.True(t, res.Admitted)
}

func TestExactMatchSkipsEmptyQuestion(t *testing.T) {
	q := NewQuery("?!", nil, 0.3)
	c := candidateFor("")
	admit, _ := ExactMatch{}.Evaluate(q, c)
	assert.False(t, admit)
}

func TestExtractedTagOverlapTier(t *testing.T) {
	c := candidateFor("What are your business hours?", "hours", "schedule")

	q := NewQuery("when can I come by", []string{"hours"}, 0.3)
	res := ScoreCandidate(q, c)
	assert.Equal(t, ExtractedTagOverlap{}.Name(), res.Tier)
	assert.InDelta(t, 0.75, res.Score, 1e-9)
	assert.True(t, res.Admitted)

	// Two overlapping tags score higher than one.
	q2 := NewQuery("when can I come by", []string{"hours", "schedule"}, 0.3)
	res2 := ScoreCandidate(q2, c)
	assert.Greater(t, res2.Score, res.Score)

	// Capped at 0.90 no matter how many tags overlap.
	many := []string{"a", "b", "c", "d", "e", "f"}
	q3 := NewQuery("anything", many, 0.3)
	res3 := ScoreCandidate(q3, candidateFor("x", many...))
	assert.InDelta(t, 0.90, res3.Score, 1e-9)
}

func TestTagTierOutranksComposite(t *testing.T) {
	c := candidateFor("What are your business hours?", "hours", "schedule")

	withTags := ScoreCandidate(NewQuery("when are you around", []string{"hours"}, 0.3), c)
	withoutTags := ScoreCandidate(NewQuery("when are you around", nil, 0.3), c)

	require.Equal(t, ExtractedTagOverlap{}.Name(), withTags.Tier)
	assert.Greater(t, withTags.Score, withoutTags.Score)
}

func TestExactTagMatchTier(t *testing.T) {
	c := candidateFor("What are your business hours?", "hours")

	q := NewQuery("are the hours posted anywhere", nil, 0.3)
	res := ScoreCandidate(q, c)
	assert.Equal(t, ExactTagMatch{}.Name(), res.Tier)
	assert.Equal(t, ScoreExactTag, res.Score)
	assert.True(t, res.Admitted)
}

func TestFuzzyTagMatchTier(t *testing.T) {
	c := candidateFor("What is your cancellation policy?", "cancellation")

	q := NewQuery("what about cancellations", nil, 0.3)
	res := ScoreCandidate(q, c)
	assert.Equal(t, FuzzyTagMatch{}.Name(), res.Tier)
	assert.Equal(t, ScoreFuzzyTag, res.Score)
	assert.True(t, res.Admitted)
}

func TestCompositeTier(t *testing.T) {
	c := candidateFor("How much does a haircut cost?")

	q := NewQuery("how much for a haircut", nil, 0.3)
	res := ScoreCandidate(q, c)
	assert.Equal(t, WeightedComposite{}.Name(), res.Tier)
	assert.Greater(t, res.Score, 0.0)
	assert.True(t, res.Admitted)
}

func TestCompositeNotAdmittedBelowGates(t *testing.T) {
	c := candidateFor("Where are you located?")

	q := NewQuery("zzz qqq", nil, 0.3)
	res := ScoreCandidate(q, c)
	assert.Equal(t, WeightedComposite{}.Name(), res.Tier)
	assert.False(t, res.Admitted)
}

func TestCompositeAdmittedByTextRank(t *testing.T) {
	c := candidateFor("Do you sell gift cards for the holidays?")
	// Low trigram overlap but a nonzero full-text rank admits the entry.
	c.TextRank = 0.4

	q := NewQuery("gift options", nil, 0.9)
	res := ScoreCandidate(q, c)
	assert.Equal(t, WeightedComposite{}.Name(), res.Tier)
	assert.True(t, res.Admitted)
}

func TestPipelineOrder(t *testing.T) {
	tiers := Pipeline()
	require.Len(t, tiers, 5)
	names := make([]string, len(tiers))
	for i, tier := range tiers {
		names[i] = tier.Name()
	}
	assert.Equal(t, []string{
		"exact_match",
		"semantic_tag_overlap",
		"exact_tag_match",
		"fuzzy_tag_match",
		"weighted_composite",
	}, names)
}
