package matching

import "math"

// Tier score constants. Each tier scores on its own scale; only the
// highest-priority tier that admits a candidate determines its score.
const (
	ScoreExactMatch = 1.0
	ScoreExactTag   = 0.85
	ScoreFuzzyTag   = 0.75

	// FuzzyTagThreshold is the minimum token-to-tag trigram similarity
	// for the fuzzy tag tier and its admission gate.
	FuzzyTagThreshold = 0.7

	semanticBase      = 0.70
	semanticPerTag    = 0.05
	semanticCeiling   = 0.90
	weightOriginal    = 0.5
	weightNormalized  = 0.3
	weightTextRank    = 0.2
)

// Query is a search request prepared once per call.
type Query struct {
	Question      string
	Normalized    string
	Tokens        []string
	ExtractedTags []string
	Threshold     float64
}

// NewQuery derives the per-call comparison forms of a question.
func NewQuery(question string, extractedTags []string, threshold float64) Query {
	return Query{
		Question:      question,
		Normalized:    Normalize(question),
		Tokens:        Tokens(question),
		ExtractedTags: extractedTags,
		Threshold:     threshold,
	}
}

// Candidate is one active corpus entry plus its full-text rank for the query.
type Candidate struct {
	Pattern           string
	NormalizedPattern string
	Tags              []string
	TextRank          float64
}

// Strategy is one scoring tier. Admit=false means the tier does not apply
// and evaluation falls through to the next tier in the pipeline.
type Strategy interface {
	Name() string
	Evaluate(q Query, c Candidate) (admit bool, score float64)
}

// ExactMatch fires on normalize-insensitive equality of question and
// pattern. The caller short-circuits the whole search on this tier.
type ExactMatch struct{}

func (ExactMatch) Name() string { return "exact_match" }

func (ExactMatch) Evaluate(q Query, c Candidate) (bool, float64) {
	if q.Normalized == "" || q.Normalized != c.NormalizedPattern {
		return false, 0
	}
	return true, ScoreExactMatch
}

// ExtractedTagOverlap fires when the caller supplied semantic tags and any
// of them intersect the entry's tags.
type ExtractedTagOverlap struct{}

func (ExtractedTagOverlap) Name() string { return "semantic_tag_overlap" }

func (ExtractedTagOverlap) Evaluate(q Query, c Candidate) (bool, float64) {
	overlap := TagOverlapCount(q.ExtractedTags, c.Tags)
	if overlap == 0 {
		return false, 0
	}
	return true, math.Min(semanticCeiling, semanticBase+semanticPerTag*float64(overlap))
}

// ExactTagMatch fires when any question token equals an entry tag.
type ExactTagMatch struct{}

func (ExactTagMatch) Name() string { return "exact_tag_match" }

func (ExactTagMatch) Evaluate(q Query, c Candidate) (bool, float64) {
	if !HasExactTagToken(q.Tokens, c.Tags) {
		return false, 0
	}
	return true, ScoreExactTag
}

// FuzzyTagMatch fires when the best token-to-tag trigram similarity clears
// FuzzyTagThreshold.
type FuzzyTagMatch struct{}

func (FuzzyTagMatch) Name() string { return "fuzzy_tag_match" }

func (FuzzyTagMatch) Evaluate(q Query, c Candidate) (bool, float64) {
	if MaxTagTokenSimilarity(q.Tokens, c.Tags) <= FuzzyTagThreshold {
		return false, 0
	}
	return true, ScoreFuzzyTag
}

// WeightedComposite is the fallback tier: a weighted blend of raw trigram
// similarity, normalized trigram similarity and full-text rank. It always
// applies; admission is decided separately by the gates.
type WeightedComposite struct{}

func (WeightedComposite) Name() string { return "weighted_composite" }

func (WeightedComposite) Evaluate(q Query, c Candidate) (bool, float64) {
	score := weightOriginal*TrigramSimilarity(c.Pattern, q.Question) +
		weightNormalized*TrigramSimilarity(c.NormalizedPattern, q.Normalized) +
		weightTextRank*c.TextRank
	return true, score
}

// pipeline is the priority-ordered tier list.
var pipeline = []Strategy{
	ExactMatch{},
	ExtractedTagOverlap{},
	ExactTagMatch{},
	FuzzyTagMatch{},
	WeightedComposite{},
}

// Pipeline returns the tiers in evaluation order.
func Pipeline() []Strategy { return pipeline }

// Result is the outcome of scoring one candidate.
type Result struct {
	Score    float64
	Tier     string
	Admitted bool
}

// ScoreCandidate runs the tier pipeline and then the admission gates.
// The gates are independent and union'd: a tag tier win admits outright;
// otherwise the candidate is admitted when its composite exceeds the
// threshold, its normalized trigram similarity exceeds the threshold, it
// has any full-text overlap at all, or it has a fuzzy tag hit.
func ScoreCandidate(q Query, c Candidate) Result {
	res := Result{Tier: "none"}
	for _, tier := range pipeline {
		if ok, score := tier.Evaluate(q, c); ok {
			res.Score = score
			res.Tier = tier.Name()
			break
		}
	}

	switch res.Tier {
	case ExactMatch{}.Name(), ExtractedTagOverlap{}.Name(), ExactTagMatch{}.Name(), FuzzyTagMatch{}.Name():
		res.Admitted = true
	default:
		res.Admitted = res.Score > q.Threshold ||
			TrigramSimilarity(c.NormalizedPattern, q.Normalized) > q.Threshold ||
			c.TextRank > 0 ||
			MaxTagTokenSimilarity(q.Tokens, c.Tags) > FuzzyTagThreshold
	}
	return res
}
