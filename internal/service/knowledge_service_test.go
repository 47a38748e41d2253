package service

import (
	"context"
	"testing"
	"time"

	"frontdesk/internal/matching"
	"frontdesk/internal/models"
	"frontdesk/internal/repository"
	"frontdesk/internal/repository/memory"
	"frontdesk/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newKnowledgeService(t *testing.T) (*KnowledgeService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	index, err := matching.NewRelevanceIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	cfg := &config.SearchConfig{
		DefaultThreshold: 0.3,
		DefaultLimit:     5,
		MaxLimit:         20,
	}
	return NewKnowledgeService(store, index, cfg, zap.NewNop()), store
}

func seedEntry(t *testing.T, svc *KnowledgeService, pattern, answer string, tags ...string) *uuid.UUID {
	t.Helper()
	entry, err := svc.CreateEntry(context.Background(), CreateEntryParams{
		QuestionPattern: pattern,
		Answer:          answer,
		Tags:            tags,
	})
	require.NoError(t, err)
	return &entry.ID
}

func TestSearchExactMatchShortCircuits(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	seedEntry(t, svc, "What are your hours?", "9am to 7pm, Tuesday through Saturday.", "hours")
	seedEntry(t, svc, "What are your hours on weekends?", "Saturday 9am to 5pm, closed Sunday.", "hours", "weekend")

	matches, err := svc.Search(ctx, SearchParams{Question: "  WHAT are your hours?! "})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "What are your hours?", matches[0].Entry.QuestionPattern)
	assert.Equal(t, 1.0, matches[0].Score)
	assert.Equal(t, "exact_match", matches[0].Tier)
}

func TestSearchTagTierOutranksComposite(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	seedEntry(t, svc, "How much does a haircut cost?", "Haircuts start at $40.", "price", "haircut")
	seedEntry(t, svc, "How much is a deep conditioning treatment?", "Deep conditioning is $25.", "treatment")

	matches, err := svc.Search(ctx, SearchParams{Question: "how much for a haircut"})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "How much does a haircut cost?", matches[0].Entry.QuestionPattern)
	assert.Equal(t, "exact_tag_match", matches[0].Tier)
	assert.Equal(t, 0.85, matches[0].Score)
}

func TestSearchExtractedTagsBoostScore(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	seedEntry(t, svc, "Do you take walk-ins?", "Walk-ins welcome before 3pm.", "walk-ins", "appointment")

	matches, err := svc.Search(ctx, SearchParams{
		Question:      "can I just show up",
		ExtractedTags: []string{"walk-ins", "appointment"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "semantic_tag_overlap", matches[0].Tier)
	assert.InDelta(t, 0.80, matches[0].Score, 1e-9)
}

func TestSearchNoMatchReturnsEmpty(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	seedEntry(t, svc, "What are your hours?", "9am to 7pm.", "hours")

	matches, err := svc.Search(ctx, SearchParams{Question: "do you sell gift cards"})
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = svc.Search(ctx, SearchParams{Question: "   "})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchCountsUsageOnTopMatchOnly(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	topID := seedEntry(t, svc, "What are your hours?", "9am to 7pm.", "hours")
	otherID := seedEntry(t, svc, "Where are you located?", "12 Main Street.", "location")

	for i := 0; i < 2; i++ {
		matches, err := svc.Search(ctx, SearchParams{Question: "what are your hours"})
		require.NoError(t, err)
		require.NotEmpty(t, matches)
	}

	top, err := svc.GetEntry(ctx, *topID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), top.TimesUsed)

	other, err := svc.GetEntry(ctx, *otherID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other.TimesUsed)
}

func TestSearchLimitClamped(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	for _, pattern := range []string{
		"How much does hair coloring cost?",
		"How much does a haircut cost?",
		"How much does a blowout cost?",
	} {
		seedEntry(t, svc, pattern, "It depends on length.", "price")
	}

	matches, err := svc.Search(ctx, SearchParams{Question: "how much does it cost", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = svc.Search(ctx, SearchParams{Question: "how much does it cost", Limit: 500})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 20)
}

func TestLearnUpsertsByPattern(t *testing.T) {
	svc, store := newKnowledgeService(t)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()

	var entryID uuid.UUID
	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		entry, err := svc.Learn(ctx, tx, "Do you do threading?", "Not yet.", first)
		if err != nil {
			return err
		}
		entryID = entry.ID
		return nil
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		entry, err := svc.Learn(ctx, tx, "DO you do threading?", "Yes, $12.", second)
		if err != nil {
			return err
		}
		// Same normalized pattern keeps the same entry.
		assert.Equal(t, entryID, entry.ID)
		return nil
	})
	require.NoError(t, err)

	entry, err := svc.GetEntry(ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, "Yes, $12.", entry.Answer)
	require.NotNil(t, entry.LearnedFromRequestID)
	assert.Equal(t, second, *entry.LearnedFromRequestID)
}

func TestSoftDeleteHidesFromSearch(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	id := seedEntry(t, svc, "What are your hours?", "9am to 7pm.", "hours")

	deleted, err := svc.SoftDelete(ctx, *id)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)

	matches, err := svc.Search(ctx, SearchParams{Question: "what are your hours"})
	require.NoError(t, err)
	assert.Empty(t, matches)

	// Soft-deleted entries remain readable by id.
	entry, err := svc.GetEntry(ctx, *id)
	require.NoError(t, err)
	assert.False(t, entry.IsActive)
}

func TestCreateEntryRejectsDuplicatePattern(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	seedEntry(t, svc, "What are your hours?", "9am to 7pm.", "hours")

	_, err := svc.CreateEntry(ctx, CreateEntryParams{
		QuestionPattern: "what are your HOURS?",
		Answer:          "different answer",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateEntryReindexesPattern(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	id := seedEntry(t, svc, "Do you sell gift vouchers?", "Yes, at the front desk.", "gift")

	pattern := "Do you sell gift cards?"
	updated, err := svc.UpdateEntry(ctx, *id, UpdateEntryParams{QuestionPattern: &pattern})
	require.NoError(t, err)
	assert.Equal(t, pattern, updated.QuestionPattern)
	assert.Equal(t, "do you sell gift cards", updated.NormalizedQuestion)

	matches, err := svc.Search(ctx, SearchParams{Question: "do you sell gift cards"})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, 1.0, matches[0].Score)
}

func TestListEntriesWithSources(t *testing.T) {
	svc, store := newKnowledgeService(t)
	ctx := context.Background()

	seedEntry(t, svc, "What are your hours?", "9am to 7pm.", "hours")

	now := time.Now()
	resolvedAt := now
	request := &models.HelpRequest{
		ID:            uuid.New(),
		CustomerPhone: "+15550001234",
		Question:      "Do you do threading?",
		Status:        models.RequestStatusResolved,
		TimeoutAt:     now.Add(30 * time.Minute),
		CreatedAt:     now,
		ResolvedAt:    &resolvedAt,
	}
	require.NoError(t, store.CreateHelpRequest(ctx, request))

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, err := svc.Learn(ctx, tx, request.Question, "Yes, $12.", request.ID)
		return err
	})
	require.NoError(t, err)

	items, err := svc.ListEntriesWithSources(ctx, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var learned *EntryWithSource
	for i := range items {
		if items[i].Entry.LearnedFromRequestID != nil {
			learned = &items[i]
		}
	}
	require.NotNil(t, learned)
	require.NotNil(t, learned.Source)
	assert.Equal(t, request.ID, learned.Source.ID)
	assert.Equal(t, "Do you do threading?", learned.Source.Question)
}

func TestKnowledgeStats(t *testing.T) {
	svc, _ := newKnowledgeService(t)
	ctx := context.Background()

	seedEntry(t, svc, "What are your hours?", "9am to 7pm.", "hours")
	id := seedEntry(t, svc, "Where are you located?", "12 Main Street.", "location")
	_, err := svc.SoftDelete(ctx, *id)
	require.NoError(t, err)

	_, err = svc.Search(ctx, SearchParams{Question: "what are your hours"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCount)
	assert.Equal(t, int64(1), stats.ActiveCount)
	assert.Equal(t, int64(1), stats.TotalUses)
	require.NotNil(t, stats.MostUsed)
	assert.Equal(t, "What are your hours?", stats.MostUsed.QuestionPattern)
}
