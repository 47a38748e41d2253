package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"frontdesk/internal/matching"
	"frontdesk/internal/models"
	"frontdesk/internal/repository"
	"frontdesk/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KnowledgeService owns the answer corpus and the matching policy: tiered
// scoring on search, the learn upsert fed by resolved help requests, direct
// CRUD for seeded entries, and the relevance index kept in sync with every
// corpus write.
type KnowledgeService struct {
	store  repository.Store
	index  *matching.RelevanceIndex
	config *config.SearchConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewKnowledgeService(store repository.Store, index *matching.RelevanceIndex, cfg *config.SearchConfig, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		store:  store,
		index:  index,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// WarmIndex loads every active entry into the relevance index. Called once
// at startup before the service starts answering searches.
func (s *KnowledgeService) WarmIndex(ctx context.Context) error {
	entries, err := s.store.ListActiveKnowledgeEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus for indexing: %w", err)
	}
	for _, entry := range entries {
		if err := s.index.Index(entry.ID.String(), entry.QuestionPattern); err != nil {
			return err
		}
	}
	s.logger.Info("Relevance index warmed", zap.Int("entries", len(entries)))
	return nil
}

// SearchMatch is one ranked candidate returned by Search.
type SearchMatch struct {
	Entry *models.KnowledgeEntry
	Score float64
	Tier  string
}

// SearchParams carries the caller-controlled knobs of a search. Zero
// Threshold and Limit fall back to the configured defaults.
type SearchParams struct {
	Question      string
	Threshold     float64
	ExtractedTags []string
	Limit         int
}

// Search ranks active corpus entries against the question and returns the
// admitted candidates ordered by score, then times_used, then id. An exact
// (normalize-insensitive) pattern match short-circuits everything and
// returns that single entry at score 1.0. The top-ranked entry's usage
// counter is incremented; an empty result is success, not an error.
func (s *KnowledgeService) Search(ctx context.Context, params SearchParams) ([]SearchMatch, error) {
	question := strings.TrimSpace(params.Question)
	if question == "" {
		return nil, nil
	}

	threshold := params.Threshold
	if threshold <= 0 {
		threshold = s.config.DefaultThreshold
	}
	limit := clampLimit(params.Limit, s.config.DefaultLimit, s.config.MaxLimit)

	entries, err := s.store.ListActiveKnowledgeEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	// Relevance failures degrade the composite tier to its trigram
	// signals instead of failing the search.
	ranks, err := s.index.Rank(question, len(entries))
	if err != nil {
		s.logger.Warn("Relevance ranking unavailable", zap.Error(err))
		ranks = map[string]float64{}
	}

	query := matching.NewQuery(question, params.ExtractedTags, threshold)

	var matches []SearchMatch
	for _, entry := range entries {
		candidate := matching.Candidate{
			Pattern:           entry.QuestionPattern,
			NormalizedPattern: entry.NormalizedQuestion,
			Tags:              entry.Tags,
			TextRank:          ranks[entry.ID.String()],
		}
		result := matching.ScoreCandidate(query, candidate)
		if result.Tier == (matching.ExactMatch{}).Name() {
			matches = []SearchMatch{{Entry: entry, Score: result.Score, Tier: result.Tier}}
			break
		}
		if result.Admitted {
			matches = append(matches, SearchMatch{Entry: entry, Score: result.Score, Tier: result.Tier})
		}
	}
	if len(matches) == 0 {
		s.logger.Info("No knowledge match",
			zap.String("question", question),
			zap.Float64("threshold", threshold),
		)
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Entry.TimesUsed != matches[j].Entry.TimesUsed {
			return matches[i].Entry.TimesUsed > matches[j].Entry.TimesUsed
		}
		return matches[i].Entry.ID.String() < matches[j].Entry.ID.String()
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	// Usage statistics count only the leading suggestion, never the
	// near-misses below it.
	top := matches[0]
	if err := s.store.IncrementTimesUsed(ctx, top.Entry.ID); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}
	top.Entry.TimesUsed++

	s.logger.Info("Knowledge match found",
		zap.String("question", question),
		zap.String("top_pattern", top.Entry.QuestionPattern),
		zap.String("match_tier", top.Tier),
		zap.Float64("score", top.Score),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}

func clampLimit(requested, def, max int) int {
	if requested <= 0 {
		requested = def
	}
	if requested < 1 {
		requested = 1
	}
	if requested > max {
		requested = max
	}
	return requested
}

// Learn upserts the answer for a question pattern as part of the caller's
// transaction. An existing entry (active or not) keeps its identity and
// tags but takes the new answer and source request. The caller must
// publish the returned entry to the index after commit via IndexEntry.
func (s *KnowledgeService) Learn(ctx context.Context, tx repository.Tx, question, answer string, sourceRequestID uuid.UUID) (*models.KnowledgeEntry, error) {
	now := s.now()
	source := sourceRequestID
	entry := &models.KnowledgeEntry{
		ID:                   uuid.New(),
		QuestionPattern:      strings.TrimSpace(question),
		NormalizedQuestion:   matching.Normalize(question),
		Answer:               strings.TrimSpace(answer),
		Tags:                 []string{},
		IsActive:             true,
		LearnedFromRequestID: &source,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return tx.UpsertKnowledgeEntry(ctx, entry)
}

// IndexEntry publishes a committed entry to the relevance index. Index
// drift only weakens one scoring signal, so failures are logged, not
// returned.
func (s *KnowledgeService) IndexEntry(entry *models.KnowledgeEntry) {
	if !entry.IsActive {
		s.removeFromIndex(entry.ID)
		return
	}
	if err := s.index.Index(entry.ID.String(), entry.QuestionPattern); err != nil {
		s.logger.Warn("Failed to index knowledge entry",
			zap.String("entry_id", entry.ID.String()), zap.Error(err))
	}
}

func (s *KnowledgeService) removeFromIndex(id uuid.UUID) {
	if err := s.index.Remove(id.String()); err != nil {
		s.logger.Warn("Failed to remove knowledge entry from index",
			zap.String("entry_id", id.String()), zap.Error(err))
	}
}

// CreateEntryParams carries a seeded (non-learned) corpus entry.
type CreateEntryParams struct {
	QuestionPattern string
	Answer          string
	Tags            []string
}

func (s *KnowledgeService) CreateEntry(ctx context.Context, params CreateEntryParams) (*models.KnowledgeEntry, error) {
	pattern := strings.TrimSpace(params.QuestionPattern)
	answer := strings.TrimSpace(params.Answer)
	if pattern == "" {
		return nil, newValidationError("question_pattern", "is required")
	}
	if answer == "" {
		return nil, newValidationError("answer", "is required")
	}

	now := s.now()
	entry := &models.KnowledgeEntry{
		ID:                 uuid.New(),
		QuestionPattern:    pattern,
		NormalizedQuestion: matching.Normalize(pattern),
		Answer:             answer,
		Tags:               lowercaseTags(params.Tags),
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.CreateKnowledgeEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicatePattern) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create knowledge entry: %w", err)
	}

	s.IndexEntry(entry)
	return entry, nil
}

// UpdateEntryParams holds the optional fields of a partial update. A nil
// field is left unchanged; at least one must be set.
type UpdateEntryParams struct {
	QuestionPattern *string
	Answer          *string
	Tags            []string
	IsActive        *bool
}

func (p UpdateEntryParams) empty() bool {
	return p.QuestionPattern == nil && p.Answer == nil && p.Tags == nil && p.IsActive == nil
}

func (s *KnowledgeService) UpdateEntry(ctx context.Context, id uuid.UUID, params UpdateEntryParams) (*models.KnowledgeEntry, error) {
	if params.empty() {
		return nil, newValidationError("update", "requires at least one field")
	}

	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.QuestionPattern != nil {
		pattern := strings.TrimSpace(*params.QuestionPattern)
		if pattern == "" {
			return nil, newValidationError("question_pattern", "cannot be empty")
		}
		entry.QuestionPattern = pattern
		entry.NormalizedQuestion = matching.Normalize(pattern)
	}
	if params.Answer != nil {
		answer := strings.TrimSpace(*params.Answer)
		if answer == "" {
			return nil, newValidationError("answer", "cannot be empty")
		}
		entry.Answer = answer
	}
	if params.Tags != nil {
		entry.Tags = lowercaseTags(params.Tags)
	}
	if params.IsActive != nil {
		entry.IsActive = *params.IsActive
	}
	entry.UpdatedAt = s.now()

	if err := s.store.UpdateKnowledgeEntry(ctx, entry); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrDuplicatePattern):
			return nil, ErrConflict
		default:
			return nil, fmt.Errorf("failed to update knowledge entry: %w", err)
		}
	}

	s.IndexEntry(entry)
	return entry, nil
}

// SoftDelete deactivates an entry. The row survives so learned_from
// back-references and history stay intact; search stops seeing it.
func (s *KnowledgeService) SoftDelete(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.IsActive = false
	entry.UpdatedAt = s.now()
	if err := s.store.UpdateKnowledgeEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete knowledge entry: %w", err)
	}

	s.removeFromIndex(entry.ID)
	return entry, nil
}

func (s *KnowledgeService) GetEntry(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	return s.getEntry(ctx, id)
}

func (s *KnowledgeService) getEntry(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	entry, err := s.store.GetKnowledgeEntry(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load knowledge entry: %w", err)
	}
	return entry, nil
}

// ListEntries pages the corpus ordered by usage. Limit defaults to 100.
func (s *KnowledgeService) ListEntries(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.KnowledgeEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListKnowledgeEntries(ctx, repository.KnowledgeFilter{
		ActiveOnly: activeOnly,
		Limit:      limit,
		Offset:     offset,
	})
}

// EntryWithSource pairs a corpus entry with the help request it was
// learned from. Source is nil for seeded entries and for learned entries
// whose originating request no longer resolves.
type EntryWithSource struct {
	Entry  *models.KnowledgeEntry
	Source *models.HelpRequest
}

// ListEntriesWithSources is ListEntries plus the originating help request
// of every learned entry, for the dashboard listing.
func (s *KnowledgeService) ListEntriesWithSources(ctx context.Context, activeOnly bool, limit, offset int) ([]EntryWithSource, error) {
	entries, err := s.ListEntries(ctx, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}

	sources := make(map[uuid.UUID]*models.HelpRequest)
	out := make([]EntryWithSource, 0, len(entries))
	for _, entry := range entries {
		item := EntryWithSource{Entry: entry}
		if id := entry.LearnedFromRequestID; id != nil {
			source, ok := sources[*id]
			if !ok {
				source, err = s.store.GetHelpRequest(ctx, *id)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("failed to load source request: %w", err)
				}
				sources[*id] = source
			}
			item.Source = source
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *KnowledgeService) Stats(ctx context.Context) (*models.KnowledgeStats, error) {
	return s.store.KnowledgeStats(ctx)
}

func lowercaseTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
