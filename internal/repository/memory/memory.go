// Package memory implements repository.Store on plain maps. It backs the
// STORAGE_DRIVER=memory demo mode and the service test suites: transactions
// stage clones under the store lock and apply them on commit, which gives
// the same per-request serialization the postgres row locks provide.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"frontdesk/internal/models"
	"frontdesk/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*models.HelpRequest
	entries  map[uuid.UUID]*models.KnowledgeEntry
}

func NewStore() *Store {
	return &Store{
		requests: make(map[uuid.UUID]*models.HelpRequest),
		entries:  make(map[uuid.UUID]*models.KnowledgeEntry),
	}
}

func cloneRequest(req *models.HelpRequest) *models.HelpRequest {
	if req == nil {
		return nil
	}
	out := *req
	if req.CallID != nil {
		v := *req.CallID
		out.CallID = &v
	}
	if req.AgentConfidence != nil {
		v := *req.AgentConfidence
		out.AgentConfidence = &v
	}
	if req.SupervisorResponse != nil {
		v := *req.SupervisorResponse
		out.SupervisorResponse = &v
	}
	if req.ResolvedAt != nil {
		v := *req.ResolvedAt
		out.ResolvedAt = &v
	}
	return &out
}

func cloneEntry(entry *models.KnowledgeEntry) *models.KnowledgeEntry {
	if entry == nil {
		return nil
	}
	out := *entry
	out.Tags = append([]string(nil), entry.Tags...)
	if entry.LearnedFromRequestID != nil {
		v := *entry.LearnedFromRequestID
		out.LearnedFromRequestID = &v
	}
	return &out
}

func (s *Store) CreateHelpRequest(_ context.Context, req *models.HelpRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (s *Store) GetHelpRequest(_ context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (s *Store) ListHelpRequests(_ context.Context, filter repository.HelpRequestFilter) ([]*models.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var requests []*models.HelpRequest
	for _, req := range s.requests {
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		requests = append(requests, cloneRequest(req))
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID.String() < requests[j].ID.String()
	})
	return page(requests, filter.Limit, filter.Offset), nil
}

func (s *Store) HelpRequestStats(_ context.Context) (*models.HelpRequestStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.HelpRequestStats{}
	var resolutionSum float64
	for _, req := range s.requests {
		stats.TotalCount++
		switch req.Status {
		case models.RequestStatusPending:
			stats.PendingCount++
		case models.RequestStatusResolved:
			stats.ResolvedCount++
			if req.ResolvedAt != nil {
				resolutionSum += req.ResolvedAt.Sub(req.CreatedAt).Minutes()
			}
		case models.RequestStatusUnresolved:
			stats.UnresolvedCount++
		}
	}
	if stats.ResolvedCount > 0 {
		avg := resolutionSum / float64(stats.ResolvedCount)
		stats.AvgResolutionMinutes = &avg
	}
	return stats, nil
}

func (s *Store) MarkExpiredUnresolved(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID
	for _, req := range s.requests {
		if req.Status == models.RequestStatusPending && req.TimeoutAt.Before(now) {
			req.Status = models.RequestStatusUnresolved
			ids = append(ids, req.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *Store) CreateKnowledgeEntry(_ context.Context, entry *models.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByPatternLocked(entry.QuestionPattern, entry.ID) != nil {
		return repository.ErrDuplicatePattern
	}
	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (s *Store) GetKnowledgeEntry(_ context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneEntry(entry), nil
}

func (s *Store) ListKnowledgeEntries(_ context.Context, filter repository.KnowledgeFilter) ([]*models.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*models.KnowledgeEntry
	for _, entry := range s.entries {
		if filter.ActiveOnly && !entry.IsActive {
			continue
		}
		entries = append(entries, cloneEntry(entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TimesUsed != entries[j].TimesUsed {
			return entries[i].TimesUsed > entries[j].TimesUsed
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return page(entries, filter.Limit, filter.Offset), nil
}

func (s *Store) ListActiveKnowledgeEntries(_ context.Context) ([]*models.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*models.KnowledgeEntry
	for _, entry := range s.entries {
		if entry.IsActive {
			entries = append(entries, cloneEntry(entry))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return entries, nil
}

func (s *Store) UpdateKnowledgeEntry(_ context.Context, entry *models.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; !ok {
		return repository.ErrNotFound
	}
	if s.findByPatternLocked(entry.QuestionPattern, entry.ID) != nil {
		return repository.ErrDuplicatePattern
	}
	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (s *Store) IncrementTimesUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return repository.ErrNotFound
	}
	entry.TimesUsed++
	return nil
}

func (s *Store) KnowledgeStats(_ context.Context) (*models.KnowledgeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.KnowledgeStats{}
	var most *models.KnowledgeEntry
	for _, entry := range s.entries {
		stats.TotalCount++
		stats.TotalUses += entry.TimesUsed
		if !entry.IsActive {
			stats.InactiveCount++
			continue
		}
		stats.ActiveCount++
		if entry.Seeded() {
			stats.SeededCount++
		} else {
			stats.LearnedCount++
		}
		if most == nil || entry.TimesUsed > most.TimesUsed {
			most = entry
		}
	}
	if stats.TotalCount > 0 {
		stats.AvgUsesPerEntry = float64(stats.TotalUses) / float64(stats.TotalCount)
	}
	if most != nil {
		stats.MostUsed = &models.MostUsedEntry{
			QuestionPattern: most.QuestionPattern,
			Answer:          most.Answer,
			TimesUsed:       most.TimesUsed,
		}
	}
	return stats, nil
}

// WithinTx holds the store lock for the whole callback, staging clones and
// applying them only when fn succeeds. Holding the lock serializes
// concurrent transactions the way row locks do in postgres.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:    s,
		requests: make(map[uuid.UUID]*models.HelpRequest),
		entries:  make(map[uuid.UUID]*models.KnowledgeEntry),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for id, req := range tx.requests {
		s.requests[id] = req
	}
	for id, entry := range tx.entries {
		s.entries[id] = entry
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

// findByPatternLocked returns any entry sharing the pattern
// case-insensitively, excluding the given id. Caller holds the lock.
func (s *Store) findByPatternLocked(pattern string, exclude uuid.UUID) *models.KnowledgeEntry {
	lowered := strings.ToLower(strings.TrimSpace(pattern))
	for _, entry := range s.entries {
		if entry.ID != exclude && strings.ToLower(entry.QuestionPattern) == lowered {
			return entry
		}
	}
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// memTx stages writes until commit. Reads see staged state first.
type memTx struct {
	store    *Store
	requests map[uuid.UUID]*models.HelpRequest
	entries  map[uuid.UUID]*models.KnowledgeEntry
}

func (t *memTx) requestState(id uuid.UUID) (*models.HelpRequest, bool) {
	if req, ok := t.requests[id]; ok {
		return req, true
	}
	req, ok := t.store.requests[id]
	return req, ok
}

func (t *memTx) GetHelpRequestForUpdate(_ context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	req, ok := t.requestState(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (t *memTx) MarkResolved(_ context.Context, id uuid.UUID, answer string, at time.Time) (*models.HelpRequest, error) {
	req, ok := t.requestState(id)
	if !ok || req.Status != models.RequestStatusPending {
		return nil, repository.ErrNotFound
	}
	updated := cloneRequest(req)
	updated.Status = models.RequestStatusResolved
	updated.SupervisorResponse = &answer
	updated.ResolvedAt = &at
	t.requests[id] = updated
	return cloneRequest(updated), nil
}

func (t *memTx) MarkUnresolved(_ context.Context, id uuid.UUID) error {
	req, ok := t.requestState(id)
	if !ok || req.Status != models.RequestStatusPending {
		return nil
	}
	updated := cloneRequest(req)
	updated.Status = models.RequestStatusUnresolved
	t.requests[id] = updated
	return nil
}

func (t *memTx) UpsertKnowledgeEntry(_ context.Context, entry *models.KnowledgeEntry) (*models.KnowledgeEntry, error) {
	lowered := strings.ToLower(strings.TrimSpace(entry.QuestionPattern))

	var existing *models.KnowledgeEntry
	for _, staged := range t.entries {
		if strings.ToLower(staged.QuestionPattern) == lowered {
			existing = staged
			break
		}
	}
	if existing == nil {
		for _, stored := range t.store.entries {
			if strings.ToLower(stored.QuestionPattern) == lowered {
				existing = stored
				break
			}
		}
	}

	if existing == nil {
		stored := cloneEntry(entry)
		t.entries[stored.ID] = stored
		return cloneEntry(stored), nil
	}

	updated := cloneEntry(existing)
	updated.Answer = entry.Answer
	updated.LearnedFromRequestID = entry.LearnedFromRequestID
	updated.UpdatedAt = entry.UpdatedAt
	t.entries[updated.ID] = updated
	return cloneEntry(updated), nil
}
