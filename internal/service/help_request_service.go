package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"frontdesk/internal/models"
	"frontdesk/internal/repository"
	"frontdesk/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HelpRequestService owns the escalation lifecycle: pending requests move
// to resolved through the supervisor's answer, or to unresolved when their
// deadline passes. Resolving commits the answer into the knowledge corpus
// in the same transaction, so a request is never resolved without the
// corpus learning from it.
type HelpRequestService struct {
	store     repository.Store
	knowledge *KnowledgeService
	notifier  Notifier
	config    *config.RequestConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewHelpRequestService(store repository.Store, knowledge *KnowledgeService, notifier Notifier, cfg *config.RequestConfig, logger *zap.Logger) *HelpRequestService {
	return &HelpRequestService{
		store:     store,
		knowledge: knowledge,
		notifier:  notifier,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateParams carries the immutable identity of a new help request.
type CreateParams struct {
	CustomerPhone   string
	Question        string
	CallID          *string
	AgentConfidence *float64
}

// Create registers a pending request with its answer deadline and pings
// the supervisor.
func (s *HelpRequestService) Create(ctx context.Context, params CreateParams) (*models.HelpRequest, error) {
	phone := strings.TrimSpace(params.CustomerPhone)
	// Questions arrive from voice transcription and may carry broken
	// byte sequences that Postgres rejects.
	question := strings.TrimSpace(sanitizeUTF8(params.Question))
	if phone == "" {
		return nil, newValidationError("customer_phone", "is required")
	}
	if question == "" {
		return nil, newValidationError("question", "is required")
	}
	if params.AgentConfidence != nil && (*params.AgentConfidence < 0 || *params.AgentConfidence > 1) {
		return nil, newValidationError("agent_confidence", "must be between 0 and 1")
	}

	now := s.now()
	request := &models.HelpRequest{
		ID:              uuid.New(),
		CustomerPhone:   phone,
		Question:        question,
		CallID:          params.CallID,
		AgentConfidence: params.AgentConfidence,
		Status:          models.RequestStatusPending,
		TimeoutAt:       now.Add(s.config.Timeout),
		CreatedAt:       now,
	}
	if err := s.store.CreateHelpRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create help request: %w", err)
	}

	s.notifier.NotifySupervisor(request.Question, request.ID, request.CustomerPhone)
	s.logger.Info("Help request created",
		zap.String("request_id", request.ID.String()),
		zap.Time("timeout_at", request.TimeoutAt),
	)
	return request, nil
}

// Resolve records the supervisor's answer and learns it into the knowledge
// corpus atomically: both writes commit or neither does. A request past
// its deadline is force-transitioned to unresolved instead; that
// transition commits even though the resolve itself fails, so whichever of
// Resolve and the sweeper observes expiry first wins the race.
func (s *HelpRequestService) Resolve(ctx context.Context, id uuid.UUID, answer string) (*models.HelpRequest, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, newValidationError("answer", "is required")
	}

	var (
		resolved *models.HelpRequest
		learned  *models.KnowledgeEntry
		timedOut bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		request, err := tx.GetHelpRequestForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if request.Status != models.RequestStatusPending {
			return fmt.Errorf("%w: cannot respond to request with status %s", ErrInvalidState, request.Status)
		}

		if request.Expired(s.now()) {
			if err := tx.MarkUnresolved(ctx, id); err != nil {
				return err
			}
			// Commit the forced transition; the resolve still fails.
			timedOut = true
			return nil
		}

		resolved, err = tx.MarkResolved(ctx, id, answer, s.now())
		if err != nil {
			return err
		}

		learned, err = s.knowledge.Learn(ctx, tx, request.Question, answer, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if timedOut {
		s.logger.Warn("Resolve attempted after deadline",
			zap.String("request_id", id.String()))
		return nil, ErrAlreadyTimedOut
	}

	s.knowledge.IndexEntry(learned)
	s.notifier.CallCustomerBack(resolved.CustomerPhone, answer, resolved.Question)
	s.logger.Info("Help request resolved",
		zap.String("request_id", resolved.ID.String()),
		zap.String("learned_entry_id", learned.ID.String()),
	)
	return resolved, nil
}

// SweepTimeouts forces every expired pending request to unresolved and
// returns the affected ids. Idempotent: terminal requests are skipped, so
// the sweeper may run concurrently with itself and with Resolve.
func (s *HelpRequestService) SweepTimeouts(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.store.MarkExpiredUnresolved(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to sweep timeouts: %w", err)
	}
	if len(ids) > 0 {
		s.logger.Info("Swept timed-out help requests", zap.Int("count", len(ids)))
	}
	return ids, nil
}

func (s *HelpRequestService) Get(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	request, err := s.store.GetHelpRequest(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load help request: %w", err)
	}
	return request, nil
}

// List pages requests newest-first, optionally filtered by status.
// Limit defaults to 50.
func (s *HelpRequestService) List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]*models.HelpRequest, error) {
	if status != nil {
		switch *status {
		case models.RequestStatusPending, models.RequestStatusResolved, models.RequestStatusUnresolved:
		default:
			return nil, newValidationError("status", "must be pending, resolved or unresolved")
		}
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListHelpRequests(ctx, repository.HelpRequestFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *HelpRequestService) Stats(ctx context.Context) (*models.HelpRequestStats, error) {
	return s.store.HelpRequestStats(ctx)
}
