// Package repository defines the storage contract shared by the postgres
// and in-memory implementations: keyed reads, filtered listings, and the
// scoped transaction used by the resolve path.
package repository

import (
	"context"
	"errors"
	"time"

	"frontdesk/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicatePattern is returned when an insert collides with the
	// case-insensitive uniqueness of question_pattern.
	ErrDuplicatePattern = errors.New("question pattern already exists")
)

// HelpRequestFilter narrows and pages ListHelpRequests.
type HelpRequestFilter struct {
	Status *models.RequestStatus
	Limit  int
	Offset int
}

// KnowledgeFilter narrows and pages ListKnowledgeEntries.
type KnowledgeFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Tx is the scoped transaction handed to WithinTx callbacks. Its reads
// take row locks so concurrent Resolve/Sweep attempts on the same request
// serialize: exactly one wins, the other observes the committed state.
type Tx interface {
	// GetHelpRequestForUpdate loads a request and locks its row for the
	// remainder of the transaction.
	GetHelpRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error)

	// MarkResolved transitions a pending request to resolved with the
	// supervisor's answer. ErrNotFound if the request is no longer pending.
	MarkResolved(ctx context.Context, id uuid.UUID, answer string, at time.Time) (*models.HelpRequest, error)

	// MarkUnresolved force-transitions a pending request to unresolved.
	// A request already in a terminal state is left untouched.
	MarkUnresolved(ctx context.Context, id uuid.UUID) error

	// UpsertKnowledgeEntry inserts the entry, or if an entry with the same
	// pattern exists (case-insensitively, active or not) overwrites its
	// answer, learned_from_request_id and updated_at. Returns the stored row.
	UpsertKnowledgeEntry(ctx context.Context, entry *models.KnowledgeEntry) (*models.KnowledgeEntry, error)
}

// Store is the persistence boundary for help requests and the knowledge
// corpus. All mutation of request status and pattern uniqueness goes
// through here; the matching engine itself is storage-agnostic.
type Store interface {
	CreateHelpRequest(ctx context.Context, req *models.HelpRequest) error
	GetHelpRequest(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error)
	ListHelpRequests(ctx context.Context, filter HelpRequestFilter) ([]*models.HelpRequest, error)
	HelpRequestStats(ctx context.Context) (*models.HelpRequestStats, error)

	// MarkExpiredUnresolved transitions every pending request whose
	// timeout_at lies before now to unresolved and returns the affected
	// ids. Idempotent and safe to run concurrently with Resolve.
	MarkExpiredUnresolved(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	CreateKnowledgeEntry(ctx context.Context, entry *models.KnowledgeEntry) error
	GetKnowledgeEntry(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error)
	ListKnowledgeEntries(ctx context.Context, filter KnowledgeFilter) ([]*models.KnowledgeEntry, error)
	// ListActiveKnowledgeEntries returns the matcher's search corpus in a
	// stable order (created_at, then id).
	ListActiveKnowledgeEntries(ctx context.Context) ([]*models.KnowledgeEntry, error)
	UpdateKnowledgeEntry(ctx context.Context, entry *models.KnowledgeEntry) error
	IncrementTimesUsed(ctx context.Context, id uuid.UUID) error
	KnowledgeStats(ctx context.Context) (*models.KnowledgeStats, error)

	// WithinTx runs fn inside one atomic transaction: commit when fn
	// returns nil, rollback on error or panic.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Ping reports storage connectivity for the health endpoint.
	Ping(ctx context.Context) error

	Close()
}
