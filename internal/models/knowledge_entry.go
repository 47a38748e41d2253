package models

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeEntry is one learned or seeded answer in the corpus.
//
// QuestionPattern is unique case-insensitively across active and inactive
// entries. NormalizedQuestion caches the canonical form used by the matcher.
// Soft-deleted entries keep their row so learned_from_request_id
// back-references stay valid.
type KnowledgeEntry struct {
	ID                   uuid.UUID  `db:"id"`
	QuestionPattern      string     `db:"question_pattern"`
	NormalizedQuestion   string     `db:"normalized_question"`
	Answer               string     `db:"answer"`
	Tags                 []string   `db:"tags"`
	IsActive             bool       `db:"is_active"`
	TimesUsed            int64      `db:"times_used"`
	LearnedFromRequestID *uuid.UUID `db:"learned_from_request_id"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// Seeded reports whether the entry was created directly rather than
// learned from a resolved help request.
func (e *KnowledgeEntry) Seeded() bool {
	return e.LearnedFromRequestID == nil
}

// MostUsedEntry is the usage-leader summary in KnowledgeStats.
type MostUsedEntry struct {
	QuestionPattern string `db:"question_pattern"`
	Answer          string `db:"answer"`
	TimesUsed       int64  `db:"times_used"`
}

type KnowledgeStats struct {
	ActiveCount     int64          `db:"active_count"`
	InactiveCount   int64          `db:"inactive_count"`
	TotalCount      int64          `db:"total_count"`
	SeededCount     int64          `db:"seeded_count"`
	LearnedCount    int64          `db:"learned_count"`
	TotalUses       int64          `db:"total_uses"`
	AvgUsesPerEntry float64        `db:"avg_uses_per_entry"`
	MostUsed        *MostUsedEntry `db:"-"`
}
