package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusResolved   RequestStatus = "resolved"
	RequestStatusUnresolved RequestStatus = "unresolved"
)

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusResolved || s == RequestStatusUnresolved
}

// HelpRequest is an escalation of a question the agent could not answer.
// Identity fields are immutable after creation; only Status,
// SupervisorResponse and ResolvedAt change over the lifecycle.
type HelpRequest struct {
	ID                 uuid.UUID     `db:"id"`
	CustomerPhone      string        `db:"customer_phone"`
	Question           string        `db:"question"`
	CallID             *string       `db:"call_id"`
	AgentConfidence    *float64      `db:"agent_confidence"`
	Status             RequestStatus `db:"status"`
	SupervisorResponse *string       `db:"supervisor_response"`
	TimeoutAt          time.Time     `db:"timeout_at"`
	CreatedAt          time.Time     `db:"created_at"`
	ResolvedAt         *time.Time    `db:"resolved_at"`
}

// Expired reports whether the request's answer deadline has passed.
func (r *HelpRequest) Expired(now time.Time) bool {
	return now.After(r.TimeoutAt)
}

type HelpRequestStats struct {
	PendingCount         int64    `db:"pending_count"`
	ResolvedCount        int64    `db:"resolved_count"`
	UnresolvedCount      int64    `db:"unresolved_count"`
	TotalCount           int64    `db:"total_count"`
	AvgResolutionMinutes *float64 `db:"avg_resolution_minutes"`
}
