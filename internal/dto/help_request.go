package dto

import (
	"time"

	"frontdesk/internal/models"
)

type CreateHelpRequestRequest struct {
	CustomerPhone   string   `json:"customer_phone" validate:"required"`
	Question        string   `json:"question" validate:"required"`
	CallID          *string  `json:"call_id,omitempty"`
	AgentConfidence *float64 `json:"agent_confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type RespondRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type HelpRequestResponse struct {
	ID                 string   `json:"id"`
	CustomerPhone      string   `json:"customer_phone"`
	Question           string   `json:"question"`
	CallID             *string  `json:"call_id,omitempty"`
	AgentConfidence    *float64 `json:"agent_confidence,omitempty"`
	Status             string   `json:"status"`
	SupervisorResponse *string  `json:"supervisor_response,omitempty"`
	TimeoutAt          string   `json:"timeout_at"`
	CreatedAt          string   `json:"created_at"`
	ResolvedAt         *string  `json:"resolved_at,omitempty"`
}

func NewHelpRequestResponse(r *models.HelpRequest) HelpRequestResponse {
	resp := HelpRequestResponse{
		ID:                 r.ID.String(),
		CustomerPhone:      r.CustomerPhone,
		Question:           r.Question,
		CallID:             r.CallID,
		AgentConfidence:    r.AgentConfidence,
		Status:             string(r.Status),
		SupervisorResponse: r.SupervisorResponse,
		TimeoutAt:          r.TimeoutAt.Format(time.RFC3339),
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}
	if r.ResolvedAt != nil {
		resolved := r.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &resolved
	}
	return resp
}

func NewHelpRequestResponses(requests []*models.HelpRequest) []HelpRequestResponse {
	responses := make([]HelpRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, NewHelpRequestResponse(r))
	}
	return responses
}

type HelpRequestStatsResponse struct {
	Pending              int64    `json:"pending"`
	Resolved             int64    `json:"resolved"`
	Unresolved           int64    `json:"unresolved"`
	Total                int64    `json:"total"`
	AvgResolutionMinutes *float64 `json:"avg_resolution_minutes,omitempty"`
}

func NewHelpRequestStatsResponse(s *models.HelpRequestStats) HelpRequestStatsResponse {
	return HelpRequestStatsResponse{
		Pending:              s.PendingCount,
		Resolved:             s.ResolvedCount,
		Unresolved:           s.UnresolvedCount,
		Total:                s.TotalCount,
		AvgResolutionMinutes: s.AvgResolutionMinutes,
	}
}

type ProcessTimeoutsResponse struct {
	TimedOut []string `json:"timed_out"`
	Count    int      `json:"count"`
}
