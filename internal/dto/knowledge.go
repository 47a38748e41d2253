package dto

import (
	"time"

	"frontdesk/internal/models"
	"frontdesk/internal/service"
)

type CreateKnowledgeRequest struct {
	QuestionPattern string   `json:"question_pattern" validate:"required"`
	Answer          string   `json:"answer" validate:"required"`
	Tags            []string `json:"tags,omitempty"`
}

type UpdateKnowledgeRequest struct {
	QuestionPattern *string  `json:"question_pattern,omitempty"`
	Answer          *string  `json:"answer,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

type KnowledgeResponse struct {
	ID                   string   `json:"id"`
	QuestionPattern      string   `json:"question_pattern"`
	NormalizedQuestion   string   `json:"normalized_question"`
	Answer               string   `json:"answer"`
	Tags                 []string `json:"tags"`
	IsActive             bool     `json:"is_active"`
	TimesUsed            int64    `json:"times_used"`
	LearnedFromRequestID *string  `json:"learned_from_request_id,omitempty"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
}

func NewKnowledgeResponse(e *models.KnowledgeEntry) KnowledgeResponse {
	resp := KnowledgeResponse{
		ID:                 e.ID.String(),
		QuestionPattern:    e.QuestionPattern,
		NormalizedQuestion: e.NormalizedQuestion,
		Answer:             e.Answer,
		Tags:               e.Tags,
		IsActive:           e.IsActive,
		TimesUsed:          e.TimesUsed,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          e.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if e.LearnedFromRequestID != nil {
		id := e.LearnedFromRequestID.String()
		resp.LearnedFromRequestID = &id
	}
	return resp
}

// LearnedFromResponse summarizes the help request a learned entry came from.
type LearnedFromResponse struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	CustomerPhone string `json:"customer_phone"`
	ResolvedAt    string `json:"resolved_at,omitempty"`
}

type KnowledgeWithSourceResponse struct {
	KnowledgeResponse
	LearnedFrom *LearnedFromResponse `json:"learned_from,omitempty"`
}

func NewKnowledgeWithSourceResponses(items []service.EntryWithSource) []KnowledgeWithSourceResponse {
	responses := make([]KnowledgeWithSourceResponse, 0, len(items))
	for _, item := range items {
		resp := KnowledgeWithSourceResponse{KnowledgeResponse: NewKnowledgeResponse(item.Entry)}
		if item.Source != nil {
			resp.LearnedFrom = &LearnedFromResponse{
				ID:            item.Source.ID.String(),
				Question:      item.Source.Question,
				CustomerPhone: item.Source.CustomerPhone,
			}
			if item.Source.ResolvedAt != nil {
				resp.LearnedFrom.ResolvedAt = item.Source.ResolvedAt.Format(time.RFC3339)
			}
		}
		responses = append(responses, resp)
	}
	return responses
}

type SearchMatchResponse struct {
	Entry     KnowledgeResponse `json:"entry"`
	Score     float64           `json:"score"`
	MatchTier string            `json:"match_tier"`
}

func NewSearchMatchResponses(matches []service.SearchMatch) []SearchMatchResponse {
	responses := make([]SearchMatchResponse, 0, len(matches))
	for _, m := range matches {
		responses = append(responses, SearchMatchResponse{
			Entry:     NewKnowledgeResponse(m.Entry),
			Score:     m.Score,
			MatchTier: m.Tier,
		})
	}
	return responses
}

type MostUsedResponse struct {
	QuestionPattern string `json:"question_pattern"`
	Answer          string `json:"answer"`
	TimesUsed       int64  `json:"times_used"`
}

type KnowledgeStatsResponse struct {
	Active          int64             `json:"active"`
	Inactive        int64             `json:"inactive"`
	Total           int64             `json:"total"`
	Seeded          int64             `json:"seeded"`
	Learned         int64             `json:"learned"`
	TotalUses       int64             `json:"total_uses"`
	AvgUsesPerEntry float64           `json:"avg_uses_per_entry"`
	MostUsed        *MostUsedResponse `json:"most_used,omitempty"`
}

func NewKnowledgeStatsResponse(s *models.KnowledgeStats) KnowledgeStatsResponse {
	resp := KnowledgeStatsResponse{
		Active:          s.ActiveCount,
		Inactive:        s.InactiveCount,
		Total:           s.TotalCount,
		Seeded:          s.SeededCount,
		Learned:         s.LearnedCount,
		TotalUses:       s.TotalUses,
		AvgUsesPerEntry: s.AvgUsesPerEntry,
	}
	if s.MostUsed != nil {
		resp.MostUsed = &MostUsedResponse{
			QuestionPattern: s.MostUsed.QuestionPattern,
			Answer:          s.MostUsed.Answer,
			TimesUsed:       s.MostUsed.TimesUsed,
		}
	}
	return resp
}
