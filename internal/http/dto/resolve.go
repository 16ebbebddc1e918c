package dto

import (
	"time"

	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/repository"
	"bidlens.app/resolver/internal/resolver"
)

type ResolveRequest struct {
	Identifier string `json:"identifier" binding:"required,max=512"`
}

type ResolveResponse struct {
	Identifier string                `json:"identifier"`
	Tier       string                `json:"tier"`
	Score      *float64              `json:"score,omitempty"`
	Record     *model.ContractRecord `json:"record"`
	Trace      []string              `json:"trace,omitempty"`
}

func ToResolveResponse(identifier string, result *model.MatchResult, trace []resolver.Line, includeTrace bool) *ResolveResponse {
	resp := &ResolveResponse{
		Identifier: identifier,
		Tier:       result.Tier,
		Score:      result.Score,
		Record:     result.Record,
	}
	if includeTrace {
		resp.Trace = traceStrings(trace)
	}
	return resp
}

type NotFoundResponse struct {
	Identifier string   `json:"identifier"`
	Message    string   `json:"message"`
	Trace      []string `json:"trace,omitempty"`
}

func ToNotFoundResponse(identifier string, trace []resolver.Line, includeTrace bool) *NotFoundResponse {
	resp := &NotFoundResponse{
		Identifier: identifier,
		Message:    "no contract found for " + identifier,
	}
	if includeTrace {
		resp.Trace = traceStrings(trace)
	}
	return resp
}

func traceStrings(lines []resolver.Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.String())
	}
	return out
}

type ResolutionResponse struct {
	ID         int64     `json:"id,string"`
	Identifier string    `json:"identifier"`
	Kind       string    `json:"kind"`
	Tier       string    `json:"tier"`
	Score      *float64  `json:"score,omitempty"`
	NoticeID   string    `json:"notice_id,omitempty"`
	Found      bool      `json:"found"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToResolutionResponse(r repository.Resolution) ResolutionResponse {
	return ResolutionResponse{
		ID:         r.ID,
		Identifier: r.Identifier,
		Kind:       r.Kind,
		Tier:       r.Tier,
		Score:      r.Score,
		NoticeID:   r.NoticeID,
		Found:      r.Found,
		DurationMS: r.DurationMS,
		CreatedAt:  r.CreatedAt,
	}
}
