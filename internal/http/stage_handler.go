package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/interview-pipeline/internal/application"
	"github.com/example/interview-pipeline/internal/persistence"
)

type chainService interface {
	SyncStageChain(ctx context.Context, params application.SyncStageChainParams) ([]persistence.InterviewStage, error)
}

type transitionService interface {
	RecordStageOutcome(ctx context.Context, params application.RecordStageOutcomeParams) (persistence.InterviewStage, error)
}

type StageHandler struct {
	chains      chainService
	transitions transitionService
	responder   responder
	logger      *slog.Logger
}

func NewStageHandler(chains chainService, transitions transitionService, logger *slog.Logger) *StageHandler {
	base := defaultLogger(logger)
	return &StageHandler{chains: chains, transitions: transitions, responder: newResponder(base), logger: base}
}

func (h *StageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StageHandler", operation, attrs...)
}

// SyncChain replaces a candidate's stage chain with the submitted one.
func (h *StageHandler) SyncChain(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.chains == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCandidateID)
		return
	}

	var req stageChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SyncChain", "candidate_id", candidateID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode stage chain", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SyncChain", "candidate_id", candidateID)

	stages, err := h.chains.SyncStageChain(r.Context(), application.SyncStageChainParams{
		Scope:       ScopeFromContext(r.Context()),
		CandidateID: candidateID,
		Stages:      toStageSpecInputs(req.Stages),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "stage chain sync failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "stage chain synced", "live_stages", len(stages))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, stageListResponse{Stages: toStageDTOs(stages)})
}

// Outcome records a pass or fail on a stage and advances the candidate.
func (h *StageHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.transitions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stageID, ok := StageIDFromContext(r.Context())
	if !ok || strings.TrimSpace(stageID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStageID)
		return
	}

	var req stageOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Outcome", "stage_id", stageID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode stage outcome", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Outcome", "stage_id", stageID, "status", req.Status)

	stage, err := h.transitions.RecordStageOutcome(r.Context(), application.RecordStageOutcomeParams{
		Scope:    ScopeFromContext(r.Context()),
		StageID:  stageID,
		Status:   req.Status,
		Comments: req.Comments,
		Rating:   req.Rating,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "stage outcome failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "stage outcome recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, stageResponse{Stage: toStageDTO(stage)})
}

type stageSpecDTO struct {
	ID            string  `json:"id,omitempty"`
	StageName     string  `json:"stage_name"`
	InterviewerID *string `json:"interviewer_id,omitempty"`
}

type stageChainRequest struct {
	Stages []stageSpecDTO `json:"stages"`
}

type stageOutcomeRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
	Rating   *int   `json:"rating,omitempty"`
}

type stageDTO struct {
	ID            string  `json:"id"`
	CandidateID   string  `json:"candidate_id"`
	StageIndex    int     `json:"stage_index"`
	StageName     string  `json:"stage_name"`
	InterviewerID *string `json:"interviewer_id,omitempty"`
	Status        string  `json:"status"`
	ScheduledAt   *string `json:"scheduled_at,omitempty"`
	CompletedAt   *string `json:"completed_at,omitempty"`
	Comments      *string `json:"comments,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
}

type stageResponse struct {
	Stage stageDTO `json:"stage"`
}

type stageListResponse struct {
	Stages []stageDTO `json:"stages"`
}

func toStageSpecInputs(specs []stageSpecDTO) []application.StageSpecInput {
	if len(specs) == 0 {
		return nil
	}
	out := make([]application.StageSpecInput, 0, len(specs))
	for _, spec := range specs {
		out = append(out, application.StageSpecInput{
			ID:            spec.ID,
			StageName:     spec.StageName,
			InterviewerID: spec.InterviewerID,
		})
	}
	return out
}

func toStageDTO(stage persistence.InterviewStage) stageDTO {
	return stageDTO{
		ID:            stage.ID,
		CandidateID:   stage.CandidateID,
		StageIndex:    stage.StageIndex,
		StageName:     stage.StageName,
		InterviewerID: stage.InterviewerID,
		Status:        stage.Status,
		ScheduledAt:   formatOptionalTime(stage.ScheduledAt),
		CompletedAt:   formatOptionalTime(stage.CompletedAt),
		Comments:      stage.Comments,
		Rating:        stage.Rating,
	}
}

func toStageDTOs(stages []persistence.InterviewStage) []stageDTO {
	out := make([]stageDTO, 0, len(stages))
	for _, stage := range stages {
		out = append(out, toStageDTO(stage))
	}
	return out
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
