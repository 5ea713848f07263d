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

type candidateService interface {
	CreateCandidate(ctx context.Context, params application.CreateCandidateParams) (application.CandidateDetail, error)
	GetCandidate(ctx context.Context, params application.CandidateActionParams) (application.CandidateDetail, error)
	ListCandidates(ctx context.Context, params application.ListCandidatesParams) ([]persistence.Candidate, error)
	MarkHired(ctx context.Context, params application.CandidateActionParams) (persistence.Candidate, error)
	MarkDismissed(ctx context.Context, params application.CandidateActionParams) (persistence.Candidate, error)
	ArchiveCandidate(ctx context.Context, params application.CandidateActionParams) error
}

type CandidateHandler struct {
	service   candidateService
	responder responder
	logger    *slog.Logger
}

func NewCandidateHandler(service candidateService, logger *slog.Logger) *CandidateHandler {
	base := defaultLogger(logger)
	return &CandidateHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CandidateHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CandidateHandler", operation, attrs...)
}

func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req candidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode candidate request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "email", req.Email)

	detail, err := h.service.CreateCandidate(r.Context(), application.CreateCandidateParams{
		Scope: ScopeFromContext(r.Context()),
		Input: application.CandidateInput{
			Name:     req.Name,
			Email:    req.Email,
			Position: req.Position,
		},
		Stages: toStageSpecInputs(req.Stages),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "candidate creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("candidate_id", detail.Candidate.ID).InfoContext(r.Context(), "candidate created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCandidateDetailDTO(detail))
}

func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCandidateID)
		return
	}

	detail, err := h.service.GetCandidate(r.Context(), application.CandidateActionParams{
		Scope:       ScopeFromContext(r.Context()),
		CandidateID: candidateID,
	})
	if err != nil {
		h.log(r.Context(), "Get", "candidate_id", candidateID).ErrorContext(r.Context(), "candidate lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCandidateDetailDTO(detail))
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidates, err := h.service.ListCandidates(r.Context(), application.ListCandidatesParams{
		Scope:  ScopeFromContext(r.Context()),
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "candidate listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]candidateDTO, 0, len(candidates))
	for _, candidate := range candidates {
		dtos = append(dtos, toCandidateDTO(candidate))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, candidateListResponse{Candidates: dtos})
}

func (h *CandidateHandler) Hire(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, "Hire", func(ctx context.Context, params application.CandidateActionParams) (persistence.Candidate, error) {
		return h.service.MarkHired(ctx, params)
	})
}

func (h *CandidateHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, "Dismiss", func(ctx context.Context, params application.CandidateActionParams) (persistence.Candidate, error) {
		return h.service.MarkDismissed(ctx, params)
	})
}

func (h *CandidateHandler) statusAction(w http.ResponseWriter, r *http.Request, operation string, action func(context.Context, application.CandidateActionParams) (persistence.Candidate, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCandidateID)
		return
	}

	logger := h.log(r.Context(), operation, "candidate_id", candidateID)

	candidate, err := action(r.Context(), application.CandidateActionParams{
		Scope:       ScopeFromContext(r.Context()),
		CandidateID: candidateID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "candidate status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "candidate status changed", "status", candidate.Status)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, candidateResponse{Candidate: toCandidateDTO(candidate)})
}

func (h *CandidateHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCandidateID)
		return
	}

	logger := h.log(r.Context(), "Archive", "candidate_id", candidateID)

	if err := h.service.ArchiveCandidate(r.Context(), application.CandidateActionParams{
		Scope:       ScopeFromContext(r.Context()),
		CandidateID: candidateID,
	}); err != nil {
		logger.ErrorContext(r.Context(), "candidate archival failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "candidate archived")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type candidateRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Position string         `json:"position"`
	Stages   []stageSpecDTO `json:"stages,omitempty"`
}

type candidateDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Position          string  `json:"position"`
	CurrentStageIndex int     `json:"current_stage_index"`
	Status            string  `json:"status"`
	RejectionStage    *int    `json:"rejection_stage,omitempty"`
	RejectionReason   *string `json:"rejection_reason,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type candidateResponse struct {
	Candidate candidateDTO `json:"candidate"`
}

type candidateListResponse struct {
	Candidates []candidateDTO `json:"candidates"`
}

type candidateDetailResponse struct {
	Candidate candidateDTO `json:"candidate"`
	Stages    []stageDTO   `json:"stages"`
}

func toCandidateDTO(candidate persistence.Candidate) candidateDTO {
	return candidateDTO{
		ID:                candidate.ID,
		Name:              candidate.Name,
		Email:             candidate.Email,
		Position:          candidate.Position,
		CurrentStageIndex: candidate.CurrentStageIndex,
		Status:            candidate.Status,
		RejectionStage:    candidate.RejectionStage,
		RejectionReason:   candidate.RejectionReason,
		CreatedAt:         candidate.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         candidate.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toCandidateDetailDTO(detail application.CandidateDetail) candidateDetailResponse {
	stages := make([]stageDTO, 0, len(detail.Stages))
	for _, stage := range detail.Stages {
		stages = append(stages, toStageDTO(stage))
	}
	return candidateDetailResponse{
		Candidate: toCandidateDTO(detail.Candidate),
		Stages:    stages,
	}
}
