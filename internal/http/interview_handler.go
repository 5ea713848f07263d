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

type schedulerService interface {
	ScheduleInterview(ctx context.Context, params application.ScheduleInterviewParams) (persistence.Interview, error)
	RescheduleInterview(ctx context.Context, params application.RescheduleInterviewParams) (persistence.Interview, error)
	RecordInterviewOutcome(ctx context.Context, params application.RecordInterviewOutcomeParams) (persistence.Interview, error)
	CompleteInterview(ctx context.Context, params application.CompleteInterviewParams) (persistence.Interview, error)
	CancelInterview(ctx context.Context, params application.CancelInterviewParams) (persistence.Interview, error)
}

type InterviewHandler struct {
	service   schedulerService
	responder responder
	logger    *slog.Logger
}

func NewInterviewHandler(service schedulerService, logger *slog.Logger) *InterviewHandler {
	base := defaultLogger(logger)
	return &InterviewHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *InterviewHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InterviewHandler", operation, attrs...)
}

func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Schedule", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode schedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Schedule", "stage_id", req.StageID, "interviewer_id", req.InterviewerID)

	interview, err := h.service.ScheduleInterview(r.Context(), application.ScheduleInterviewParams{
		Scope:           ScopeFromContext(r.Context()),
		StageID:         req.StageID,
		InterviewerID:   req.InterviewerID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "interview scheduling failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("interview_id", interview.ID).InfoContext(r.Context(), "interview scheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, interviewResponse{Interview: toInterviewDTO(interview)})
}

func (h *InterviewHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	interviewID, ok := InterviewIDFromContext(r.Context())
	if !ok || strings.TrimSpace(interviewID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInterviewID)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Reschedule", "interview_id", interviewID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reschedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Reschedule", "interview_id", interviewID)

	interview, err := h.service.RescheduleInterview(r.Context(), application.RescheduleInterviewParams{
		Scope:           ScopeFromContext(r.Context()),
		InterviewID:     interviewID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "interview reschedule failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "interview rescheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, interviewResponse{Interview: toInterviewDTO(interview)})
}

func (h *InterviewHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	interviewID, ok := InterviewIDFromContext(r.Context())
	if !ok || strings.TrimSpace(interviewID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInterviewID)
		return
	}

	var req interviewOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Outcome", "interview_id", interviewID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode outcome request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Outcome", "interview_id", interviewID, "outcome", req.Outcome)

	interview, err := h.service.RecordInterviewOutcome(r.Context(), application.RecordInterviewOutcomeParams{
		Scope:       ScopeFromContext(r.Context()),
		InterviewID: interviewID,
		Outcome:     req.Outcome,
		Notes:       req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "interview outcome failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "interview outcome recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, interviewResponse{Interview: toInterviewDTO(interview)})
}

func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	interviewID, ok := InterviewIDFromContext(r.Context())
	if !ok || strings.TrimSpace(interviewID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInterviewID)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Complete", "interview_id", interviewID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode completion request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Complete", "interview_id", interviewID, "outcome", req.Outcome)

	interview, err := h.service.CompleteInterview(r.Context(), application.CompleteInterviewParams{
		Scope:       ScopeFromContext(r.Context()),
		InterviewID: interviewID,
		Outcome:     req.Outcome,
		Notes:       req.Notes,
		Rating:      req.Rating,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "interview completion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "interview completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, interviewResponse{Interview: toInterviewDTO(interview)})
}

func (h *InterviewHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	interviewID, ok := InterviewIDFromContext(r.Context())
	if !ok || strings.TrimSpace(interviewID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInterviewID)
		return
	}

	logger := h.log(r.Context(), "Cancel", "interview_id", interviewID)

	interview, err := h.service.CancelInterview(r.Context(), application.CancelInterviewParams{
		Scope:       ScopeFromContext(r.Context()),
		InterviewID: interviewID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "interview cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "interview cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, interviewResponse{Interview: toInterviewDTO(interview)})
}

type scheduleRequest struct {
	StageID         string    `json:"stage_id"`
	InterviewerID   string    `json:"interviewer_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
}

type rescheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
}

type interviewOutcomeRequest struct {
	Outcome string `json:"outcome"`
	Notes   string `json:"notes,omitempty"`
}

type completeRequest struct {
	Outcome string `json:"outcome"`
	Notes   string `json:"notes,omitempty"`
	Rating  *int   `json:"rating,omitempty"`
}

type interviewDTO struct {
	ID              string  `json:"id"`
	StageID         string  `json:"stage_id"`
	CandidateID     string  `json:"candidate_id"`
	InterviewerID   string  `json:"interviewer_id"`
	ScheduledAt     string  `json:"scheduled_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	Outcome         *string `json:"outcome,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type interviewResponse struct {
	Interview interviewDTO `json:"interview"`
}

func toInterviewDTO(interview persistence.Interview) interviewDTO {
	return interviewDTO{
		ID:              interview.ID,
		StageID:         interview.StageID,
		CandidateID:     interview.CandidateID,
		InterviewerID:   interview.InterviewerID,
		ScheduledAt:     interview.ScheduledAt.UTC().Format(time.RFC3339),
		DurationMinutes: interview.DurationMinutes,
		Status:          interview.Status,
		Outcome:         interview.Outcome,
		Notes:           interview.Notes,
	}
}
