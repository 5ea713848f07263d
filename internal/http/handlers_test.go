package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/interview-pipeline/internal/application"
	"github.com/example/interview-pipeline/internal/persistence"
	"github.com/example/interview-pipeline/internal/pipeline"
)

type candidateServiceStub struct {
	detail    application.CandidateDetail
	candidate persistence.Candidate
	list      []persistence.Candidate
	err       error

	lastScope application.Scope
}

func (s *candidateServiceStub) CreateCandidate(ctx context.Context, params application.CreateCandidateParams) (application.CandidateDetail, error) {
	s.lastScope = params.Scope
	if s.err != nil {
		return application.CandidateDetail{}, s.err
	}
	return s.detail, nil
}

func (s *candidateServiceStub) GetCandidate(ctx context.Context, params application.CandidateActionParams) (application.CandidateDetail, error) {
	s.lastScope = params.Scope
	if s.err != nil {
		return application.CandidateDetail{}, s.err
	}
	return s.detail, nil
}

func (s *candidateServiceStub) ListCandidates(ctx context.Context, params application.ListCandidatesParams) ([]persistence.Candidate, error) {
	s.lastScope = params.Scope
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *candidateServiceStub) MarkHired(ctx context.Context, params application.CandidateActionParams) (persistence.Candidate, error) {
	if s.err != nil {
		return persistence.Candidate{}, s.err
	}
	return s.candidate, nil
}

func (s *candidateServiceStub) MarkDismissed(ctx context.Context, params application.CandidateActionParams) (persistence.Candidate, error) {
	if s.err != nil {
		return persistence.Candidate{}, s.err
	}
	return s.candidate, nil
}

func (s *candidateServiceStub) ArchiveCandidate(ctx context.Context, params application.CandidateActionParams) error {
	return s.err
}

type chainServiceStub struct {
	stages []persistence.InterviewStage
	err    error

	lastParams application.SyncStageChainParams
}

func (s *chainServiceStub) SyncStageChain(ctx context.Context, params application.SyncStageChainParams) ([]persistence.InterviewStage, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.stages, nil
}

type transitionServiceStub struct {
	stage persistence.InterviewStage
	err   error
}

func (s *transitionServiceStub) RecordStageOutcome(ctx context.Context, params application.RecordStageOutcomeParams) (persistence.InterviewStage, error) {
	if s.err != nil {
		return persistence.InterviewStage{}, s.err
	}
	return s.stage, nil
}

type schedulerServiceStub struct {
	interview persistence.Interview
	err       error

	lastSchedule application.ScheduleInterviewParams
}

func (s *schedulerServiceStub) ScheduleInterview(ctx context.Context, params application.ScheduleInterviewParams) (persistence.Interview, error) {
	s.lastSchedule = params
	if s.err != nil {
		return persistence.Interview{}, s.err
	}
	return s.interview, nil
}

func (s *schedulerServiceStub) RescheduleInterview(ctx context.Context, params application.RescheduleInterviewParams) (persistence.Interview, error) {
	if s.err != nil {
		return persistence.Interview{}, s.err
	}
	return s.interview, nil
}

func (s *schedulerServiceStub) RecordInterviewOutcome(ctx context.Context, params application.RecordInterviewOutcomeParams) (persistence.Interview, error) {
	if s.err != nil {
		return persistence.Interview{}, s.err
	}
	return s.interview, nil
}

func (s *schedulerServiceStub) CompleteInterview(ctx context.Context, params application.CompleteInterviewParams) (persistence.Interview, error) {
	if s.err != nil {
		return persistence.Interview{}, s.err
	}
	return s.interview, nil
}

func (s *schedulerServiceStub) CancelInterview(ctx context.Context, params application.CancelInterviewParams) (persistence.Interview, error) {
	if s.err != nil {
		return persistence.Interview{}, s.err
	}
	return s.interview, nil
}

type notificationServiceStub struct {
	notifications []persistence.Notification
	err           error
	readID        string
}

func (s *notificationServiceStub) ListNotifications(ctx context.Context, userID string) ([]persistence.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.notifications, nil
}

func (s *notificationServiceStub) MarkRead(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.readID = id
	return nil
}

func testRouter(candidates *candidateServiceStub, chains *chainServiceStub, transitions *transitionServiceStub, scheduler *schedulerServiceStub, notifications *notificationServiceStub) http.Handler {
	cfg := RouterConfig{
		Middleware: []func(http.Handler) http.Handler{WorkspaceScope()},
	}
	if candidates != nil {
		cfg.Candidates = NewCandidateHandler(candidates, nil)
	}
	if chains != nil || transitions != nil {
		var c chainService
		var tr transitionService
		if chains != nil {
			c = chains
		}
		if transitions != nil {
			tr = transitions
		}
		cfg.Stages = NewStageHandler(c, tr, nil)
	}
	if scheduler != nil {
		cfg.Interviews = NewInterviewHandler(scheduler, nil)
	}
	if notifications != nil {
		cfg.Notifications = NewNotificationHandler(notifications, nil)
	}
	return NewRouter(cfg)
}

func TestCandidateHandlers(t *testing.T) {
	t.Run("create returns the candidate with its chain", func(t *testing.T) {
		stub := &candidateServiceStub{detail: application.CandidateDetail{
			Candidate: persistence.Candidate{ID: "cand-1", Name: "Ada", Email: "ada@example.com", Position: "Engineer", Status: pipeline.CandidateStatusActive},
			Stages:    []persistence.InterviewStage{{ID: "st-1", CandidateID: "cand-1", StageName: "Screening", Status: pipeline.StageStatusWaiting}},
		}}
		router := testRouter(stub, nil, nil, nil, nil)

		body := `{"name":"Ada","email":"ada@example.com","position":"Engineer","stages":[{"stage_name":"Screening"}]}`
		req := httptest.NewRequest(http.MethodPost, "/candidates", strings.NewReader(body))
		req.Header.Set(WorkspaceHeader, "ws-1")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if stub.lastScope.WorkspaceID != "ws-1" {
			t.Fatalf("expected workspace scope threaded through, got %q", stub.lastScope.WorkspaceID)
		}

		var resp candidateDetailResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Candidate.ID != "cand-1" || len(resp.Stages) != 1 {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("create rejects malformed bodies", func(t *testing.T) {
		router := testRouter(&candidateServiceStub{}, nil, nil, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/candidates", strings.NewReader("{not json"))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("validation errors surface as 422 with field details", func(t *testing.T) {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"email": "email is required"}}
		router := testRouter(&candidateServiceStub{err: vErr}, nil, nil, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/candidates", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Errors["email"] != "email is required" {
			t.Fatalf("expected field details, got %+v", resp)
		}
	})

	t.Run("missing candidates map to 404", func(t *testing.T) {
		router := testRouter(&candidateServiceStub{err: application.ErrNotFound}, nil, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/candidates/cand-404", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("illegal status changes map to 409", func(t *testing.T) {
		router := testRouter(&candidateServiceStub{err: &application.ConflictError{Reason: "candidate is active, expected documentation"}}, nil, nil, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/candidates/cand-1/hire", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("archive returns 204", func(t *testing.T) {
		router := testRouter(&candidateServiceStub{}, nil, nil, nil, nil)

		req := httptest.NewRequest(http.MethodDelete, "/candidates/cand-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
	})

	t.Run("unsupported methods return 405", func(t *testing.T) {
		router := testRouter(&candidateServiceStub{}, nil, nil, nil, nil)

		req := httptest.NewRequest(http.MethodPut, "/candidates", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
	})
}

func TestStageHandlers(t *testing.T) {
	t.Run("chain sync routes the candidate id from the path", func(t *testing.T) {
		chains := &chainServiceStub{stages: []persistence.InterviewStage{{ID: "st-1", StageName: "Screening"}}}
		router := testRouter(nil, chains, &transitionServiceStub{}, nil, nil)

		body := `{"stages":[{"id":"st-1","stage_name":"Screening"}]}`
		req := httptest.NewRequest(http.MethodPut, "/candidates/cand-1/stages", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			// the stages route under /candidates requires the candidate handler
			t.Fatalf("expected 404 without candidate routes, got %d", recorder.Code)
		}

		router = testRouter(&candidateServiceStub{}, chains, &transitionServiceStub{}, nil, nil)
		recorder = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPut, "/candidates/cand-1/stages", strings.NewReader(body))
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if chains.lastParams.CandidateID != "cand-1" {
			t.Fatalf("expected candidate id from path, got %q", chains.lastParams.CandidateID)
		}
	})

	t.Run("stage outcomes map terminal conflicts to 409", func(t *testing.T) {
		transitions := &transitionServiceStub{err: &application.ConflictError{Reason: `stage already has outcome "passed"`}}
		router := testRouter(nil, &chainServiceStub{}, transitions, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/stages/st-1/outcome", strings.NewReader(`{"status":"failed","comments":"no"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("stage outcomes return the updated stage", func(t *testing.T) {
		transitions := &transitionServiceStub{stage: persistence.InterviewStage{ID: "st-1", Status: pipeline.StageStatusPassed}}
		router := testRouter(nil, &chainServiceStub{}, transitions, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/stages/st-1/outcome", strings.NewReader(`{"status":"passed","comments":"strong"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp stageResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Stage.Status != pipeline.StageStatusPassed {
			t.Fatalf("unexpected stage: %+v", resp.Stage)
		}
	})
}

func TestInterviewHandlers(t *testing.T) {
	scheduledAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("scheduling conflicts carry the conflicting window", func(t *testing.T) {
		scheduler := &schedulerServiceStub{err: &application.ConflictError{
			InterviewerID:    "user-1",
			WithInterviewID:  "iv-1",
			ConflictingStart: scheduledAt,
			ConflictingEnd:   scheduledAt.Add(30 * time.Minute),
		}}
		router := testRouter(nil, nil, nil, scheduler, nil)

		body := `{"stage_id":"st-1","interviewer_id":"user-1","scheduled_at":"2025-06-02T10:15:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/interviews", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ErrorCode != "SCHEDULING_CONFLICT" || resp.Conflict == nil {
			t.Fatalf("expected conflict detail, got %+v", resp)
		}
		if resp.Conflict.WithInterviewID != "iv-1" || resp.Conflict.Start != "2025-06-02T10:00:00Z" {
			t.Fatalf("unexpected conflict detail: %+v", resp.Conflict)
		}
	})

	t.Run("scheduling returns the booked interview", func(t *testing.T) {
		scheduler := &schedulerServiceStub{interview: persistence.Interview{
			ID:              "iv-9",
			StageID:         "st-1",
			InterviewerID:   "user-1",
			ScheduledAt:     scheduledAt,
			DurationMinutes: 30,
			Status:          pipeline.InterviewStatusScheduled,
		}}
		router := testRouter(nil, nil, nil, scheduler, nil)

		body := `{"stage_id":"st-1","interviewer_id":"user-1","scheduled_at":"2025-06-02T10:00:00Z","duration_minutes":30}`
		req := httptest.NewRequest(http.MethodPost, "/interviews", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if !scheduler.lastSchedule.ScheduledAt.Equal(scheduledAt) {
			t.Fatalf("expected parsed time, got %v", scheduler.lastSchedule.ScheduledAt)
		}
		var resp interviewResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Interview.ID != "iv-9" || resp.Interview.ScheduledAt != "2025-06-02T10:00:00Z" {
			t.Fatalf("unexpected interview: %+v", resp.Interview)
		}
	})

	t.Run("concurrency failures map to 503", func(t *testing.T) {
		scheduler := &schedulerServiceStub{err: application.ErrConcurrency}
		router := testRouter(nil, nil, nil, scheduler, nil)

		req := httptest.NewRequest(http.MethodPost, "/interviews/iv-1/cancel", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", recorder.Code)
		}
	})

	t.Run("unknown interview actions fall through to 404", func(t *testing.T) {
		router := testRouter(nil, nil, nil, &schedulerServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/interviews/iv-1/promote", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestNotificationHandlers(t *testing.T) {
	t.Run("listing requires a user id", func(t *testing.T) {
		router := testRouter(nil, nil, nil, nil, &notificationServiceStub{})

		req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("lists a user's notifications", func(t *testing.T) {
		stub := &notificationServiceStub{notifications: []persistence.Notification{{
			ID:     "nt-1",
			UserID: "user-1",
			Type:   "stage_advanced",
		}}}
		router := testRouter(nil, nil, nil, nil, stub)

		req := httptest.NewRequest(http.MethodGet, "/notifications?user_id=user-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp notificationListResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Notifications) != 1 || resp.Notifications[0].ID != "nt-1" {
			t.Fatalf("unexpected notifications: %+v", resp.Notifications)
		}
	})

	t.Run("marks a notification read", func(t *testing.T) {
		stub := &notificationServiceStub{}
		router := testRouter(nil, nil, nil, nil, stub)

		req := httptest.NewRequest(http.MethodPost, "/notifications/nt-1/read", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if stub.readID != "nt-1" {
			t.Fatalf("expected nt-1 marked read, got %q", stub.readID)
		}
	})
}
