package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
	"github.com/example/interview-pipeline/internal/pipeline"
)

// InterviewStore captures the persistence interactions the scheduler needs.
type InterviewStore interface {
	GetInterview(ctx context.Context, id, workspaceID string) (persistence.Interview, error)
	ListInterviewerDay(ctx context.Context, interviewerID string, day time.Time) ([]persistence.Interview, error)
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	Rebook(ctx context.Context, rebooking persistence.Rebooking) error
	RecordOutcome(ctx context.Context, interviewID, outcome string, notes *string, now time.Time) (persistence.Interview, error)
	Cancel(ctx context.Context, cancellation persistence.Cancellation) (persistence.Interview, error)
	CompleteBooking(ctx context.Context, interviewID, outcome string, notes *string, transition persistence.StageTransition) (persistence.Interview, error)
}

// SchedulerService books interview slots with a no-double-booking guarantee:
// for a given interviewer, committed interviews never overlap in time. The
// guarantee holds within one process; the conflict check and the insert run
// under a per-interviewer lock.
type SchedulerService struct {
	interviews      InterviewStore
	stages          TransitionStageStore
	candidates      CandidateReader
	notifier        Notifier
	locks           *interviewerLocks
	lockWait        time.Duration
	defaultDuration int
	idGenerator     func() string
	now             func() time.Time
	logger          *slog.Logger
}

// NewSchedulerService wires dependencies for interview scheduling.
func NewSchedulerService(interviews InterviewStore, stages TransitionStageStore, candidates CandidateReader, notifier Notifier, idGenerator func() string, now func() time.Time) *SchedulerService {
	return NewSchedulerServiceWithLogger(interviews, stages, candidates, notifier, idGenerator, now, nil)
}

// NewSchedulerServiceWithLogger constructs a scheduler with a specified logger.
func NewSchedulerServiceWithLogger(interviews InterviewStore, stages TransitionStageStore, candidates CandidateReader, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SchedulerService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SchedulerService{
		interviews:      interviews,
		stages:          stages,
		candidates:      candidates,
		notifier:        notifier,
		locks:           newInterviewerLocks(),
		defaultDuration: pipeline.DefaultDurationMinutes,
		idGenerator:     idGenerator,
		now:             now,
		logger:          defaultLogger(logger),
	}
}

// SetLockWaitTimeout bounds how long a scheduling call may wait for the
// interviewer's lock. Zero means wait as long as the request context allows.
func (s *SchedulerService) SetLockWaitTimeout(d time.Duration) {
	s.lockWait = d
}

// SetDefaultDuration overrides the slot length applied when a request omits
// the duration.
func (s *SchedulerService) SetDefaultDuration(minutes int) {
	if minutes > 0 {
		s.defaultDuration = minutes
	}
}

func (s *SchedulerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SchedulerService", operation, attrs...)
}

// lockInterviewer serializes conflict checking and booking per interviewer.
func (s *SchedulerService) lockInterviewer(ctx context.Context, interviewerID string) (func(), error) {
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}
	release, err := s.locks.Acquire(ctx, interviewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for interviewer lock: %v", ErrConcurrency, err)
	}
	return release, nil
}

// findConflict checks the proposed slot against the interviewer's committed
// bookings on the same calendar day. excludeInterviewID lets reschedules skip
// the interview being moved.
func (s *SchedulerService) findConflict(ctx context.Context, interviewerID, excludeInterviewID string, scheduledAt time.Time, durationMinutes int) error {
	sameDay, err := s.interviews.ListInterviewerDay(ctx, interviewerID, scheduledAt)
	if err != nil {
		return mapRepoError(err)
	}

	existing := make([]pipeline.Booking, 0, len(sameDay))
	for _, interview := range sameDay {
		existing = append(existing, pipeline.Booking{
			InterviewID:     interview.ID,
			InterviewerID:   interview.InterviewerID,
			Start:           interview.ScheduledAt,
			DurationMinutes: interview.DurationMinutes,
		})
	}

	conflict := pipeline.FindConflict(existing, pipeline.Booking{
		InterviewID:     excludeInterviewID,
		InterviewerID:   interviewerID,
		Start:           scheduledAt,
		DurationMinutes: durationMinutes,
	})
	if conflict == nil {
		return nil
	}
	return &ConflictError{
		InterviewerID:    conflict.InterviewerID,
		WithInterviewID:  conflict.WithInterviewID,
		ConflictingStart: conflict.Start,
		ConflictingEnd:   conflict.End,
	}
}

// ScheduleInterview books a slot for a stage and moves the stage into
// in_progress. The slot is rejected with a conflict error when it overlaps
// any committed booking of the same interviewer.
func (s *SchedulerService) ScheduleInterview(ctx context.Context, params ScheduleInterviewParams) (result persistence.Interview, err error) {
	if s == nil {
		return persistence.Interview{}, fmt.Errorf("SchedulerService is nil")
	}
	if s.interviews == nil || s.stages == nil {
		return persistence.Interview{}, fmt.Errorf("interview store not configured")
	}

	logger := s.loggerWith(ctx, "ScheduleInterview",
		"stage_id", params.StageID,
		"interviewer_id", params.InterviewerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to schedule interview", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "interview scheduled", "interview_id", result.ID, "scheduled_at", result.ScheduledAt)
	}()

	if vErr := validateSlot(params.InterviewerID, params.ScheduledAt, params.DurationMinutes); vErr.HasErrors() {
		err = vErr
		return
	}

	stage, err := s.stages.GetStage(ctx, params.StageID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if pipeline.StageStatusTerminal(stage.Status) {
		err = &ConflictError{Reason: fmt.Sprintf("stage already has outcome %q", stage.Status)}
		return
	}

	duration := params.DurationMinutes
	if duration == 0 {
		duration = s.defaultDuration
	}
	scheduledAt := params.ScheduledAt.UTC()

	release, err := s.lockInterviewer(ctx, params.InterviewerID)
	if err != nil {
		return
	}
	defer release()

	if err = s.findConflict(ctx, params.InterviewerID, "", scheduledAt, duration); err != nil {
		return
	}

	now := s.now()
	interview := persistence.Interview{
		ID:              s.idGenerator(),
		StageID:         stage.ID,
		CandidateID:     stage.CandidateID,
		InterviewerID:   params.InterviewerID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Status:          pipeline.InterviewStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err = s.interviews.CreateBooking(ctx, persistence.Booking{
		Interview: interview,
		StageID:   stage.ID,
		Now:       now,
	}); err != nil {
		err = mapRepoError(err)
		return
	}

	notify(ctx, s.notifier, logger, Notification{
		UserID:            params.InterviewerID,
		Type:              NotificationTypeInterviewScheduled,
		Title:             "Interview scheduled",
		Message:           fmt.Sprintf("An interview for stage %q was scheduled at %s.", stage.StageName, scheduledAt.Format(time.RFC3339)),
		RelatedEntityType: "interview",
		RelatedEntityID:   interview.ID,
	})

	result = interview
	return
}

// RescheduleInterview moves a booked slot to a new time. The conflict check
// runs again and ignores the interview being moved, so shifting a slot within
// its own window succeeds.
func (s *SchedulerService) RescheduleInterview(ctx context.Context, params RescheduleInterviewParams) (result persistence.Interview, err error) {
	if s == nil {
		return persistence.Interview{}, fmt.Errorf("SchedulerService is nil")
	}
	if s.interviews == nil {
		return persistence.Interview{}, fmt.Errorf("interview store not configured")
	}

	logger := s.loggerWith(ctx, "RescheduleInterview", "interview_id", params.InterviewID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule interview", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "interview rescheduled", "scheduled_at", result.ScheduledAt)
	}()

	if params.ScheduledAt.IsZero() {
		vErr := &ValidationError{}
		vErr.add("scheduled_at", "a scheduled time is required")
		err = vErr
		return
	}
	if params.DurationMinutes < 0 {
		vErr := &ValidationError{}
		vErr.add("duration_minutes", "must not be negative")
		err = vErr
		return
	}

	interview, err := s.interviews.GetInterview(ctx, params.InterviewID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if interview.Status == pipeline.InterviewStatusCancelled || interview.Status == pipeline.InterviewStatusCompleted {
		err = &ConflictError{Reason: fmt.Sprintf("interview is %s and cannot be moved", interview.Status)}
		return
	}

	duration := params.DurationMinutes
	if duration == 0 {
		duration = interview.DurationMinutes
	}
	if duration == 0 {
		duration = s.defaultDuration
	}
	scheduledAt := params.ScheduledAt.UTC()

	release, err := s.lockInterviewer(ctx, interview.InterviewerID)
	if err != nil {
		return
	}
	defer release()

	if err = s.findConflict(ctx, interview.InterviewerID, interview.ID, scheduledAt, duration); err != nil {
		return
	}

	now := s.now()
	if err = s.interviews.Rebook(ctx, persistence.Rebooking{
		InterviewID:     interview.ID,
		StageID:         interview.StageID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Now:             now,
	}); err != nil {
		err = mapRepoError(err)
		return
	}

	interview.ScheduledAt = scheduledAt
	interview.DurationMinutes = duration
	interview.Status = pipeline.InterviewStatusRescheduled
	interview.UpdatedAt = now
	result = interview
	return
}

// RecordInterviewOutcome marks a single interview completed with an outcome,
// without touching the owning stage. Pending outcomes are allowed here; the
// stage transition happens later through the transition engine or
// CompleteInterview.
func (s *SchedulerService) RecordInterviewOutcome(ctx context.Context, params RecordInterviewOutcomeParams) (result persistence.Interview, err error) {
	if s == nil {
		return persistence.Interview{}, fmt.Errorf("SchedulerService is nil")
	}
	if s.interviews == nil {
		return persistence.Interview{}, fmt.Errorf("interview store not configured")
	}

	logger := s.loggerWith(ctx, "RecordInterviewOutcome",
		"interview_id", params.InterviewID,
		"outcome", params.Outcome,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to record interview outcome", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "interview outcome recorded")
	}()

	if !pipeline.ValidOutcome(params.Outcome) {
		vErr := &ValidationError{}
		vErr.add("outcome", "must be passed, failed, or pending")
		err = vErr
		return
	}

	interview, err := s.interviews.GetInterview(ctx, params.InterviewID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if interview.Status == pipeline.InterviewStatusCancelled {
		err = &ConflictError{Reason: "interview is cancelled"}
		return
	}

	result, err = s.interviews.RecordOutcome(ctx, interview.ID, params.Outcome, optionalText(params.Notes), s.now())
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// CompleteInterview records the interview outcome and drives the owning
// stage's transition in one transaction: a passed interview passes the stage
// and advances the candidate, a failed one rejects.
func (s *SchedulerService) CompleteInterview(ctx context.Context, params CompleteInterviewParams) (result persistence.Interview, err error) {
	if s == nil {
		return persistence.Interview{}, fmt.Errorf("SchedulerService is nil")
	}
	if s.interviews == nil || s.stages == nil {
		return persistence.Interview{}, fmt.Errorf("interview store not configured")
	}

	logger := s.loggerWith(ctx, "CompleteInterview",
		"interview_id", params.InterviewID,
		"outcome", params.Outcome,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to complete interview", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "interview completed", "stage_id", result.StageID)
	}()

	notes := strings.TrimSpace(params.Notes)
	if vErr := validateOutcome(params.Outcome, notes, params.Rating); vErr.HasErrors() {
		err = vErr
		return
	}

	interview, err := s.interviews.GetInterview(ctx, params.InterviewID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if interview.Status == pipeline.InterviewStatusCancelled || interview.Status == pipeline.InterviewStatusCompleted {
		err = &ConflictError{Reason: fmt.Sprintf("interview is already %s", interview.Status)}
		return
	}

	stage, err := s.stages.GetStage(ctx, interview.StageID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if pipeline.StageStatusTerminal(stage.Status) {
		err = &ConflictError{Reason: fmt.Sprintf("stage already has outcome %q", stage.Status)}
		return
	}

	var candidate persistence.Candidate
	if s.candidates != nil {
		candidate, err = s.candidates.GetCandidate(ctx, stage.CandidateID, params.Scope.WorkspaceID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	next, err := nextLiveStage(ctx, s.stages, stage)
	if err != nil {
		return
	}

	effect := pipeline.BuildTransition(
		pipeline.OutcomeStage{
			ID:          stage.ID,
			CandidateID: stage.CandidateID,
			StageIndex:  stage.StageIndex,
			Status:      stage.Status,
		},
		pipeline.CandidateChange{
			CandidateID:       stage.CandidateID,
			CurrentStageIndex: candidate.CurrentStageIndex,
			Status:            candidate.Status,
			RejectionStage:    candidate.RejectionStage,
			RejectionReason:   candidate.RejectionReason,
		},
		next,
		params.Outcome,
		notes,
		params.Rating,
		s.now(),
	)

	result, err = s.interviews.CompleteBooking(ctx, interview.ID, params.Outcome, optionalText(notes), toStageTransition(effect, s.now()))
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if effect.Notice != nil {
		notify(ctx, s.notifier, logger, advanceNotification(*effect.Notice, stage.CandidateID))
	}
	return
}

// CancelInterview voids a booked slot and returns the owning stage to the
// waiting state when it had not progressed past in_progress.
func (s *SchedulerService) CancelInterview(ctx context.Context, params CancelInterviewParams) (result persistence.Interview, err error) {
	if s == nil {
		return persistence.Interview{}, fmt.Errorf("SchedulerService is nil")
	}
	if s.interviews == nil {
		return persistence.Interview{}, fmt.Errorf("interview store not configured")
	}

	logger := s.loggerWith(ctx, "CancelInterview", "interview_id", params.InterviewID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel interview", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "interview cancelled")
	}()

	interview, err := s.interviews.GetInterview(ctx, params.InterviewID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	switch interview.Status {
	case pipeline.InterviewStatusCancelled:
		err = &ConflictError{Reason: "interview is already cancelled"}
		return
	case pipeline.InterviewStatusCompleted:
		err = &ConflictError{Reason: "interview is completed and cannot be cancelled"}
		return
	}

	result, err = s.interviews.Cancel(ctx, persistence.Cancellation{
		InterviewID: interview.ID,
		StageID:     interview.StageID,
		Now:         s.now(),
	})
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

func validateSlot(interviewerID string, scheduledAt time.Time, durationMinutes int) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(interviewerID) == "" {
		vErr.add("interviewer_id", "an interviewer is required")
	}
	if scheduledAt.IsZero() {
		vErr.add("scheduled_at", "a scheduled time is required")
	}
	if durationMinutes < 0 {
		vErr.add("duration_minutes", "must not be negative")
	}
	return vErr
}

func optionalText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
