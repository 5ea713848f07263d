package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
	"github.com/example/interview-pipeline/internal/pipeline"
)

// TransitionStageStore captures the persistence interactions the transition
// engine needs.
type TransitionStageStore interface {
	GetStage(ctx context.Context, id, workspaceID string) (persistence.InterviewStage, error)
	GetStageAtIndex(ctx context.Context, candidateID string, index int) (persistence.InterviewStage, error)
	ApplyTransition(ctx context.Context, transition persistence.StageTransition) (persistence.InterviewStage, error)
}

// TransitionService records stage outcomes and moves candidates through their
// chain: a pass advances the pipeline pointer, a fail rejects the candidate.
type TransitionService struct {
	stages     TransitionStageStore
	candidates CandidateReader
	notifier   Notifier
	now        func() time.Time
	logger     *slog.Logger
}

// NewTransitionService wires dependencies for the stage transition engine.
func NewTransitionService(stages TransitionStageStore, candidates CandidateReader, notifier Notifier, now func() time.Time) *TransitionService {
	return NewTransitionServiceWithLogger(stages, candidates, notifier, now, nil)
}

// NewTransitionServiceWithLogger constructs a transition service with a
// specified logger.
func NewTransitionServiceWithLogger(stages TransitionStageStore, candidates CandidateReader, notifier Notifier, now func() time.Time, logger *slog.Logger) *TransitionService {
	if now == nil {
		now = time.Now
	}
	return &TransitionService{
		stages:     stages,
		candidates: candidates,
		notifier:   notifier,
		now:        now,
		logger:     defaultLogger(logger),
	}
}

func (s *TransitionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TransitionService", operation, attrs...)
}

// RecordStageOutcome marks a stage passed or failed and applies the resulting
// candidate change atomically. Re-recording an outcome on a stage that is
// already terminal is rejected as a conflict; audit history is corrected by
// editing the chain, not by overwriting outcomes. When a pass lands the
// candidate on a stage with an assigned interviewer, that interviewer is
// notified after the commit.
func (s *TransitionService) RecordStageOutcome(ctx context.Context, params RecordStageOutcomeParams) (result persistence.InterviewStage, err error) {
	if s == nil {
		return persistence.InterviewStage{}, fmt.Errorf("TransitionService is nil")
	}
	if s.stages == nil {
		return persistence.InterviewStage{}, fmt.Errorf("stage store not configured")
	}

	logger := s.loggerWith(ctx, "RecordStageOutcome",
		"stage_id", params.StageID,
		"status", params.Status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to record stage outcome", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "stage outcome recorded", "candidate_id", result.CandidateID)
	}()

	comments := strings.TrimSpace(params.Comments)
	if vErr := validateOutcome(params.Status, comments, params.Rating); vErr.HasErrors() {
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
		params.Status,
		comments,
		params.Rating,
		s.now(),
	)

	result, err = s.stages.ApplyTransition(ctx, toStageTransition(effect, s.now()))
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if effect.Notice != nil {
		notify(ctx, s.notifier, logger, advanceNotification(*effect.Notice, stage.CandidateID))
	}
	return
}

// nextLiveStage resolves the live stage following the completed one; absence
// is not an error, it means the chain ends here.
func nextLiveStage(ctx context.Context, stages TransitionStageStore, stage persistence.InterviewStage) (*pipeline.NextStage, error) {
	following, err := stages.GetStageAtIndex(ctx, stage.CandidateID, stage.StageIndex+1)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, mapRepoError(err)
	}
	return &pipeline.NextStage{
		ID:            following.ID,
		StageIndex:    following.StageIndex,
		StageName:     following.StageName,
		InterviewerID: following.InterviewerID,
	}, nil
}

func validateOutcome(status, comments string, rating *int) *ValidationError {
	vErr := &ValidationError{}
	if status != pipeline.StageStatusPassed && status != pipeline.StageStatusFailed {
		vErr.add("status", "must be passed or failed")
	}
	if comments == "" {
		vErr.add("comments", "feedback comments are required")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		vErr.add("rating", "must be between 1 and 5")
	}
	return vErr
}

func toStageTransition(effect pipeline.TransitionEffect, now time.Time) persistence.StageTransition {
	transition := persistence.StageTransition{
		StageID:     effect.Stage.StageID,
		StageStatus: effect.Stage.Status,
		CompletedAt: effect.Stage.CompletedAt,
		Rating:      effect.Stage.Rating,

		CandidateID:       effect.Candidate.CandidateID,
		CurrentStageIndex: effect.Candidate.CurrentStageIndex,
		CandidateStatus:   effect.Candidate.Status,
		RejectionStage:    effect.Candidate.RejectionStage,
		RejectionReason:   effect.Candidate.RejectionReason,

		Now: now,
	}
	if effect.Stage.Comments != "" {
		comments := effect.Stage.Comments
		transition.Comments = &comments
	}
	return transition
}

func advanceNotification(notice pipeline.AdvanceNotice, candidateID string) Notification {
	return Notification{
		UserID:            notice.InterviewerID,
		Type:              NotificationTypeStageAdvanced,
		Title:             "Candidate advanced to your stage",
		Message:           fmt.Sprintf("A candidate reached stage %d (%s) and is ready to be scheduled.", notice.StageIndex, notice.StageName),
		RelatedEntityType: "candidate",
		RelatedEntityID:   candidateID,
	}
}
