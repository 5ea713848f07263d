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

// ChainStageStore captures the persistence interactions the synchronizer needs.
type ChainStageStore interface {
	ListLiveStages(ctx context.Context, candidateID, workspaceID string) ([]persistence.InterviewStage, error)
	SyncChain(ctx context.Context, sync persistence.ChainSync) error
}

// CandidateReader exposes candidate lookup operations.
type CandidateReader interface {
	GetCandidate(ctx context.Context, id, workspaceID string) (persistence.Candidate, error)
}

// ChainService reconciles a candidate's declared stage chain against stored
// stages: creates, updates in place, and tombstones as needed, atomically.
type ChainService struct {
	stages      ChainStageStore
	candidates  CandidateReader
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewChainService wires dependencies for stage chain synchronization.
func NewChainService(stages ChainStageStore, candidates CandidateReader, idGenerator func() string, now func() time.Time) *ChainService {
	return NewChainServiceWithLogger(stages, candidates, idGenerator, now, nil)
}

// NewChainServiceWithLogger constructs a chain service with a specified logger.
func NewChainServiceWithLogger(stages ChainStageStore, candidates CandidateReader, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ChainService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ChainService{
		stages:      stages,
		candidates:  candidates,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ChainService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ChainService", operation, attrs...)
}

// SyncStageChain reconciles the submitted chain with stored live stages and
// returns the resulting chain in stage order. The edit is all-or-nothing: a
// failure leaves the prior chain intact. Entries referencing unknown or
// duplicated stage IDs, or carrying blank names, are rejected before any
// mutation.
func (s *ChainService) SyncStageChain(ctx context.Context, params SyncStageChainParams) (result []persistence.InterviewStage, err error) {
	if s == nil {
		return nil, fmt.Errorf("ChainService is nil")
	}
	if s.stages == nil {
		return nil, fmt.Errorf("stage store not configured")
	}

	logger := s.loggerWith(ctx, "SyncStageChain",
		"candidate_id", params.CandidateID,
		"submitted_stages", len(params.Stages),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to sync stage chain", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "stage chain synced", "live_stages", len(result))
	}()

	if s.candidates != nil {
		if _, err = s.candidates.GetCandidate(ctx, params.CandidateID, params.Scope.WorkspaceID); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	existing, err := s.stages.ListLiveStages(ctx, params.CandidateID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if vErr := validateStageSpecs(params.Stages, existing); vErr.HasErrors() {
		err = vErr
		return
	}

	plan := pipeline.BuildChainPlan(params.CandidateID, toChainStages(existing), toStageSpecs(params.Stages))
	if !plan.Empty() {
		if err = s.stages.SyncChain(ctx, s.resolvePlan(plan)); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	result, err = s.stages.ListLiveStages(ctx, params.CandidateID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// resolvePlan turns the pure diff into fully populated rows: new stages get
// generated IDs, the waiting status, and creation timestamps.
func (s *ChainService) resolvePlan(plan pipeline.ChainPlan) persistence.ChainSync {
	now := s.now()

	sync := persistence.ChainSync{
		CandidateID:    plan.CandidateID,
		RemoveStageIDs: plan.RemoveStageIDs,
		Now:            now,
	}

	for _, update := range plan.Updates {
		sync.Updates = append(sync.Updates, persistence.ChainStageUpdate{
			ID:            update.ID,
			StageIndex:    update.StageIndex,
			StageName:     update.StageName,
			InterviewerID: update.InterviewerID,
		})
	}

	for _, create := range plan.Creates {
		sync.Creates = append(sync.Creates, persistence.InterviewStage{
			ID:            s.idGenerator(),
			CandidateID:   plan.CandidateID,
			StageIndex:    create.StageIndex,
			StageName:     create.StageName,
			InterviewerID: create.InterviewerID,
			Status:        pipeline.StageStatusWaiting,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return sync
}

func validateStageSpecs(specs []StageSpecInput, existing []persistence.InterviewStage) *ValidationError {
	vErr := &ValidationError{}

	live := make(map[string]struct{}, len(existing))
	for _, stage := range existing {
		live[stage.ID] = struct{}{}
	}

	seen := make(map[string]int, len(specs))
	for i, spec := range specs {
		field := fmt.Sprintf("stages[%d]", i)

		if strings.TrimSpace(spec.StageName) == "" {
			vErr.add(field+".stage_name", "stage name is required")
		}
		if spec.ID == "" {
			continue
		}
		if first, dup := seen[spec.ID]; dup {
			vErr.add(field+".id", fmt.Sprintf("duplicates stage id at position %d", first))
			continue
		}
		seen[spec.ID] = i
		if _, ok := live[spec.ID]; !ok {
			vErr.add(field+".id", "references an unknown stage")
		}
	}

	return vErr
}

func toChainStages(stages []persistence.InterviewStage) []pipeline.ChainStage {
	out := make([]pipeline.ChainStage, 0, len(stages))
	for _, stage := range stages {
		out = append(out, pipeline.ChainStage{
			ID:            stage.ID,
			StageIndex:    stage.StageIndex,
			StageName:     stage.StageName,
			InterviewerID: stage.InterviewerID,
			Status:        stage.Status,
		})
	}
	return out
}

func toStageSpecs(specs []StageSpecInput) []pipeline.StageSpec {
	out := make([]pipeline.StageSpec, 0, len(specs))
	for _, spec := range specs {
		out = append(out, pipeline.StageSpec{
			ID:            spec.ID,
			StageName:     strings.TrimSpace(spec.StageName),
			InterviewerID: spec.InterviewerID,
		})
	}
	return out
}
