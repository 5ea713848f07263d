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

// CandidateStore captures the persistence interactions candidate management
// needs.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, candidate persistence.Candidate) error
	GetCandidate(ctx context.Context, id, workspaceID string) (persistence.Candidate, error)
	UpdateCandidate(ctx context.Context, candidate persistence.Candidate) error
	ListCandidates(ctx context.Context, filter persistence.CandidateFilter) ([]persistence.Candidate, error)
	ArchiveCandidate(ctx context.Context, id, workspaceID string, archivedAt time.Time) error
}

// CandidateDetail is a candidate together with its live stage chain.
type CandidateDetail struct {
	Candidate persistence.Candidate
	Stages    []persistence.InterviewStage
}

// CandidateService manages candidate records and the status changes that fall
// outside the stage transition engine: hiring, dismissal, and archival.
type CandidateService struct {
	candidates  CandidateStore
	stages      ChainStageStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCandidateService wires dependencies for candidate management.
func NewCandidateService(candidates CandidateStore, stages ChainStageStore, idGenerator func() string, now func() time.Time) *CandidateService {
	return NewCandidateServiceWithLogger(candidates, stages, idGenerator, now, nil)
}

// NewCandidateServiceWithLogger constructs a candidate service with a
// specified logger.
func NewCandidateServiceWithLogger(candidates CandidateStore, stages ChainStageStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CandidateService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CandidateService{
		candidates:  candidates,
		stages:      stages,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CandidateService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CandidateService", operation, attrs...)
}

// CreateCandidate registers a candidate in the active state, optionally
// seeding an initial stage chain. Entries of the initial chain must not carry
// IDs; a brand new candidate has no stages to refer back to.
func (s *CandidateService) CreateCandidate(ctx context.Context, params CreateCandidateParams) (result CandidateDetail, err error) {
	if s == nil {
		return CandidateDetail{}, fmt.Errorf("CandidateService is nil")
	}
	if s.candidates == nil {
		return CandidateDetail{}, fmt.Errorf("candidate store not configured")
	}

	logger := s.loggerWith(ctx, "CreateCandidate", "email", params.Input.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create candidate", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "candidate created", "candidate_id", result.Candidate.ID)
	}()

	if vErr := validateCandidateInput(params.Input, params.Stages); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	candidate := persistence.Candidate{
		ID:          s.idGenerator(),
		WorkspaceID: params.Scope.WorkspaceID,
		Name:        strings.TrimSpace(params.Input.Name),
		Email:       strings.TrimSpace(params.Input.Email),
		Position:    strings.TrimSpace(params.Input.Position),
		Status:      pipeline.CandidateStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = s.candidates.CreateCandidate(ctx, candidate); err != nil {
		err = mapRepoError(err)
		return
	}

	result.Candidate = candidate
	if len(params.Stages) == 0 || s.stages == nil {
		return
	}

	sync := persistence.ChainSync{CandidateID: candidate.ID, Now: now}
	for index, spec := range params.Stages {
		sync.Creates = append(sync.Creates, persistence.InterviewStage{
			ID:            s.idGenerator(),
			CandidateID:   candidate.ID,
			StageIndex:    index,
			StageName:     strings.TrimSpace(spec.StageName),
			InterviewerID: spec.InterviewerID,
			Status:        pipeline.StageStatusWaiting,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	if err = s.stages.SyncChain(ctx, sync); err != nil {
		err = mapRepoError(err)
		return
	}

	result.Stages, err = s.stages.ListLiveStages(ctx, candidate.ID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetCandidate returns a live candidate together with its stage chain.
func (s *CandidateService) GetCandidate(ctx context.Context, params CandidateActionParams) (result CandidateDetail, err error) {
	if s == nil {
		return CandidateDetail{}, fmt.Errorf("CandidateService is nil")
	}
	if s.candidates == nil {
		return CandidateDetail{}, fmt.Errorf("candidate store not configured")
	}

	logger := s.loggerWith(ctx, "GetCandidate", "candidate_id", params.CandidateID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get candidate", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	result.Candidate, err = s.candidates.GetCandidate(ctx, params.CandidateID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if s.stages == nil {
		return
	}
	result.Stages, err = s.stages.ListLiveStages(ctx, params.CandidateID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// ListCandidates enumerates live candidates, optionally filtered by status.
func (s *CandidateService) ListCandidates(ctx context.Context, params ListCandidatesParams) (result []persistence.Candidate, err error) {
	if s == nil {
		return nil, fmt.Errorf("CandidateService is nil")
	}
	if s.candidates == nil {
		return nil, fmt.Errorf("candidate store not configured")
	}

	logger := s.loggerWith(ctx, "ListCandidates", "status", params.Status)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list candidates", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if params.Status != "" && !pipeline.ValidCandidateStatus(params.Status) {
		vErr := &ValidationError{}
		vErr.add("status", "is not a known candidate status")
		err = vErr
		return
	}

	result, err = s.candidates.ListCandidates(ctx, persistence.CandidateFilter{
		WorkspaceID: params.Scope.WorkspaceID,
		Status:      params.Status,
	})
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// MarkHired moves a candidate from the documentation holding state to hired.
func (s *CandidateService) MarkHired(ctx context.Context, params CandidateActionParams) (persistence.Candidate, error) {
	return s.changeStatus(ctx, "MarkHired", params, pipeline.CandidateStatusDocumentation, pipeline.CandidateStatusHired)
}

// MarkDismissed moves a hired candidate to dismissed.
func (s *CandidateService) MarkDismissed(ctx context.Context, params CandidateActionParams) (persistence.Candidate, error) {
	return s.changeStatus(ctx, "MarkDismissed", params, pipeline.CandidateStatusHired, pipeline.CandidateStatusDismissed)
}

func (s *CandidateService) changeStatus(ctx context.Context, operation string, params CandidateActionParams, from, to string) (result persistence.Candidate, err error) {
	if s == nil {
		return persistence.Candidate{}, fmt.Errorf("CandidateService is nil")
	}
	if s.candidates == nil {
		return persistence.Candidate{}, fmt.Errorf("candidate store not configured")
	}

	logger := s.loggerWith(ctx, operation, "candidate_id", params.CandidateID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change candidate status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "candidate status changed", "status", to)
	}()

	candidate, err := s.candidates.GetCandidate(ctx, params.CandidateID, params.Scope.WorkspaceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if candidate.Status != from {
		err = &ConflictError{Reason: fmt.Sprintf("candidate is %s, expected %s", candidate.Status, from)}
		return
	}

	candidate.Status = to
	candidate.UpdatedAt = s.now()
	if err = s.candidates.UpdateCandidate(ctx, candidate); err != nil {
		err = mapRepoError(err)
		return
	}
	result = candidate
	return
}

// ArchiveCandidate tombstones a candidate. Archived candidates disappear from
// lookups but their rows remain for audit.
func (s *CandidateService) ArchiveCandidate(ctx context.Context, params CandidateActionParams) (err error) {
	if s == nil {
		return fmt.Errorf("CandidateService is nil")
	}
	if s.candidates == nil {
		return fmt.Errorf("candidate store not configured")
	}

	logger := s.loggerWith(ctx, "ArchiveCandidate", "candidate_id", params.CandidateID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to archive candidate", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "candidate archived")
	}()

	if _, err = s.candidates.GetCandidate(ctx, params.CandidateID, params.Scope.WorkspaceID); err != nil {
		err = mapRepoError(err)
		return
	}
	if err = s.candidates.ArchiveCandidate(ctx, params.CandidateID, params.Scope.WorkspaceID, s.now()); err != nil {
		err = mapRepoError(err)
	}
	return
}

func validateCandidateInput(input CandidateInput, stages []StageSpecInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must contain @")
	}
	if strings.TrimSpace(input.Position) == "" {
		vErr.add("position", "position is required")
	}
	for i, spec := range stages {
		field := fmt.Sprintf("stages[%d]", i)
		if strings.TrimSpace(spec.StageName) == "" {
			vErr.add(field+".stage_name", "stage name is required")
		}
		if spec.ID != "" {
			vErr.add(field+".id", "a new candidate's stages must not carry ids")
		}
	}
	return vErr
}
