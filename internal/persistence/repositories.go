package persistence

import (
	"context"
	"time"
)

// CandidateFilter narrows candidate queries. Zero values mean no filtering.
type CandidateFilter struct {
	WorkspaceID string
	Status      string
}

// CandidateRepository exposes CRUD operations for candidates.
type CandidateRepository interface {
	CreateCandidate(ctx context.Context, candidate Candidate) error
	// GetCandidate returns a live candidate. A non-empty workspaceID restricts
	// the lookup to that workspace.
	GetCandidate(ctx context.Context, id, workspaceID string) (Candidate, error)
	UpdateCandidate(ctx context.Context, candidate Candidate) error
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]Candidate, error)
	// ArchiveCandidate tombstones the candidate and marks it archived.
	ArchiveCandidate(ctx context.Context, id, workspaceID string, archivedAt time.Time) error
}

// ChainSync is a fully resolved stage-chain edit. Applying it is one atomic
// unit: interviews bound to removed stages are tombstoned first, then the
// stages themselves; updates touch only position, name, and interviewer.
type ChainSync struct {
	CandidateID    string
	Creates        []InterviewStage
	Updates        []ChainStageUpdate
	RemoveStageIDs []string
	Now            time.Time
}

// ChainStageUpdate repositions a kept stage without disturbing its progress.
type ChainStageUpdate struct {
	ID            string
	StageIndex    int
	StageName     string
	InterviewerID *string
}

// StageTransition is the atomic pair of writes a recorded stage outcome
// produces: the stage's terminal update and the candidate's pipeline change.
type StageTransition struct {
	StageID     string
	StageStatus string
	CompletedAt time.Time
	Comments    *string
	Rating      *int

	CandidateID       string
	CurrentStageIndex int
	CandidateStatus   string
	RejectionStage    *int
	RejectionReason   *string

	Now time.Time
}

// StageRepository stores interview stages and their chain-level edits.
type StageRepository interface {
	GetStage(ctx context.Context, id, workspaceID string) (InterviewStage, error)
	// ListLiveStages returns the candidate's non-tombstoned stages ordered by
	// stage index.
	ListLiveStages(ctx context.Context, candidateID, workspaceID string) ([]InterviewStage, error)
	// GetStageAtIndex returns the live stage occupying the given index of the
	// candidate's chain.
	GetStageAtIndex(ctx context.Context, candidateID string, index int) (InterviewStage, error)
	// SyncChain applies a chain edit in one transaction.
	SyncChain(ctx context.Context, sync ChainSync) error
	// ApplyTransition persists a stage outcome and its candidate change in one
	// transaction and returns the updated stage.
	ApplyTransition(ctx context.Context, transition StageTransition) (InterviewStage, error)
}

// Booking is the atomic insert of an interview together with the owning
// stage's move into in_progress.
type Booking struct {
	Interview Interview
	StageID   string
	Now       time.Time
}

// Rebooking moves an existing interview to a new slot, mirroring the new time
// onto the owning stage.
type Rebooking struct {
	InterviewID     string
	StageID         string
	ScheduledAt     time.Time
	DurationMinutes int
	Now             time.Time
}

// Cancellation voids an interview; when StageID is non-empty the owning stage
// is returned to the waiting state.
type Cancellation struct {
	InterviewID string
	StageID     string
	Now         time.Time
}

// InterviewRepository stores scheduled time slots.
type InterviewRepository interface {
	GetInterview(ctx context.Context, id, workspaceID string) (Interview, error)
	// ListInterviewerDay returns the interviewer's live, non-cancelled
	// interviews whose slot starts on the same UTC calendar day as the
	// reference time.
	ListInterviewerDay(ctx context.Context, interviewerID string, day time.Time) ([]Interview, error)
	ListStageInterviews(ctx context.Context, stageID string) ([]Interview, error)
	CreateBooking(ctx context.Context, booking Booking) error
	Rebook(ctx context.Context, rebooking Rebooking) error
	// RecordOutcome marks the interview completed with the given outcome.
	RecordOutcome(ctx context.Context, interviewID, outcome string, notes *string, now time.Time) (Interview, error)
	Cancel(ctx context.Context, cancellation Cancellation) (Interview, error)
	// CompleteBooking records the interview outcome and the owning stage's
	// transition as one transaction.
	CompleteBooking(ctx context.Context, interviewID, outcome string, notes *string, transition StageTransition) (Interview, error)
}

// NotificationRepository stores fire-and-forget notification records.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListNotificationsForUser(ctx context.Context, userID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
