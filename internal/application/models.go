package application

import "time"

// Scope carries the tenant filter the caller resolved for the request. When
// WorkspaceID is non-empty every lookup the services issue is restricted to
// that workspace; enforcement of who may supply which scope is external.
type Scope struct {
	WorkspaceID string
}

// StageSpecInput is one entry of a submitted stage chain. An empty ID
// requests a new stage; a non-empty ID refers to an existing live stage.
type StageSpecInput struct {
	ID            string
	StageName     string
	InterviewerID *string
}

// SyncStageChainParams wraps the data required to resubmit a candidate's
// stage chain.
type SyncStageChainParams struct {
	Scope       Scope
	CandidateID string
	Stages      []StageSpecInput
}

// RecordStageOutcomeParams wraps the data required to record a stage outcome.
type RecordStageOutcomeParams struct {
	Scope    Scope
	StageID  string
	Status   string
	Comments string
	Rating   *int
}

// ScheduleInterviewParams wraps the data required to book an interview slot.
type ScheduleInterviewParams struct {
	Scope           Scope
	StageID         string
	InterviewerID   string
	ScheduledAt     time.Time
	DurationMinutes int
}

// RescheduleInterviewParams wraps the data required to move a booked slot.
// A zero DurationMinutes keeps the interview's current duration.
type RescheduleInterviewParams struct {
	Scope           Scope
	InterviewID     string
	ScheduledAt     time.Time
	DurationMinutes int
}

// RecordInterviewOutcomeParams wraps the data required to record an interview
// outcome without driving the stage transition.
type RecordInterviewOutcomeParams struct {
	Scope       Scope
	InterviewID string
	Outcome     string
	Notes       string
}

// CompleteInterviewParams wraps the data required to finish an interview and
// its owning stage as one operation.
type CompleteInterviewParams struct {
	Scope       Scope
	InterviewID string
	Outcome     string
	Notes       string
	Rating      *int
}

// CancelInterviewParams wraps the data required to void a booked slot.
type CancelInterviewParams struct {
	Scope       Scope
	InterviewID string
}

// CandidateInput captures caller provided candidate attributes.
type CandidateInput struct {
	Name     string
	Email    string
	Position string
}

// CreateCandidateParams wraps the data required to register a candidate,
// optionally with an initial stage chain.
type CreateCandidateParams struct {
	Scope  Scope
	Input  CandidateInput
	Stages []StageSpecInput
}

// ListCandidatesParams wraps the data required to enumerate candidates.
type ListCandidatesParams struct {
	Scope  Scope
	Status string
}

// CandidateActionParams identifies the candidate a status action targets.
type CandidateActionParams struct {
	Scope       Scope
	CandidateID string
}
