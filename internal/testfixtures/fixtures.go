package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
	"github.com/example/interview-pipeline/internal/pipeline"
)

var (
	candidateCounter uint64
	stageCounter     uint64
	interviewCounter uint64
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// CandidateOption configures a generated candidate fixture.
type CandidateOption func(*persistence.Candidate)

// WithCandidateStatus overrides the candidate's status.
func WithCandidateStatus(status string) CandidateOption {
	return func(c *persistence.Candidate) { c.Status = status }
}

// WithWorkspace places the candidate in the given workspace.
func WithWorkspace(workspaceID string) CandidateOption {
	return func(c *persistence.Candidate) { c.WorkspaceID = workspaceID }
}

// WithStageIndex sets the candidate's pipeline pointer.
func WithStageIndex(index int) CandidateOption {
	return func(c *persistence.Candidate) { c.CurrentStageIndex = index }
}

// NewCandidate returns a deterministic active candidate with optional
// overrides.
func NewCandidate(opts ...CandidateOption) persistence.Candidate {
	idx := atomic.AddUint64(&candidateCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)

	candidate := persistence.Candidate{
		ID:        fmt.Sprintf("cand-%03d", idx),
		Name:      fmt.Sprintf("Candidate %03d", idx),
		Email:     fmt.Sprintf("candidate%03d@example.com", idx),
		Position:  "Software Engineer",
		Status:    pipeline.CandidateStatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&candidate)
	}
	return candidate
}

// StageOption configures a generated stage fixture.
type StageOption func(*persistence.InterviewStage)

// WithStageStatus overrides the stage's status.
func WithStageStatus(status string) StageOption {
	return func(s *persistence.InterviewStage) { s.Status = status }
}

// WithInterviewer assigns an interviewer to the stage.
func WithInterviewer(interviewerID string) StageOption {
	return func(s *persistence.InterviewStage) { s.InterviewerID = &interviewerID }
}

// WithStageName overrides the stage's display name.
func WithStageName(name string) StageOption {
	return func(s *persistence.InterviewStage) { s.StageName = name }
}

// NewStage returns a deterministic waiting stage bound to the candidate.
func NewStage(candidateID string, index int, opts ...StageOption) persistence.InterviewStage {
	idx := atomic.AddUint64(&stageCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)

	stage := persistence.InterviewStage{
		ID:          fmt.Sprintf("stage-%03d", idx),
		CandidateID: candidateID,
		StageIndex:  index,
		StageName:   fmt.Sprintf("Stage %d", index),
		Status:      pipeline.StageStatusWaiting,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&stage)
	}
	return stage
}

// InterviewOption configures a generated interview fixture.
type InterviewOption func(*persistence.Interview)

// WithInterviewStatus overrides the interview's status.
func WithInterviewStatus(status string) InterviewOption {
	return func(i *persistence.Interview) { i.Status = status }
}

// WithSlot places the interview at the given start and duration.
func WithSlot(start time.Time, minutes int) InterviewOption {
	return func(i *persistence.Interview) {
		i.ScheduledAt = start
		i.DurationMinutes = minutes
	}
}

// NewInterview returns a deterministic scheduled interview bound to the stage.
func NewInterview(stageID, candidateID, interviewerID string, opts ...InterviewOption) persistence.Interview {
	idx := atomic.AddUint64(&interviewCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)

	interview := persistence.Interview{
		ID:              fmt.Sprintf("iv-%03d", idx),
		StageID:         stageID,
		CandidateID:     candidateID,
		InterviewerID:   interviewerID,
		ScheduledAt:     referenceTime.Add(time.Duration(idx) * time.Hour),
		DurationMinutes: pipeline.DefaultDurationMinutes,
		Status:          pipeline.InterviewStatusScheduled,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&interview)
	}
	return interview
}
