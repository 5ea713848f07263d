package persistence

import "time"

// Candidate represents a person moving through an interview pipeline.
type Candidate struct {
	ID                string
	WorkspaceID       string
	Name              string
	Email             string
	Position          string
	CurrentStageIndex int
	Status            string
	RejectionStage    *int
	RejectionReason   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// InterviewStage represents one step of a candidate's stage chain.
type InterviewStage struct {
	ID            string
	CandidateID   string
	StageIndex    int
	StageName     string
	InterviewerID *string
	Status        string
	ScheduledAt   *time.Time
	CompletedAt   *time.Time
	Comments      *string
	Rating        *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Interview represents a booked time slot bound to one stage and one
// interviewer. CandidateID and InterviewerID are denormalized for query
// convenience.
type Interview struct {
	ID              string
	StageID         string
	CandidateID     string
	InterviewerID   string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          string
	Outcome         *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Notification is a fire-and-forget side effect record targeted at a user.
type Notification struct {
	ID                string
	UserID            string
	Type              string
	Title             string
	Message           string
	RelatedEntityType string
	RelatedEntityID   string
	Read              bool
	CreatedAt         time.Time
}
