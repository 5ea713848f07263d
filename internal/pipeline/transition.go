package pipeline

import "time"

// GenericRejectionReason substitutes for empty feedback when a failed outcome
// reaches the effect builder without comments.
const GenericRejectionReason = "did not pass interview stage"

// OutcomeStage is the view of the completed stage the transition needs.
type OutcomeStage struct {
	ID          string
	CandidateID string
	StageIndex  int
	Status      string
}

// NextStage is the stage the candidate advances onto, when one exists.
type NextStage struct {
	ID            string
	StageIndex    int
	StageName     string
	InterviewerID *string
}

// StageOutcome is the persisted effect on the completed stage.
type StageOutcome struct {
	StageID     string
	Status      string
	CompletedAt time.Time
	Comments    string
	Rating      *int
}

// CandidateChange is the persisted effect on the candidate's pipeline state.
type CandidateChange struct {
	CandidateID       string
	CurrentStageIndex int
	Status            string
	RejectionStage    *int
	RejectionReason   *string
}

// AdvanceNotice asks for a notification to the interviewer owning the stage
// the candidate advanced onto.
type AdvanceNotice struct {
	InterviewerID string
	StageID       string
	StageName     string
	StageIndex    int
}

// TransitionEffect bundles everything a recorded stage outcome changes. The
// stage and candidate parts must be applied atomically; the notice is a
// fire-and-forget side effect.
type TransitionEffect struct {
	Stage     StageOutcome
	Candidate CandidateChange
	Notice    *AdvanceNotice
}

// BuildTransition computes the full effect of marking a stage passed or
// failed. On a pass the candidate pointer advances past the stage; when no
// next live stage exists the candidate enters the documentation holding state,
// otherwise status stays active and an advance notice targets the next stage's
// interviewer, if one is assigned. The next stage itself is never auto-started.
// On a fail the candidate is rejected, recording the failing stage index and
// the comments as the rejection reason.
func BuildTransition(stage OutcomeStage, candidate CandidateChange, next *NextStage, status, comments string, rating *int, completedAt time.Time) TransitionEffect {
	effect := TransitionEffect{
		Stage: StageOutcome{
			StageID:     stage.ID,
			Status:      status,
			CompletedAt: completedAt,
			Comments:    comments,
			Rating:      rating,
		},
		Candidate: candidate,
	}

	if status == StageStatusFailed {
		reason := comments
		if reason == "" {
			reason = GenericRejectionReason
		}
		rejectionStage := stage.StageIndex
		effect.Candidate.Status = CandidateStatusRejected
		effect.Candidate.RejectionStage = &rejectionStage
		effect.Candidate.RejectionReason = &reason
		return effect
	}

	effect.Candidate.CurrentStageIndex = stage.StageIndex + 1

	if next == nil {
		effect.Candidate.Status = CandidateStatusDocumentation
		return effect
	}

	effect.Candidate.Status = CandidateStatusActive
	if next.InterviewerID != nil && *next.InterviewerID != "" {
		effect.Notice = &AdvanceNotice{
			InterviewerID: *next.InterviewerID,
			StageID:       next.ID,
			StageName:     next.StageName,
			StageIndex:    next.StageIndex,
		}
	}

	return effect
}
