package pipeline

// Candidate statuses. A candidate starts active and ends in exactly one of the
// terminal states; documentation is the "passed all interviews" holding state
// that precedes hired.
const (
	CandidateStatusActive        = "active"
	CandidateStatusDocumentation = "documentation"
	CandidateStatusHired         = "hired"
	CandidateStatusRejected      = "rejected"
	CandidateStatusDismissed     = "dismissed"
	CandidateStatusArchived      = "archived"
)

// Stage statuses. Stages are terminal once passed or failed.
const (
	StageStatusWaiting    = "waiting"
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusPassed     = "passed"
	StageStatusFailed     = "failed"
)

// Interview statuses.
const (
	InterviewStatusScheduled   = "scheduled"
	InterviewStatusCompleted   = "completed"
	InterviewStatusCancelled   = "cancelled"
	InterviewStatusRescheduled = "rescheduled"
)

// Interview outcomes.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomePending = "pending"
)

// StageStatusTerminal reports whether a stage status admits no further outcome.
func StageStatusTerminal(status string) bool {
	return status == StageStatusPassed || status == StageStatusFailed
}

// ValidCandidateStatus reports whether the value is a known candidate status.
func ValidCandidateStatus(status string) bool {
	switch status {
	case CandidateStatusActive, CandidateStatusDocumentation, CandidateStatusHired,
		CandidateStatusRejected, CandidateStatusDismissed, CandidateStatusArchived:
		return true
	}
	return false
}

// ValidStageStatus reports whether the value is a known stage status.
func ValidStageStatus(status string) bool {
	switch status {
	case StageStatusWaiting, StageStatusPending, StageStatusInProgress,
		StageStatusPassed, StageStatusFailed:
		return true
	}
	return false
}

// ValidOutcome reports whether the value is a known interview outcome.
func ValidOutcome(outcome string) bool {
	switch outcome {
	case OutcomePassed, OutcomeFailed, OutcomePending:
		return true
	}
	return false
}
