package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/interview-pipeline/internal/persistence"
	"github.com/example/interview-pipeline/internal/testfixtures"
)

func seedCandidate(t *testing.T, harness *testfixtures.SQLiteHarness, candidate persistence.Candidate) persistence.Candidate {
	t.Helper()

	if err := harness.Candidates.CreateCandidate(context.Background(), candidate); err != nil {
		t.Fatalf("CreateCandidate failed: %v", err)
	}
	return candidate
}

func seedStages(t *testing.T, harness *testfixtures.SQLiteHarness, candidateID string, stages ...persistence.InterviewStage) {
	t.Helper()

	sync := persistence.ChainSync{
		CandidateID: candidateID,
		Creates:     stages,
		Now:         testfixtures.ReferenceTime(),
	}
	if err := harness.Stages.SyncChain(context.Background(), sync); err != nil {
		t.Fatalf("SyncChain failed: %v", err)
	}
}

func seedInterview(t *testing.T, harness *testfixtures.SQLiteHarness, interview persistence.Interview) persistence.Interview {
	t.Helper()

	booking := persistence.Booking{
		Interview: interview,
		StageID:   interview.StageID,
		Now:       interview.CreatedAt,
	}
	if err := harness.Interviews.CreateBooking(context.Background(), booking); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	return interview
}
