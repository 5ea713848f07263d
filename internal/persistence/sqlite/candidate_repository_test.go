package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
	"github.com/example/interview-pipeline/internal/pipeline"
	"github.com/example/interview-pipeline/internal/testfixtures"
)

func TestCandidateRepository_CreateAndGet(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate(testfixtures.WithWorkspace("ws-1")))

	retrieved, err := harness.Candidates.GetCandidate(ctx, candidate.ID, "")
	if err != nil {
		t.Fatalf("GetCandidate failed: %v", err)
	}

	if retrieved.Name != candidate.Name {
		t.Errorf("Expected name %q, got %q", candidate.Name, retrieved.Name)
	}
	if retrieved.Email != candidate.Email {
		t.Errorf("Expected email %q, got %q", candidate.Email, retrieved.Email)
	}
	if retrieved.Status != pipeline.CandidateStatusActive {
		t.Errorf("Expected status active, got %q", retrieved.Status)
	}
	if retrieved.WorkspaceID != "ws-1" {
		t.Errorf("Expected workspace ws-1, got %q", retrieved.WorkspaceID)
	}
	if !retrieved.CreatedAt.Equal(candidate.CreatedAt) {
		t.Errorf("Expected created_at %v, got %v", candidate.CreatedAt, retrieved.CreatedAt)
	}
	if retrieved.RejectionStage != nil || retrieved.RejectionReason != nil {
		t.Error("Expected no rejection fields on a fresh candidate")
	}
}

func TestCandidateRepository_GetCandidate_WorkspaceScoping(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate(testfixtures.WithWorkspace("ws-1")))

	if _, err := harness.Candidates.GetCandidate(ctx, candidate.ID, "ws-1"); err != nil {
		t.Fatalf("GetCandidate in owning workspace failed: %v", err)
	}

	_, err := harness.Candidates.GetCandidate(ctx, candidate.ID, "ws-other")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for foreign workspace, got %v", err)
	}
}

func TestCandidateRepository_CreateCandidate_Duplicate(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())

	err := harness.Candidates.CreateCandidate(ctx, candidate)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate for reused ID, got %v", err)
	}
}

func TestCandidateRepository_CreateCandidate_InvalidStatus(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := testfixtures.NewCandidate(testfixtures.WithCandidateStatus("limbo"))

	err := harness.Candidates.CreateCandidate(ctx, candidate)
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("Expected ErrConstraintViolation for unknown status, got %v", err)
	}
}

func TestCandidateRepository_UpdateCandidate(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())

	rejectionStage := 1
	rejectionReason := "did not pass interview stage"
	candidate.Status = pipeline.CandidateStatusRejected
	candidate.CurrentStageIndex = 1
	candidate.RejectionStage = &rejectionStage
	candidate.RejectionReason = &rejectionReason
	candidate.UpdatedAt = candidate.UpdatedAt.Add(time.Hour)

	if err := harness.Candidates.UpdateCandidate(ctx, candidate); err != nil {
		t.Fatalf("UpdateCandidate failed: %v", err)
	}

	retrieved, err := harness.Candidates.GetCandidate(ctx, candidate.ID, "")
	if err != nil {
		t.Fatalf("GetCandidate failed: %v", err)
	}

	if retrieved.Status != pipeline.CandidateStatusRejected {
		t.Errorf("Expected status rejected, got %q", retrieved.Status)
	}
	if retrieved.CurrentStageIndex != 1 {
		t.Errorf("Expected stage index 1, got %d", retrieved.CurrentStageIndex)
	}
	if retrieved.RejectionStage == nil || *retrieved.RejectionStage != 1 {
		t.Errorf("Expected rejection stage 1, got %v", retrieved.RejectionStage)
	}
	if retrieved.RejectionReason == nil || *retrieved.RejectionReason != rejectionReason {
		t.Errorf("Expected rejection reason %q, got %v", rejectionReason, retrieved.RejectionReason)
	}
}

func TestCandidateRepository_UpdateCandidate_NotFound(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	candidate := testfixtures.NewCandidate()

	err := harness.Candidates.UpdateCandidate(context.Background(), candidate)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing candidate, got %v", err)
	}
}

func TestCandidateRepository_ListCandidates(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	first := seedCandidate(t, harness, testfixtures.NewCandidate(testfixtures.WithWorkspace("ws-1")))
	second := seedCandidate(t, harness, testfixtures.NewCandidate(
		testfixtures.WithWorkspace("ws-1"),
		testfixtures.WithCandidateStatus(pipeline.CandidateStatusHired),
	))
	seedCandidate(t, harness, testfixtures.NewCandidate(testfixtures.WithWorkspace("ws-2")))

	t.Run("filters by workspace", func(t *testing.T) {
		candidates, err := harness.Candidates.ListCandidates(ctx, persistence.CandidateFilter{WorkspaceID: "ws-1"})
		if err != nil {
			t.Fatalf("ListCandidates failed: %v", err)
		}
		if len(candidates) != 2 {
			t.Fatalf("Expected 2 candidates in ws-1, got %d", len(candidates))
		}
		if candidates[0].ID != first.ID || candidates[1].ID != second.ID {
			t.Errorf("Expected creation order [%s %s], got [%s %s]",
				first.ID, second.ID, candidates[0].ID, candidates[1].ID)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		candidates, err := harness.Candidates.ListCandidates(ctx, persistence.CandidateFilter{
			WorkspaceID: "ws-1",
			Status:      pipeline.CandidateStatusHired,
		})
		if err != nil {
			t.Fatalf("ListCandidates failed: %v", err)
		}
		if len(candidates) != 1 || candidates[0].ID != second.ID {
			t.Fatalf("Expected only the hired candidate, got %d rows", len(candidates))
		}
	})
}

func TestCandidateRepository_ArchiveCandidate(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate(testfixtures.WithWorkspace("ws-1")))
	archivedAt := testfixtures.ReferenceTime().Add(2 * time.Hour)

	if err := harness.Candidates.ArchiveCandidate(ctx, candidate.ID, "ws-other", archivedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound archiving from foreign workspace, got %v", err)
	}

	if err := harness.Candidates.ArchiveCandidate(ctx, candidate.ID, "ws-1", archivedAt); err != nil {
		t.Fatalf("ArchiveCandidate failed: %v", err)
	}

	if _, err := harness.Candidates.GetCandidate(ctx, candidate.ID, ""); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected archived candidate to be hidden, got %v", err)
	}

	// Tombstoning twice is a no-op target.
	if err := harness.Candidates.ArchiveCandidate(ctx, candidate.ID, "ws-1", archivedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on repeated archive, got %v", err)
	}
}
