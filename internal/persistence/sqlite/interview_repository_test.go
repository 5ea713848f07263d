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

func TestInterviewRepository_CreateBooking(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate(testfixtures.WithWorkspace("ws-1")))
	stage := testfixtures.NewStage(candidate.ID, 0)
	seedStages(t, harness, candidate.ID, stage)

	start := testfixtures.ReferenceTime().Add(24 * time.Hour)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice",
		testfixtures.WithSlot(start, 45),
	))

	retrieved, err := harness.Interviews.GetInterview(ctx, interview.ID, "ws-1")
	if err != nil {
		t.Fatalf("GetInterview failed: %v", err)
	}
	if !retrieved.ScheduledAt.Equal(start) {
		t.Errorf("Expected slot start %v, got %v", start, retrieved.ScheduledAt)
	}
	if retrieved.DurationMinutes != 45 {
		t.Errorf("Expected 45 minute slot, got %d", retrieved.DurationMinutes)
	}
	if retrieved.Status != pipeline.InterviewStatusScheduled {
		t.Errorf("Expected scheduled status, got %q", retrieved.Status)
	}

	// The owning stage mirrors the booking.
	owning, err := harness.Stages.GetStage(ctx, stage.ID, "")
	if err != nil {
		t.Fatalf("GetStage failed: %v", err)
	}
	if owning.Status != pipeline.StageStatusInProgress {
		t.Errorf("Expected stage in_progress after booking, got %q", owning.Status)
	}
	if owning.ScheduledAt == nil || !owning.ScheduledAt.Equal(start) {
		t.Errorf("Expected stage scheduled_at %v, got %v", start, owning.ScheduledAt)
	}
	if owning.InterviewerID == nil || *owning.InterviewerID != "alice" {
		t.Errorf("Expected interviewer alice on stage, got %v", owning.InterviewerID)
	}
}

func TestInterviewRepository_CreateBooking_UnknownStage(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	interview := testfixtures.NewInterview("stage-missing", candidate.ID, "alice")

	booking := persistence.Booking{
		Interview: interview,
		StageID:   interview.StageID,
		Now:       testfixtures.ReferenceTime(),
	}
	err := harness.Interviews.CreateBooking(context.Background(), booking)
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("Expected ErrForeignKeyViolation for unknown stage, got %v", err)
	}
}

func TestInterviewRepository_GetInterview_WorkspaceScoping(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate(testfixtures.WithWorkspace("ws-1")))
	stage := testfixtures.NewStage(candidate.ID, 0)
	seedStages(t, harness, candidate.ID, stage)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))

	if _, err := harness.Interviews.GetInterview(ctx, interview.ID, "ws-other"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for foreign workspace, got %v", err)
	}
}

func TestInterviewRepository_ListInterviewerDay(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stages := []persistence.InterviewStage{
		testfixtures.NewStage(candidate.ID, 0),
		testfixtures.NewStage(candidate.ID, 1),
		testfixtures.NewStage(candidate.ID, 2),
		testfixtures.NewStage(candidate.ID, 3),
	}
	seedStages(t, harness, candidate.ID, stages...)

	day := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)

	afternoon := seedInterview(t, harness, testfixtures.NewInterview(stages[0].ID, candidate.ID, "alice",
		testfixtures.WithSlot(day.Add(14*time.Hour), 30),
	))
	morning := seedInterview(t, harness, testfixtures.NewInterview(stages[1].ID, candidate.ID, "alice",
		testfixtures.WithSlot(day.Add(9*time.Hour), 60),
	))
	// Cancelled slots and other interviewers never block the day.
	seedInterview(t, harness, testfixtures.NewInterview(stages[2].ID, candidate.ID, "alice",
		testfixtures.WithSlot(day.Add(11*time.Hour), 30),
		testfixtures.WithInterviewStatus(pipeline.InterviewStatusCancelled),
	))
	seedInterview(t, harness, testfixtures.NewInterview(stages[3].ID, candidate.ID, "bob",
		testfixtures.WithSlot(day.Add(10*time.Hour), 30),
	))

	interviews, err := harness.Interviews.ListInterviewerDay(ctx, "alice", day.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("ListInterviewerDay failed: %v", err)
	}
	if len(interviews) != 2 {
		t.Fatalf("Expected 2 interviews on the day, got %d", len(interviews))
	}
	if interviews[0].ID != morning.ID || interviews[1].ID != afternoon.ID {
		t.Errorf("Expected start-time order [%s %s], got [%s %s]",
			morning.ID, afternoon.ID, interviews[0].ID, interviews[1].ID)
	}

	nextDay, err := harness.Interviews.ListInterviewerDay(ctx, "alice", day.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("ListInterviewerDay failed: %v", err)
	}
	if len(nextDay) != 0 {
		t.Errorf("Expected empty next day, got %d interviews", len(nextDay))
	}
}

func TestInterviewRepository_ListStageInterviews(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stage := testfixtures.NewStage(candidate.ID, 0)
	other := testfixtures.NewStage(candidate.ID, 1)
	seedStages(t, harness, candidate.ID, stage, other)

	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))
	seedInterview(t, harness, testfixtures.NewInterview(other.ID, candidate.ID, "alice"))

	interviews, err := harness.Interviews.ListStageInterviews(ctx, stage.ID)
	if err != nil {
		t.Fatalf("ListStageInterviews failed: %v", err)
	}
	if len(interviews) != 1 || interviews[0].ID != interview.ID {
		t.Fatalf("Expected only the stage's interview, got %d rows", len(interviews))
	}
}

func TestInterviewRepository_Rebook(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stage := testfixtures.NewStage(candidate.ID, 0)
	seedStages(t, harness, candidate.ID, stage)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))

	newStart := testfixtures.ReferenceTime().Add(48 * time.Hour)
	rebooking := persistence.Rebooking{
		InterviewID:     interview.ID,
		StageID:         stage.ID,
		ScheduledAt:     newStart,
		DurationMinutes: 90,
		Now:             testfixtures.ReferenceTime().Add(time.Hour),
	}
	if err := harness.Interviews.Rebook(ctx, rebooking); err != nil {
		t.Fatalf("Rebook failed: %v", err)
	}

	retrieved, err := harness.Interviews.GetInterview(ctx, interview.ID, "")
	if err != nil {
		t.Fatalf("GetInterview failed: %v", err)
	}
	if !retrieved.ScheduledAt.Equal(newStart) {
		t.Errorf("Expected new start %v, got %v", newStart, retrieved.ScheduledAt)
	}
	if retrieved.DurationMinutes != 90 {
		t.Errorf("Expected 90 minute slot, got %d", retrieved.DurationMinutes)
	}
	if retrieved.Status != pipeline.InterviewStatusRescheduled {
		t.Errorf("Expected rescheduled status, got %q", retrieved.Status)
	}

	owning, err := harness.Stages.GetStage(ctx, stage.ID, "")
	if err != nil {
		t.Fatalf("GetStage failed: %v", err)
	}
	if owning.ScheduledAt == nil || !owning.ScheduledAt.Equal(newStart) {
		t.Errorf("Expected stage to mirror new start %v, got %v", newStart, owning.ScheduledAt)
	}
}

func TestInterviewRepository_Rebook_NotFound(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	rebooking := persistence.Rebooking{
		InterviewID:     "iv-missing",
		StageID:         "stage-missing",
		ScheduledAt:     testfixtures.ReferenceTime(),
		DurationMinutes: 30,
		Now:             testfixtures.ReferenceTime(),
	}
	err := harness.Interviews.Rebook(context.Background(), rebooking)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown interview, got %v", err)
	}
}

func TestInterviewRepository_RecordOutcome(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stage := testfixtures.NewStage(candidate.ID, 0)
	seedStages(t, harness, candidate.ID, stage)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))

	notes := "good communication, needs follow-up"
	updated, err := harness.Interviews.RecordOutcome(ctx, interview.ID, pipeline.OutcomePending, &notes,
		testfixtures.ReferenceTime().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}
	if updated.Status != pipeline.InterviewStatusCompleted {
		t.Errorf("Expected completed status, got %q", updated.Status)
	}
	if updated.Outcome == nil || *updated.Outcome != pipeline.OutcomePending {
		t.Errorf("Expected pending outcome, got %v", updated.Outcome)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("Expected notes %q, got %v", notes, updated.Notes)
	}
}

func TestInterviewRepository_Cancel(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stage := testfixtures.NewStage(candidate.ID, 0)
	seedStages(t, harness, candidate.ID, stage)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))

	cancellation := persistence.Cancellation{
		InterviewID: interview.ID,
		StageID:     stage.ID,
		Now:         testfixtures.ReferenceTime().Add(time.Hour),
	}
	updated, err := harness.Interviews.Cancel(ctx, cancellation)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if updated.Status != pipeline.InterviewStatusCancelled {
		t.Errorf("Expected cancelled status, got %q", updated.Status)
	}

	// Booking had moved the stage to in_progress; cancelling frees it.
	owning, err := harness.Stages.GetStage(ctx, stage.ID, "")
	if err != nil {
		t.Fatalf("GetStage failed: %v", err)
	}
	if owning.Status != pipeline.StageStatusWaiting {
		t.Errorf("Expected stage back to waiting, got %q", owning.Status)
	}
	if owning.ScheduledAt != nil {
		t.Errorf("Expected stage slot cleared, got %v", owning.ScheduledAt)
	}
}

func TestInterviewRepository_Cancel_LeavesTerminalStage(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stage := testfixtures.NewStage(candidate.ID, 0)
	seedStages(t, harness, candidate.ID, stage)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))

	now := testfixtures.ReferenceTime().Add(time.Hour)
	transition := persistence.StageTransition{
		StageID:     stage.ID,
		StageStatus: pipeline.StageStatusPassed,
		CompletedAt: now,

		CandidateID:       candidate.ID,
		CurrentStageIndex: 1,
		CandidateStatus:   pipeline.CandidateStatusActive,

		Now: now,
	}
	if _, err := harness.Stages.ApplyTransition(ctx, transition); err != nil {
		t.Fatalf("ApplyTransition failed: %v", err)
	}

	cancellation := persistence.Cancellation{
		InterviewID: interview.ID,
		StageID:     stage.ID,
		Now:         now.Add(time.Hour),
	}
	if _, err := harness.Interviews.Cancel(ctx, cancellation); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	// Only in_progress stages are reset; the recorded outcome stays.
	owning, err := harness.Stages.GetStage(ctx, stage.ID, "")
	if err != nil {
		t.Fatalf("GetStage failed: %v", err)
	}
	if owning.Status != pipeline.StageStatusPassed {
		t.Errorf("Expected stage to keep passed status, got %q", owning.Status)
	}
}

func TestInterviewRepository_CompleteBooking(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stage := testfixtures.NewStage(candidate.ID, 0)
	next := testfixtures.NewStage(candidate.ID, 1)
	seedStages(t, harness, candidate.ID, stage, next)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))

	comments := "cleared the technical bar"
	rating := 4
	now := testfixtures.ReferenceTime().Add(4 * time.Hour)
	transition := persistence.StageTransition{
		StageID:     stage.ID,
		StageStatus: pipeline.StageStatusPassed,
		CompletedAt: now,
		Comments:    &comments,
		Rating:      &rating,

		CandidateID:       candidate.ID,
		CurrentStageIndex: 1,
		CandidateStatus:   pipeline.CandidateStatusActive,

		Now: now,
	}

	updated, err := harness.Interviews.CompleteBooking(ctx, interview.ID, pipeline.OutcomePassed, &comments, transition)
	if err != nil {
		t.Fatalf("CompleteBooking failed: %v", err)
	}
	if updated.Status != pipeline.InterviewStatusCompleted {
		t.Errorf("Expected completed interview, got %q", updated.Status)
	}
	if updated.Outcome == nil || *updated.Outcome != pipeline.OutcomePassed {
		t.Errorf("Expected passed outcome, got %v", updated.Outcome)
	}

	owning, err := harness.Stages.GetStage(ctx, stage.ID, "")
	if err != nil {
		t.Fatalf("GetStage failed: %v", err)
	}
	if owning.Status != pipeline.StageStatusPassed {
		t.Errorf("Expected passed stage, got %q", owning.Status)
	}
	if owning.Rating == nil || *owning.Rating != 4 {
		t.Errorf("Expected rating 4, got %v", owning.Rating)
	}

	retrieved, err := harness.Candidates.GetCandidate(ctx, candidate.ID, "")
	if err != nil {
		t.Fatalf("GetCandidate failed: %v", err)
	}
	if retrieved.CurrentStageIndex != 1 {
		t.Errorf("Expected candidate pointer at 1, got %d", retrieved.CurrentStageIndex)
	}
}

func TestInterviewRepository_CompleteBooking_RollsBackAsOne(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	candidate := seedCandidate(t, harness, testfixtures.NewCandidate())
	stage := testfixtures.NewStage(candidate.ID, 0)
	seedStages(t, harness, candidate.ID, stage)
	interview := seedInterview(t, harness, testfixtures.NewInterview(stage.ID, candidate.ID, "alice"))

	now := testfixtures.ReferenceTime().Add(time.Hour)
	transition := persistence.StageTransition{
		StageID:     "stage-missing",
		StageStatus: pipeline.StageStatusPassed,
		CompletedAt: now,

		CandidateID:     candidate.ID,
		CandidateStatus: pipeline.CandidateStatusActive,

		Now: now,
	}

	if _, err := harness.Interviews.CompleteBooking(ctx, interview.ID, pipeline.OutcomePassed, nil, transition); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown stage, got %v", err)
	}

	// The interview write must have been rolled back with the stage write.
	retrieved, err := harness.Interviews.GetInterview(ctx, interview.ID, "")
	if err != nil {
		t.Fatalf("GetInterview failed: %v", err)
	}
	if retrieved.Status != pipeline.InterviewStatusScheduled {
		t.Errorf("Expected interview still scheduled after rollback, got %q", retrieved.Status)
	}
	if retrieved.Outcome != nil {
		t.Errorf("Expected no outcome after rollback, got %v", retrieved.Outcome)
	}
}
