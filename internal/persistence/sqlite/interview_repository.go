package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
)

// InterviewRepository implements persistence.InterviewRepository using SQLite.
type InterviewRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewInterviewRepository creates a new SQLite interview repository.
func NewInterviewRepository(pool *ConnectionPool) *InterviewRepository {
	return &InterviewRepository{pool: pool, mapper: NewErrorMapper()}
}

const interviewColumns = `i.id, i.stage_id, i.candidate_id, i.interviewer_id, i.scheduled_at,
	i.duration_minutes, i.status, i.outcome, i.notes, i.created_at, i.updated_at, i.deleted_at`

// GetInterview retrieves a live interview, optionally scoped to a workspace
// through the owning candidate.
func (r *InterviewRepository) GetInterview(ctx context.Context, id, workspaceID string) (persistence.Interview, error) {
	if id == "" {
		return persistence.Interview{}, persistence.ErrNotFound
	}

	query := fmt.Sprintf("SELECT %s FROM interviews i", interviewColumns)
	args := []interface{}{}
	if workspaceID != "" {
		query += " JOIN candidates c ON c.id = i.candidate_id AND c.workspace_id = ?"
		args = append(args, workspaceID)
	}
	query += " WHERE i.id = ? AND i.deleted_at IS NULL"
	args = append(args, id)

	return r.scanInterview(r.pool.db.QueryRowContext(ctx, query, args...))
}

// ListInterviewerDay returns the interviewer's live, non-cancelled interviews
// whose slot starts on the same UTC calendar day as the reference time,
// ordered by start time.
func (r *InterviewRepository) ListInterviewerDay(ctx context.Context, interviewerID string, day time.Time) ([]persistence.Interview, error) {
	start, end := dayBounds(day)

	query := fmt.Sprintf(`
		SELECT %s FROM interviews i
		WHERE i.interviewer_id = ?
		  AND i.scheduled_at >= ? AND i.scheduled_at < ?
		  AND i.status != 'cancelled'
		  AND i.deleted_at IS NULL
		ORDER BY i.scheduled_at ASC, i.id ASC`, interviewColumns)

	rows, err := r.pool.db.QueryContext(ctx, query, interviewerID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectInterviews(rows)
}

// ListStageInterviews returns the live interviews bound to a stage.
func (r *InterviewRepository) ListStageInterviews(ctx context.Context, stageID string) ([]persistence.Interview, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interviews i
		WHERE i.stage_id = ? AND i.deleted_at IS NULL
		ORDER BY i.scheduled_at ASC, i.id ASC`, interviewColumns)

	rows, err := r.pool.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectInterviews(rows)
}

// CreateBooking inserts the interview and moves the owning stage into
// in_progress within one transaction.
func (r *InterviewRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	interview := booking.Interview
	if interview.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := formatTime(booking.Now)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO interviews (id, stage_id, candidate_id, interviewer_id, scheduled_at,
				duration_minutes, status, outcome, notes, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			interview.ID,
			interview.StageID,
			interview.CandidateID,
			interview.InterviewerID,
			formatTime(interview.ScheduledAt),
			interview.DurationMinutes,
			interview.Status,
			nullString(interview.Outcome),
			nullString(interview.Notes),
			formatTime(interview.CreatedAt),
			formatTime(interview.UpdatedAt),
			nullTime(interview.DeletedAt),
		); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := tx.Exec(`
			UPDATE interview_stages
			SET status = 'in_progress', scheduled_at = ?, interviewer_id = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL`,
			formatTime(interview.ScheduledAt),
			interview.InterviewerID,
			now,
			booking.StageID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireRow(result)
	})
}

// Rebook moves an interview to a new slot, mirroring the time onto the owning
// stage, within one transaction.
func (r *InterviewRepository) Rebook(ctx context.Context, rebooking persistence.Rebooking) error {
	now := formatTime(rebooking.Now)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE interviews
			SET scheduled_at = ?, duration_minutes = ?, status = 'rescheduled', updated_at = ?
			WHERE id = ? AND deleted_at IS NULL`,
			formatTime(rebooking.ScheduledAt),
			rebooking.DurationMinutes,
			now,
			rebooking.InterviewID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		result, err = tx.Exec(
			"UPDATE interview_stages SET scheduled_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
			formatTime(rebooking.ScheduledAt), now, rebooking.StageID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireRow(result)
	})
}

// RecordOutcome marks the interview completed with the given outcome and
// returns the updated row.
func (r *InterviewRepository) RecordOutcome(ctx context.Context, interviewID, outcome string, notes *string, now time.Time) (persistence.Interview, error) {
	var updated persistence.Interview
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE interviews
			SET status = 'completed', outcome = ?, notes = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL`,
			outcome, nullString(notes), formatTime(now), interviewID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		updated, err = r.scanInterviewTx(tx, interviewID)
		return err
	})
	if err != nil {
		return persistence.Interview{}, err
	}
	return updated, nil
}

// Cancel voids the interview; when a stage is named and still in progress it
// returns to the waiting state with its slot cleared.
func (r *InterviewRepository) Cancel(ctx context.Context, cancellation persistence.Cancellation) (persistence.Interview, error) {
	now := formatTime(cancellation.Now)

	var updated persistence.Interview
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"UPDATE interviews SET status = 'cancelled', updated_at = ? WHERE id = ? AND deleted_at IS NULL",
			now, cancellation.InterviewID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		if cancellation.StageID != "" {
			if _, err := tx.Exec(`
				UPDATE interview_stages
				SET status = 'waiting', scheduled_at = NULL, updated_at = ?
				WHERE id = ? AND status = 'in_progress' AND deleted_at IS NULL`,
				now, cancellation.StageID,
			); err != nil {
				return r.mapper.MapError(err)
			}
		}

		updated, err = r.scanInterviewTx(tx, cancellation.InterviewID)
		return err
	})
	if err != nil {
		return persistence.Interview{}, err
	}
	return updated, nil
}

// CompleteBooking records the interview outcome together with the owning
// stage's transition in one transaction.
func (r *InterviewRepository) CompleteBooking(ctx context.Context, interviewID, outcome string, notes *string, transition persistence.StageTransition) (persistence.Interview, error) {
	now := formatTime(transition.Now)

	var updated persistence.Interview
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE interviews
			SET status = 'completed', outcome = ?, notes = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL`,
			outcome, nullString(notes), now, interviewID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		result, err = tx.Exec(`
			UPDATE interview_stages
			SET status = ?, completed_at = ?, comments = ?, rating = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL`,
			transition.StageStatus,
			formatTime(transition.CompletedAt),
			nullString(transition.Comments),
			nullInt(transition.Rating),
			now,
			transition.StageID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		result, err = tx.Exec(`
			UPDATE candidates
			SET current_stage_index = ?, status = ?, rejection_stage = ?, rejection_reason = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL`,
			transition.CurrentStageIndex,
			transition.CandidateStatus,
			nullInt(transition.RejectionStage),
			nullString(transition.RejectionReason),
			now,
			transition.CandidateID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		updated, err = r.scanInterviewTx(tx, interviewID)
		return err
	})
	if err != nil {
		return persistence.Interview{}, err
	}
	return updated, nil
}

func (r *InterviewRepository) scanInterviewTx(tx *sql.Tx, id string) (persistence.Interview, error) {
	query := fmt.Sprintf("SELECT %s FROM interviews i WHERE i.id = ?", interviewColumns)
	return r.scanInterview(tx.QueryRow(query, id))
}

func (r *InterviewRepository) collectInterviews(rows *sql.Rows) ([]persistence.Interview, error) {
	var interviews []persistence.Interview
	for rows.Next() {
		interview, err := r.scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, interview)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return interviews, nil
}

func (r *InterviewRepository) scanInterview(row rowScanner) (persistence.Interview, error) {
	var (
		interview            persistence.Interview
		scheduledAt          string
		outcome, notes       sql.NullString
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)

	err := row.Scan(
		&interview.ID,
		&interview.StageID,
		&interview.CandidateID,
		&interview.InterviewerID,
		&scheduledAt,
		&interview.DurationMinutes,
		&interview.Status,
		&outcome,
		&notes,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Interview{}, persistence.ErrNotFound
		}
		return persistence.Interview{}, r.mapper.MapError(err)
	}

	interview.Outcome = stringPtr(outcome)
	interview.Notes = stringPtr(notes)
	if interview.ScheduledAt, err = parseTime(scheduledAt, "scheduled_at"); err != nil {
		return persistence.Interview{}, err
	}
	if interview.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Interview{}, err
	}
	if interview.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Interview{}, err
	}
	if interview.DeletedAt, err = timePtr(deletedAt, "deleted_at"); err != nil {
		return persistence.Interview{}, err
	}

	return interview, nil
}
