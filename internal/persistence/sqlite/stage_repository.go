package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/interview-pipeline/internal/persistence"
)

// StageRepository implements persistence.StageRepository using SQLite.
type StageRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewStageRepository creates a new SQLite stage repository.
func NewStageRepository(pool *ConnectionPool) *StageRepository {
	return &StageRepository{pool: pool, mapper: NewErrorMapper()}
}

const stageColumns = `s.id, s.candidate_id, s.stage_index, s.stage_name, s.interviewer_id, s.status,
	s.scheduled_at, s.completed_at, s.comments, s.rating, s.created_at, s.updated_at, s.deleted_at`

// GetStage retrieves a live stage, optionally scoped to a workspace through
// the owning candidate.
func (r *StageRepository) GetStage(ctx context.Context, id, workspaceID string) (persistence.InterviewStage, error) {
	if id == "" {
		return persistence.InterviewStage{}, persistence.ErrNotFound
	}

	query := fmt.Sprintf("SELECT %s FROM interview_stages s", stageColumns)
	args := []interface{}{}
	if workspaceID != "" {
		query += " JOIN candidates c ON c.id = s.candidate_id AND c.workspace_id = ?"
		args = append(args, workspaceID)
	}
	query += " WHERE s.id = ? AND s.deleted_at IS NULL"
	args = append(args, id)

	return scanStage(r.pool.db.QueryRowContext(ctx, query, args...), r.mapper)
}

// ListLiveStages returns the candidate's non-tombstoned stages ordered by
// stage index.
func (r *StageRepository) ListLiveStages(ctx context.Context, candidateID, workspaceID string) ([]persistence.InterviewStage, error) {
	query := fmt.Sprintf("SELECT %s FROM interview_stages s", stageColumns)
	args := []interface{}{}
	if workspaceID != "" {
		query += " JOIN candidates c ON c.id = s.candidate_id AND c.workspace_id = ?"
		args = append(args, workspaceID)
	}
	query += " WHERE s.candidate_id = ? AND s.deleted_at IS NULL ORDER BY s.stage_index ASC"
	args = append(args, candidateID)

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var stages []persistence.InterviewStage
	for rows.Next() {
		stage, err := scanStage(rows, r.mapper)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return stages, nil
}

// GetStageAtIndex returns the live stage occupying the given chain position.
func (r *StageRepository) GetStageAtIndex(ctx context.Context, candidateID string, index int) (persistence.InterviewStage, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM interview_stages s WHERE s.candidate_id = ? AND s.stage_index = ? AND s.deleted_at IS NULL",
		stageColumns,
	)
	return scanStage(r.pool.db.QueryRowContext(ctx, query, candidateID, index), r.mapper)
}

// SyncChain applies a stage-chain edit as one transaction: interviews bound
// to removed stages are tombstoned first, then the stages themselves, then
// kept stages are repositioned and new stages inserted. Any failure rolls the
// whole edit back.
func (r *StageRepository) SyncChain(ctx context.Context, sync persistence.ChainSync) error {
	now := formatTime(sync.Now)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stageID := range sync.RemoveStageIDs {
			if _, err := tx.Exec(
				"UPDATE interviews SET deleted_at = ?, updated_at = ? WHERE stage_id = ? AND deleted_at IS NULL",
				now, now, stageID,
			); err != nil {
				return r.mapper.MapError(err)
			}

			result, err := tx.Exec(
				"UPDATE interview_stages SET deleted_at = ?, updated_at = ? WHERE id = ? AND candidate_id = ? AND deleted_at IS NULL",
				now, now, stageID, sync.CandidateID,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
			if err := requireRow(result); err != nil {
				return err
			}
		}

		for _, update := range sync.Updates {
			result, err := tx.Exec(`
				UPDATE interview_stages
				SET stage_index = ?, stage_name = ?, interviewer_id = ?, updated_at = ?
				WHERE id = ? AND candidate_id = ? AND deleted_at IS NULL`,
				update.StageIndex,
				update.StageName,
				nullString(update.InterviewerID),
				now,
				update.ID,
				sync.CandidateID,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
			if err := requireRow(result); err != nil {
				return err
			}
		}

		for _, stage := range sync.Creates {
			if _, err := tx.Exec(`
				INSERT INTO interview_stages (id, candidate_id, stage_index, stage_name, interviewer_id, status,
					scheduled_at, completed_at, comments, rating, created_at, updated_at, deleted_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				stage.ID,
				stage.CandidateID,
				stage.StageIndex,
				stage.StageName,
				nullString(stage.InterviewerID),
				stage.Status,
				nullTime(stage.ScheduledAt),
				nullTime(stage.CompletedAt),
				nullString(stage.Comments),
				nullInt(stage.Rating),
				formatTime(stage.CreatedAt),
				formatTime(stage.UpdatedAt),
				nullTime(stage.DeletedAt),
			); err != nil {
				return r.mapper.MapError(err)
			}
		}

		return nil
	})
}

// ApplyTransition persists a stage outcome and the candidate's pipeline
// change atomically and returns the updated stage.
func (r *StageRepository) ApplyTransition(ctx context.Context, transition persistence.StageTransition) (persistence.InterviewStage, error) {
	now := formatTime(transition.Now)

	var updated persistence.InterviewStage
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
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

		query := fmt.Sprintf("SELECT %s FROM interview_stages s WHERE s.id = ?", stageColumns)
		updated, err = scanStage(tx.QueryRow(query, transition.StageID), r.mapper)
		return err
	})
	if err != nil {
		return persistence.InterviewStage{}, err
	}

	return updated, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanStage(row rowScanner, mapper *ErrorMapper) (persistence.InterviewStage, error) {
	var (
		stage                              persistence.InterviewStage
		interviewerID, comments            sql.NullString
		scheduledAt, completedAt, deleted  sql.NullString
		rating                             sql.NullInt64
		createdAt, updatedAt               string
	)

	err := row.Scan(
		&stage.ID,
		&stage.CandidateID,
		&stage.StageIndex,
		&stage.StageName,
		&interviewerID,
		&stage.Status,
		&scheduledAt,
		&completedAt,
		&comments,
		&rating,
		&createdAt,
		&updatedAt,
		&deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.InterviewStage{}, persistence.ErrNotFound
		}
		return persistence.InterviewStage{}, mapper.MapError(err)
	}

	stage.InterviewerID = stringPtr(interviewerID)
	stage.Comments = stringPtr(comments)
	stage.Rating = intPtr(rating)
	if stage.ScheduledAt, err = timePtr(scheduledAt, "scheduled_at"); err != nil {
		return persistence.InterviewStage{}, err
	}
	if stage.CompletedAt, err = timePtr(completedAt, "completed_at"); err != nil {
		return persistence.InterviewStage{}, err
	}
	if stage.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.InterviewStage{}, err
	}
	if stage.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.InterviewStage{}, err
	}
	if stage.DeletedAt, err = timePtr(deleted, "deleted_at"); err != nil {
		return persistence.InterviewStage{}, err
	}

	return stage, nil
}
