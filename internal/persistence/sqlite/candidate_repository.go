package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
)

// CandidateRepository implements persistence.CandidateRepository using SQLite.
type CandidateRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewCandidateRepository creates a new SQLite candidate repository.
func NewCandidateRepository(pool *ConnectionPool) *CandidateRepository {
	return &CandidateRepository{pool: pool, mapper: NewErrorMapper()}
}

const candidateColumns = `id, workspace_id, name, email, position, current_stage_index, status,
	rejection_stage, rejection_reason, created_at, updated_at, deleted_at`

// CreateCandidate inserts a new candidate row.
func (r *CandidateRepository) CreateCandidate(ctx context.Context, candidate persistence.Candidate) error {
	if candidate.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := fmt.Sprintf(`INSERT INTO candidates (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, candidateColumns)
	_, err := r.pool.db.ExecContext(ctx, query,
		candidate.ID,
		candidate.WorkspaceID,
		candidate.Name,
		candidate.Email,
		candidate.Position,
		candidate.CurrentStageIndex,
		candidate.Status,
		nullInt(candidate.RejectionStage),
		nullString(candidate.RejectionReason),
		formatTime(candidate.CreatedAt),
		formatTime(candidate.UpdatedAt),
		nullTime(candidate.DeletedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetCandidate retrieves a live candidate, optionally scoped to a workspace.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id, workspaceID string) (persistence.Candidate, error) {
	if id == "" {
		return persistence.Candidate{}, persistence.ErrNotFound
	}

	query := fmt.Sprintf("SELECT %s FROM candidates WHERE id = ? AND deleted_at IS NULL", candidateColumns)
	args := []interface{}{id}
	if workspaceID != "" {
		query += " AND workspace_id = ?"
		args = append(args, workspaceID)
	}

	return r.scanCandidate(r.pool.db.QueryRowContext(ctx, query, args...))
}

// UpdateCandidate updates the mutable fields of a live candidate.
func (r *CandidateRepository) UpdateCandidate(ctx context.Context, candidate persistence.Candidate) error {
	if candidate.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE candidates
		SET name = ?, email = ?, position = ?, current_stage_index = ?, status = ?,
		    rejection_stage = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		candidate.Name,
		candidate.Email,
		candidate.Position,
		candidate.CurrentStageIndex,
		candidate.Status,
		nullInt(candidate.RejectionStage),
		nullString(candidate.RejectionReason),
		formatTime(candidate.UpdatedAt),
		candidate.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListCandidates returns live candidates matching the filter ordered by
// creation time.
func (r *CandidateRepository) ListCandidates(ctx context.Context, filter persistence.CandidateFilter) ([]persistence.Candidate, error) {
	query := fmt.Sprintf("SELECT %s FROM candidates", candidateColumns)

	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}
	if filter.WorkspaceID != "" {
		conditions = append(conditions, "workspace_id = ?")
		args = append(args, filter.WorkspaceID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var candidates []persistence.Candidate
	for rows.Next() {
		candidate, err := r.scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return candidates, nil
}

// ArchiveCandidate tombstones the candidate and marks it archived. Live
// stages keep their records; history stays queryable through them.
func (r *CandidateRepository) ArchiveCandidate(ctx context.Context, id, workspaceID string, archivedAt time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	query := `UPDATE candidates SET status = 'archived', deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	args := []interface{}{formatTime(archivedAt), formatTime(archivedAt), id}
	if workspaceID != "" {
		query += " AND workspace_id = ?"
		args = append(args, workspaceID)
	}

	result, err := r.pool.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CandidateRepository) scanCandidate(row rowScanner) (persistence.Candidate, error) {
	var (
		candidate            persistence.Candidate
		rejectionStage       sql.NullInt64
		rejectionReason      sql.NullString
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)

	err := row.Scan(
		&candidate.ID,
		&candidate.WorkspaceID,
		&candidate.Name,
		&candidate.Email,
		&candidate.Position,
		&candidate.CurrentStageIndex,
		&candidate.Status,
		&rejectionStage,
		&rejectionReason,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Candidate{}, persistence.ErrNotFound
		}
		return persistence.Candidate{}, r.mapper.MapError(err)
	}

	candidate.RejectionStage = intPtr(rejectionStage)
	candidate.RejectionReason = stringPtr(rejectionReason)
	if candidate.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Candidate{}, err
	}
	if candidate.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Candidate{}, err
	}
	if candidate.DeletedAt, err = timePtr(deletedAt, "deleted_at"); err != nil {
		return persistence.Candidate{}, err
	}

	return candidate, nil
}
