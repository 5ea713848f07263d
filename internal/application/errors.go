package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
)

var (
	// ErrNotFound is returned when the requested resource does not exist or is
	// tombstoned.
	ErrNotFound = errors.New("application: not found")
	// ErrConcurrency is returned when a lock or transaction could not be
	// serialized; callers may retry.
	ErrConcurrency = errors.New("application: concurrency failure")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports an operation that clashes with existing state: a
// scheduling overlap, a stage that already carries a terminal outcome, or an
// illegal candidate status transition.
type ConflictError struct {
	Reason           string
	InterviewerID    string
	WithInterviewID  string
	ConflictingStart time.Time
	ConflictingEnd   time.Time
}

// Error names the conflicting time window when one exists, so scheduling
// failures are actionable rather than generic.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	if !c.ConflictingStart.IsZero() {
		return fmt.Sprintf("scheduling conflict: interviewer %s is already booked %s to %s",
			c.InterviewerID,
			c.ConflictingStart.UTC().Format(time.RFC3339),
			c.ConflictingEnd.UTC().Format(time.RFC3339),
		)
	}
	if c.Reason != "" {
		return c.Reason
	}
	return "conflict with current state"
}

// mapRepoError folds persistence sentinels into the application taxonomy.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrBusy):
		return fmt.Errorf("%w: %v", ErrConcurrency, err)
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		vErr := &ValidationError{}
		vErr.add("references", "related records are missing")
		return vErr
	case errors.Is(err, persistence.ErrConstraintViolation), errors.Is(err, persistence.ErrDuplicate):
		vErr := &ValidationError{}
		vErr.add("record", "violates storage constraints")
		return vErr
	}
	return err
}
