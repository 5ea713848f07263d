package application

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
)

func TestMapRepoError(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := mapRepoError(fmt.Errorf("load: %w", persistence.ErrNotFound))
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("busy database maps to concurrency", func(t *testing.T) {
		err := mapRepoError(persistence.ErrBusy)
		if !errors.Is(err, ErrConcurrency) {
			t.Fatalf("expected ErrConcurrency, got %v", err)
		}
	})

	t.Run("constraint violations surface as validation", func(t *testing.T) {
		err := mapRepoError(persistence.ErrForeignKeyViolation)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		cause := errors.New("disk on fire")
		if err := mapRepoError(cause); !errors.Is(err, cause) {
			t.Fatalf("expected cause preserved, got %v", err)
		}
	})
}

func TestConflictError_Error(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	err := &ConflictError{
		InterviewerID:    "user-1",
		WithInterviewID:  "iv-1",
		ConflictingStart: start,
		ConflictingEnd:   start.Add(30 * time.Minute),
	}

	msg := err.Error()
	if !strings.Contains(msg, "user-1") {
		t.Fatalf("expected interviewer in message, got %q", msg)
	}
	if !strings.Contains(msg, "2025-06-02T10:00:00Z") || !strings.Contains(msg, "2025-06-02T10:30:00Z") {
		t.Fatalf("expected conflicting window in message, got %q", msg)
	}
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not_found"},
		{fmt.Errorf("%w: lock", ErrConcurrency), "concurrency"},
		{&ValidationError{FieldErrors: map[string]string{"name": "required"}}, "validation"},
		{&ConflictError{Reason: "stage done"}, "conflict"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
