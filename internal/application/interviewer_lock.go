package application

import (
	"context"
	"sync"
)

// interviewerLocks serializes scheduling per interviewer. The conflict check
// followed by the insert is a check-then-act race under concurrent requests;
// holding the interviewer's slot for that window closes it. Locks for
// distinct interviewers never contend, and entries are dropped as soon as the
// last waiter releases.
type interviewerLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func newInterviewerLocks() *interviewerLocks {
	return &interviewerLocks{entries: make(map[string]*lockEntry)}
}

// Acquire blocks until the interviewer's lock is held or the context ends.
// The returned release function must be called exactly once.
func (l *interviewerLocks) Acquire(ctx context.Context, interviewerID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[interviewerID]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[interviewerID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return func() {
			<-entry.sem
			l.release(interviewerID, entry)
		}, nil
	case <-ctx.Done():
		l.release(interviewerID, entry)
		return nil, ctx.Err()
	}
}

func (l *interviewerLocks) release(interviewerID string, entry *lockEntry) {
	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, interviewerID)
	}
	l.mu.Unlock()
}
