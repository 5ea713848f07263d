package http

import (
	"context"

	"github.com/example/interview-pipeline/internal/application"
)

type contextKey string

const (
	scopeContextKey          contextKey = "scope"
	candidateIDContextKey    contextKey = "candidate_id"
	stageIDContextKey        contextKey = "stage_id"
	interviewIDContextKey    contextKey = "interview_id"
	notificationIDContextKey contextKey = "notification_id"
)

// ContextWithScope returns a derived context carrying the request's workspace
// scope.
func ContextWithScope(ctx context.Context, scope application.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey, scope)
}

// ScopeFromContext extracts the workspace scope resolved for the request. An
// absent scope means no workspace filtering.
func ScopeFromContext(ctx context.Context) application.Scope {
	scope, _ := ctx.Value(scopeContextKey).(application.Scope)
	return scope
}

// ContextWithCandidateID injects the candidate identifier resolved from the request path.
func ContextWithCandidateID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, candidateIDContextKey, id)
}

// CandidateIDFromContext extracts a candidate identifier previously associated with the context.
func CandidateIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(candidateIDContextKey).(string)
	return id, ok
}

// ContextWithStageID injects the stage identifier resolved from the request path.
func ContextWithStageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, stageIDContextKey, id)
}

// StageIDFromContext extracts a stage identifier previously associated with the context.
func StageIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(stageIDContextKey).(string)
	return id, ok
}

// ContextWithInterviewID injects the interview identifier resolved from the request path.
func ContextWithInterviewID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, interviewIDContextKey, id)
}

// InterviewIDFromContext extracts an interview identifier previously associated with the context.
func InterviewIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(interviewIDContextKey).(string)
	return id, ok
}

// ContextWithNotificationID injects the notification identifier resolved from the request path.
func ContextWithNotificationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, notificationIDContextKey, id)
}

// NotificationIDFromContext extracts a notification identifier previously associated with the context.
func NotificationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(notificationIDContextKey).(string)
	return id, ok
}
