package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/interview-pipeline/internal/application"
	"github.com/example/interview-pipeline/internal/logging"
)

// WorkspaceHeader names the request header that scopes a request to one
// workspace. Authentication of the caller is out of scope; the header is
// trusted as resolved by an upstream gateway.
const WorkspaceHeader = "X-Workspace-ID"

// WorkspaceScope resolves the workspace scope from the request headers and
// attaches it to the request context.
func WorkspaceScope() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspaceID := strings.TrimSpace(r.Header.Get(WorkspaceHeader))
			if workspaceID != "" {
				ctx := ContextWithScope(r.Context(), application.Scope{WorkspaceID: workspaceID})
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger attaches a request-scoped logger to the context and logs the
// request's start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
