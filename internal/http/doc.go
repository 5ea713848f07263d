// Package http provides HTTP handlers and middleware for the interview
// pipeline API.
//
// The router exposes the following endpoints:
//   - GET /candidates, POST /candidates, GET /candidates/{id},
//     DELETE /candidates/{id}: candidate management exchanging the
//     `candidateDTO` payload defined in candidate_handler.go. Creation accepts
//     an optional initial stage chain; deletion archives rather than erases.
//   - POST /candidates/{id}/hire, POST /candidates/{id}/dismiss: candidate
//     status actions with strict preconditions (documentation before hire,
//     hired before dismiss).
//   - PUT /candidates/{id}/stages: submits the candidate's full stage chain;
//     stored stages are created, repositioned, or tombstoned to match.
//   - POST /stages/{id}/outcome: records a pass or fail on a stage and moves
//     the candidate through the pipeline.
//   - POST /interviews, POST /interviews/{id}/reschedule,
//     POST /interviews/{id}/outcome, POST /interviews/{id}/complete,
//     POST /interviews/{id}/cancel: interview slot management exchanging the
//     `interviewDTO` payload defined in interview_handler.go. Scheduling
//     conflicts answer 409 with the conflicting window.
//   - GET /notifications?user_id=..., POST /notifications/{id}/read: stored
//     notification access for their recipients.
//
// Requests may carry an X-Workspace-ID header; when present every lookup is
// restricted to that workspace. Request/response DTOs live alongside their
// respective handlers so tests and documentation share the same ground truth.
package http
