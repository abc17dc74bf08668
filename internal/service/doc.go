// Package service holds the seating workflows: the persistence
// reconciler, server-side editing, room and sub-room administration, the
// proposal review workflow, archival with its expiry sweeper, and the
// per-user preferences and inbox.
//
// Every operation takes the acting model.Actor supplied by the identity
// middleware.  Failures are reported as *ValidationError (bad input),
// *ConflictError (precondition against current state), ErrForbidden, or
// store errors wrapped with context.
package service
