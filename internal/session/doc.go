// Package session holds the single document a server edits.
//
// A Manager starts with no document. CreateNew and Load open one, replacing
// whatever was open; Save persists it and keeps it open. Every other
// operation needs an open document and fails with ErrNoDocument otherwise.
//
// Methods return the confirmation text shown to the caller, or structured
// results for the read operations. Errors carry a stack trace (pkg/errors)
// and match one of the kinds ErrNotFound, ErrState or ErrValidation with
// errors.Is; failures from the document package propagate unchanged.
package session
