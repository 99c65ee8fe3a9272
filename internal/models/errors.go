package models

import (
	"errors"
	"fmt"
)

var (
	// ErrProposalNotFound is returned when a proposal does not exist or is
	// outside the actor's organization.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrConcurrentModification is returned when a proposal's status changed
	// between read and write; the caller should reload and retry.
	ErrConcurrentModification = errors.New("proposal was modified concurrently")

	// ErrAssignmentNotFound is returned when a reviewer has no pending
	// assignment for the proposal.
	ErrAssignmentNotFound = errors.New("no pending review assignment for this reviewer")
)

// PermissionDeniedError carries the policy's human-readable denial reason
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return e.Reason
}

// ValidationError carries field-level detail for malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
