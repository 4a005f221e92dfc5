package flow

import "errors"

// Error variables for better error handling and testability.
var (
	// ErrCollaborator indicates an AI model call failed.
	ErrCollaborator = errors.New("collaborator call failed")
	// ErrStorage indicates a profile or history persistence failure.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidInput indicates input the router cannot act on.
	ErrInvalidInput = errors.New("invalid input")
)
