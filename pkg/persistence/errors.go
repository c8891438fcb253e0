package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrClientNotFound indicates a client was not found by the given identifier.
	ErrClientNotFound = errors.New("client not found")

	// ErrProgressNotFound indicates no onboarding progress exists for the client.
	ErrProgressNotFound = errors.New("onboarding progress not found")

	// ErrClientAlreadyExists indicates a client with the same identifier already exists.
	ErrClientAlreadyExists = errors.New("client already exists")
)

// ClientError wraps client-related storage errors with operation context.
type ClientError struct {
	Op       string
	ClientID string
	Err      error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s operation failed for client %s: %v", e.Op, e.ClientID, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func (e *ClientError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewClientError creates a new client storage error with context.
func NewClientError(op, clientID string, err error) *ClientError {
	return &ClientError{
		Op:       op,
		ClientID: clientID,
		Err:      err,
	}
}

// IsClientNotFound checks if an error indicates a client was not found.
func IsClientNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound)
}

// IsProgressNotFound checks if an error indicates onboarding progress was not found.
func IsProgressNotFound(err error) bool {
	return errors.Is(err, ErrProgressNotFound)
}
