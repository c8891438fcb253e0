package engine

import "errors"

var (
	// ErrStepNotFound indicates the referenced step is not part of the
	// client's workflow.
	ErrStepNotFound = errors.New("step not found")

	// ErrNotAwaitingApproval indicates a decision was submitted for a step
	// that is not suspended at the approval gate.
	ErrNotAwaitingApproval = errors.New("step is not awaiting approval")

	// ErrEngineClosed indicates the engine is shutting down and no longer
	// accepts new onboarding runs.
	ErrEngineClosed = errors.New("engine is closed")

	// ErrNotRunning indicates no active workflow goroutine exists for the
	// client.
	ErrNotRunning = errors.New("onboarding is not running")
)

// IsStepNotFound returns true when err wraps ErrStepNotFound.
func IsStepNotFound(err error) bool {
	return errors.Is(err, ErrStepNotFound)
}

// IsNotAwaitingApproval returns true when err wraps ErrNotAwaitingApproval.
func IsNotAwaitingApproval(err error) bool {
	return errors.Is(err, ErrNotAwaitingApproval)
}
