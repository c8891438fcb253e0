package models

import (
	"errors"
	"fmt"
	"time"
)

// StepStatus represents the lifecycle state of a single onboarding step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
)

// ErrInvalidStepTransition indicates a step status change that violates the
// monotonic transition rule (pending -> in_progress -> completed|failed).
var ErrInvalidStepTransition = errors.New("invalid step status transition")

// Well-known metadata keys written by executors and the approval gate.
const (
	MetadataKeyApproved = "approved"
	MetadataKeyFeedback = "feedback"
)

// OnboardingStep is one instance of a workflow definition entry, scoped to a
// client. Status transitions are monotonic: a step never returns to pending
// once advanced and never leaves a terminal state.
type OnboardingStep struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Status       StepStatus     `json:"status"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Terminal reports whether the step has reached a final state.
func (s *OnboardingStep) Terminal() bool {
	return s.Status == StepStatusCompleted || s.Status == StepStatusFailed
}

// MarkInProgress transitions the step from pending to in_progress.
func (s *OnboardingStep) MarkInProgress(now time.Time) error {
	if s.Status != StepStatusPending {
		return fmt.Errorf("%w: %s -> %s for step %s", ErrInvalidStepTransition, s.Status, StepStatusInProgress, s.ID)
	}

	s.Status = StepStatusInProgress
	s.StartedAt = &now

	return nil
}

// MarkCompleted transitions the step from in_progress to completed, merging
// result metadata into the step.
func (s *OnboardingStep) MarkCompleted(now time.Time, metadata map[string]any) error {
	if s.Status != StepStatusInProgress {
		return fmt.Errorf("%w: %s -> %s for step %s", ErrInvalidStepTransition, s.Status, StepStatusCompleted, s.ID)
	}

	s.Status = StepStatusCompleted
	s.CompletedAt = &now
	s.MergeMetadata(metadata)

	return nil
}

// MarkFailed transitions the step from in_progress to failed with the given
// error message.
func (s *OnboardingStep) MarkFailed(now time.Time, message string) error {
	if s.Status != StepStatusInProgress {
		return fmt.Errorf("%w: %s -> %s for step %s", ErrInvalidStepTransition, s.Status, StepStatusFailed, s.ID)
	}

	s.Status = StepStatusFailed
	s.CompletedAt = &now
	s.ErrorMessage = message

	return nil
}

// MergeMetadata merges the given key/value pairs into the step metadata.
func (s *OnboardingStep) MergeMetadata(metadata map[string]any) {
	if len(metadata) == 0 {
		return
	}

	if s.Metadata == nil {
		s.Metadata = make(map[string]any, len(metadata))
	}

	for k, v := range metadata {
		s.Metadata[k] = v
	}
}

// Clone returns a deep-enough copy of the step: the metadata map is copied,
// values are shared (executor results are treated as immutable once recorded).
func (s *OnboardingStep) Clone() *OnboardingStep {
	clone := *s

	if s.StartedAt != nil {
		t := *s.StartedAt
		clone.StartedAt = &t
	}

	if s.CompletedAt != nil {
		t := *s.CompletedAt
		clone.CompletedAt = &t
	}

	if s.Metadata != nil {
		clone.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}
