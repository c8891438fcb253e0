// Package events defines event types and structures for onboarding lifecycle
// notifications.
package events

import (
	"time"

	"github.com/aegisflow/aegis/pkg/models"
)

type EventType string

// Topic carries all onboarding events; consumers filter by type and client id.
const Topic = "aegis.onboarding.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	StepUpdateEvent         EventType = "step_update"
	ApprovalRequestEvent    EventType = "approval_request"
	OnboardingCompleteEvent EventType = "onboarding_complete"
	ErrorEvent              EventType = "error"
)

// Envelope is the wire shape delivered to observers on the real-time channel.
type Envelope struct {
	Type      EventType `json:"type"`
	ClientID  string    `json:"client_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ClientID  string    `json:"client_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (b BaseEvent) GetClientID() string {
	return b.ClientID
}

// StepUpdate reports a step status transition and the recomputed progress.
type StepUpdate struct {
	BaseEvent

	StepID             string            `json:"step_id"`
	StepStatus         models.StepStatus `json:"step_status"`
	ProgressPercentage int               `json:"progress_percentage"`
	CurrentStep        *int              `json:"current_step,omitempty"`
	Metadata           map[string]any    `json:"metadata,omitempty"`
}

func (e StepUpdate) GetType() EventType {
	return StepUpdateEvent
}

func (e StepUpdate) Envelope() Envelope {
	return Envelope{
		Type:      StepUpdateEvent,
		ClientID:  e.ClientID,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"step_id":             e.StepID,
			"step_status":         e.StepStatus,
			"progress_percentage": e.ProgressPercentage,
			"current_step":        e.CurrentStep,
			"metadata":            e.Metadata,
		},
	}
}

// ApprovalRequest announces that a step is suspended awaiting a human decision.
type ApprovalRequest struct {
	BaseEvent

	StepID       string         `json:"step_id"`
	ApprovalData map[string]any `json:"approval_data"`
}

func (e ApprovalRequest) GetType() EventType {
	return ApprovalRequestEvent
}

func (e ApprovalRequest) Envelope() Envelope {
	return Envelope{
		Type:      ApprovalRequestEvent,
		ClientID:  e.ClientID,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"step_id":       e.StepID,
			"approval_data": e.ApprovalData,
		},
	}
}

// OnboardingComplete reports terminal success of the whole workflow.
type OnboardingComplete struct {
	BaseEvent

	CompletedAt time.Time      `json:"completed_at"`
	Summary     map[string]any `json:"summary,omitempty"`
}

func (e OnboardingComplete) GetType() EventType {
	return OnboardingCompleteEvent
}

func (e OnboardingComplete) Envelope() Envelope {
	return Envelope{
		Type:      OnboardingCompleteEvent,
		ClientID:  e.ClientID,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"completed_at": e.CompletedAt,
			"summary":      e.Summary,
		},
	}
}

// Error reports a workflow-level failure to observers.
type Error struct {
	BaseEvent

	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorDetails map[string]any `json:"error_details,omitempty"`
	Message      string         `json:"message"`
}

func (e Error) GetType() EventType {
	return ErrorEvent
}

func (e Error) Envelope() Envelope {
	return Envelope{
		Type:      ErrorEvent,
		ClientID:  e.ClientID,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"error_code":    e.ErrorCode,
			"error_details": e.ErrorDetails,
			"message":       e.Message,
		},
	}
}
