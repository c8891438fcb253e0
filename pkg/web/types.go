// Package web provides HTTP request and response types for the onboarding API.
package web

import (
	"time"

	"github.com/aegisflow/aegis/pkg/models"
)

// BaseResponse carries the fields shared by every API response.
type BaseResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseResponse(message string) BaseResponse {
	return BaseResponse{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// SuccessResponse is the generic success envelope with an optional data map.
type SuccessResponse struct {
	BaseResponse

	Data map[string]any `json:"data,omitempty"`
}

// ClientCreatedResponse is returned when onboarding starts.
type ClientCreatedResponse struct {
	SuccessResponse

	ClientID string `json:"client_id"`
}

// OnboardingStatusResponse is the full status snapshot for one client.
type OnboardingStatusResponse struct {
	SuccessResponse

	ClientID           string                   `json:"client_id"`
	Status             models.ClientStatus      `json:"status"`
	ProgressPercentage int                      `json:"progress_percentage"`
	CurrentStep        string                   `json:"current_step"`
	Steps              []*models.OnboardingStep `json:"steps"`
}

// ApprovalDecisionRequest is the request body for resolving an approval gate.
type ApprovalDecisionRequest struct {
	Approved *bool  `json:"approved"           validate:"required"`
	Feedback string `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

// ApprovalResponse confirms a recorded approval decision.
type ApprovalResponse struct {
	BaseResponse

	ClientID string `json:"client_id"`
	StepID   string `json:"step_id"`
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback,omitempty"`
}
