// Package workflow defines the ordered, immutable catalogue of onboarding
// steps shared by all clients.
package workflow

import (
	"time"

	"github.com/aegisflow/aegis/pkg/models"
)

// StepSpec describes one entry of the workflow definition: which executor
// performs it, how it is displayed, and whether a human decision gates it.
type StepSpec struct {
	ID               string
	Name             string
	Description      string
	ExecutorID       string
	Config           map[string]any
	RequiresApproval bool
}

// Definition is an ordered catalogue of step specifications. It is built once
// at startup and never mutated afterwards.
type Definition struct {
	steps []StepSpec
}

// NewDefinition creates a definition from the given specs, preserving order.
func NewDefinition(steps []StepSpec) *Definition {
	copied := make([]StepSpec, len(steps))
	copy(copied, steps)

	return &Definition{steps: copied}
}

// Steps returns the step specifications in workflow order.
func (d *Definition) Steps() []StepSpec {
	steps := make([]StepSpec, len(d.steps))
	copy(steps, d.steps)

	return steps
}

// Len returns the number of steps in the definition.
func (d *Definition) Len() int {
	return len(d.steps)
}

// StepAt returns the spec at the given cursor position.
func (d *Definition) StepAt(index int) (StepSpec, bool) {
	if index < 0 || index >= len(d.steps) {
		return StepSpec{}, false
	}

	return d.steps[index], true
}

// Instantiate creates the per-client step records for this definition, all in
// pending state.
func (d *Definition) Instantiate() []*models.OnboardingStep {
	steps := make([]*models.OnboardingStep, len(d.steps))

	for i, spec := range d.steps {
		steps[i] = &models.OnboardingStep{
			ID:          spec.ID,
			Name:        spec.Name,
			Description: spec.Description,
			Status:      models.StepStatusPending,
		}
	}

	return steps
}

// Default returns the standard client-onboarding workflow. Step latencies are
// simulated by the executors; the values here keep local runs visibly paced.
func Default() *Definition {
	return NewDefinition([]StepSpec{
		{
			ID:          "create_drive_folder",
			Name:        "Create Google Drive Folder",
			Description: "Setting up dedicated project folder in Google Drive",
			ExecutorID:  "drive_folder",
			Config:      map[string]any{"latency": (3 * time.Second).String()},
		},
		{
			ID:               "draft_contract",
			Name:             "Draft Contract",
			Description:      "Generating project contract in Google Docs",
			ExecutorID:       "draft_contract",
			Config:           map[string]any{"latency": (4 * time.Second).String(), "template": "standard_service_agreement"},
			RequiresApproval: true,
		},
		{
			ID:               "human_approval",
			Name:             "Contract Review",
			Description:      "Waiting for human approval of the contract",
			RequiresApproval: true,
		},
		{
			ID:          "create_communication_channel",
			Name:        "Setup Communication",
			Description: "Creating Slack channel for project communication",
			ExecutorID:  "slack_channel",
			Config:      map[string]any{"latency": (3 * time.Second).String()},
		},
		{
			ID:          "setup_github_repo",
			Name:        "Create GitHub Repository",
			Description: "Setting up GitHub repository for project code",
			ExecutorID:  "github_repo",
			Config:      map[string]any{"latency": (3 * time.Second).String(), "organization": "aegisflow"},
		},
		{
			ID:          "create_notion_board",
			Name:        "Setup Project Board",
			Description: "Creating Notion project management board",
			ExecutorID:  "notion_board",
			Config:      map[string]any{"latency": (4 * time.Second).String()},
		},
		{
			ID:          "send_welcome_email",
			Name:        "Send Welcome Email",
			Description: "Sending welcome email with calendar invite",
			ExecutorID:  "welcome_email",
			Config:      map[string]any{"latency": (3 * time.Second).String()},
		},
		{
			ID:          "setup_billing",
			Name:        "Setup Billing",
			Description: "Creating Stripe customer and initial invoice",
			ExecutorID:  "stripe_billing",
			Config:      map[string]any{"latency": (3 * time.Second).String()},
		},
	})
}
