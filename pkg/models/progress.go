package models

import (
	"math"
	"time"
)

// OnboardingProgress is the aggregate onboarding view for one client: the
// ordered step sequence, the cursor, and the overall status. It is created
// together with the Client and mutated exclusively by the engine.
type OnboardingProgress struct {
	ClientID           string            `json:"client_id"`
	Steps              []*OnboardingStep `json:"steps"`
	CurrentStep        int               `json:"current_step"`
	OverallStatus      ClientStatus      `json:"overall_status"`
	StartedAt          *time.Time        `json:"started_at,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	ProgressPercentage int               `json:"progress_percentage"`
}

// Recompute derives the progress percentage from the completed-step ratio.
// The result is always within [0, 100].
func (p *OnboardingProgress) Recompute() {
	if len(p.Steps) == 0 {
		p.ProgressPercentage = 0

		return
	}

	completed := 0

	for _, step := range p.Steps {
		if step.Status == StepStatusCompleted {
			completed++
		}
	}

	p.ProgressPercentage = int(math.Round(float64(completed) / float64(len(p.Steps)) * 100))
}

// StepByID returns the step with the given identifier, or nil.
func (p *OnboardingProgress) StepByID(stepID string) *OnboardingStep {
	for _, step := range p.Steps {
		if step.ID == stepID {
			return step
		}
	}

	return nil
}

// CurrentStepName returns the display name of the step at the cursor, or
// "Completed" when the cursor has moved past the last step.
func (p *OnboardingProgress) CurrentStepName() string {
	if p.CurrentStep >= 0 && p.CurrentStep < len(p.Steps) {
		return p.Steps[p.CurrentStep].Name
	}

	return "Completed"
}

// Clone returns a deep copy of the progress record. Readers always receive
// clones so a snapshot can never observe a partial update.
func (p *OnboardingProgress) Clone() *OnboardingProgress {
	clone := *p

	if p.StartedAt != nil {
		t := *p.StartedAt
		clone.StartedAt = &t
	}

	if p.CompletedAt != nil {
		t := *p.CompletedAt
		clone.CompletedAt = &t
	}

	clone.Steps = make([]*OnboardingStep, len(p.Steps))
	for i, step := range p.Steps {
		clone.Steps[i] = step.Clone()
	}

	return &clone
}
