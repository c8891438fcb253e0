package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisflow/aegis/pkg/models"
)

func pendingStep(id string) *models.OnboardingStep {
	return &models.OnboardingStep{
		ID:     id,
		Name:   id,
		Status: models.StepStatusPending,
	}
}

func TestOnboardingStep_Transitions(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("pending to in_progress to completed", func(t *testing.T) {
		t.Parallel()

		step := pendingStep("draft_contract")

		require.NoError(t, step.MarkInProgress(now))
		assert.Equal(t, models.StepStatusInProgress, step.Status)
		require.NotNil(t, step.StartedAt)

		require.NoError(t, step.MarkCompleted(now, map[string]any{"document_id": "doc_1"}))
		assert.Equal(t, models.StepStatusCompleted, step.Status)
		require.NotNil(t, step.CompletedAt)
		assert.Equal(t, "doc_1", step.Metadata["document_id"])
		assert.True(t, step.Terminal())
	})

	t.Run("pending to in_progress to failed", func(t *testing.T) {
		t.Parallel()

		step := pendingStep("setup_billing")

		require.NoError(t, step.MarkInProgress(now))
		require.NoError(t, step.MarkFailed(now, "provider unavailable"))
		assert.Equal(t, models.StepStatusFailed, step.Status)
		assert.Equal(t, "provider unavailable", step.ErrorMessage)
		assert.True(t, step.Terminal())
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		t.Parallel()

		step := pendingStep("create_drive_folder")
		require.NoError(t, step.MarkInProgress(now))
		require.NoError(t, step.MarkCompleted(now, nil))

		err := step.MarkInProgress(now)
		require.ErrorIs(t, err, models.ErrInvalidStepTransition)

		err = step.MarkFailed(now, "too late")
		require.ErrorIs(t, err, models.ErrInvalidStepTransition)
	})

	t.Run("cannot complete a pending step", func(t *testing.T) {
		t.Parallel()

		step := pendingStep("send_welcome_email")

		err := step.MarkCompleted(now, nil)
		require.ErrorIs(t, err, models.ErrInvalidStepTransition)
	})
}

func TestOnboardingProgress_Recompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		completed int
		expected  int
	}{
		{name: "no steps", total: 0, completed: 0, expected: 0},
		{name: "none completed", total: 8, completed: 0, expected: 0},
		{name: "three of eight rounds to 38", total: 8, completed: 3, expected: 38},
		{name: "one of three rounds to 33", total: 3, completed: 1, expected: 33},
		{name: "two of three rounds to 67", total: 3, completed: 2, expected: 67},
		{name: "all completed", total: 8, completed: 8, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			progress := &models.OnboardingProgress{ClientID: "c1"}
			now := time.Now().UTC()

			for i := 0; i < tt.total; i++ {
				step := pendingStep("step")
				if i < tt.completed {
					require.NoError(t, step.MarkInProgress(now))
					require.NoError(t, step.MarkCompleted(now, nil))
				}

				progress.Steps = append(progress.Steps, step)
			}

			progress.Recompute()
			assert.Equal(t, tt.expected, progress.ProgressPercentage)
		})
	}
}

func TestOnboardingProgress_CurrentStepName(t *testing.T) {
	t.Parallel()

	progress := &models.OnboardingProgress{
		Steps: []*models.OnboardingStep{
			{ID: "a", Name: "Create Folder", Status: models.StepStatusCompleted},
			{ID: "b", Name: "Draft Contract", Status: models.StepStatusInProgress},
		},
		CurrentStep: 1,
	}

	assert.Equal(t, "Draft Contract", progress.CurrentStepName())

	progress.CurrentStep = 2
	assert.Equal(t, "Completed", progress.CurrentStepName())
}

func TestOnboardingProgress_Clone(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	progress := &models.OnboardingProgress{
		ClientID:  "c1",
		StartedAt: &now,
		Steps: []*models.OnboardingStep{
			{ID: "a", Status: models.StepStatusCompleted, Metadata: map[string]any{"folder_id": "f1"}},
		},
	}

	clone := progress.Clone()
	clone.Steps[0].Metadata["folder_id"] = "mutated"
	clone.Steps[0].Status = models.StepStatusFailed

	assert.Equal(t, "f1", progress.Steps[0].Metadata["folder_id"])
	assert.Equal(t, models.StepStatusCompleted, progress.Steps[0].Status)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	input := models.ClientInput{
		Name:         "Acme Corp",
		Email:        "ops@acme.test",
		ProjectType:  models.ProjectTypeWebDevelopment,
		ProjectScope: "Build the new storefront",
	}

	client := models.NewClient("client-1", input, now)

	assert.Equal(t, "client-1", client.ID)
	assert.Equal(t, models.ClientStatusPending, client.Status)
	assert.Equal(t, now, client.CreatedAt)
	assert.Equal(t, now, client.UpdatedAt)
	assert.Nil(t, client.Resources.DriveFolderID)
}

func TestClient_Clone(t *testing.T) {
	t.Parallel()

	folderID := "folder-1"
	client := &models.Client{
		ID:        "c1",
		Name:      "Acme Corp",
		Resources: models.ClientResources{DriveFolderID: &folderID},
	}

	clone := client.Clone()
	*clone.Resources.DriveFolderID = "mutated"

	assert.Equal(t, "folder-1", *client.Resources.DriveFolderID)
}
