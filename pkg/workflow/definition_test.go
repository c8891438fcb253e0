package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/workflow"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	def := workflow.Default()

	expectedOrder := []string{
		"create_drive_folder",
		"draft_contract",
		"human_approval",
		"create_communication_channel",
		"setup_github_repo",
		"create_notion_board",
		"send_welcome_email",
		"setup_billing",
	}

	require.Equal(t, len(expectedOrder), def.Len())

	for i, id := range expectedOrder {
		spec, ok := def.StepAt(i)
		require.True(t, ok)
		assert.Equal(t, id, spec.ID)
	}

	contract, _ := def.StepAt(1)
	assert.True(t, contract.RequiresApproval)
	assert.Equal(t, "draft_contract", contract.ExecutorID)

	review, _ := def.StepAt(2)
	assert.True(t, review.RequiresApproval)
	assert.Empty(t, review.ExecutorID, "contract review has no executor")
}

func TestDefinition_StepAt_OutOfRange(t *testing.T) {
	t.Parallel()

	def := workflow.Default()

	_, ok := def.StepAt(-1)
	assert.False(t, ok)

	_, ok = def.StepAt(def.Len())
	assert.False(t, ok)
}

func TestDefinition_Instantiate(t *testing.T) {
	t.Parallel()

	def := workflow.Default()
	steps := def.Instantiate()

	require.Len(t, steps, def.Len())

	for i, step := range steps {
		spec, _ := def.StepAt(i)
		assert.Equal(t, spec.ID, step.ID)
		assert.Equal(t, spec.Name, step.Name)
		assert.Equal(t, models.StepStatusPending, step.Status)
		assert.Nil(t, step.StartedAt)
	}

	// Instances are independent between clients.
	other := def.Instantiate()
	require.NoError(t, steps[0].MarkInProgress(time.Now().UTC()))
	assert.Equal(t, models.StepStatusPending, other[0].Status)
}

func TestNewDefinition_CopiesSpecs(t *testing.T) {
	t.Parallel()

	specs := []workflow.StepSpec{{ID: "a", Name: "A"}}
	def := workflow.NewDefinition(specs)

	specs[0].ID = "mutated"

	spec, ok := def.StepAt(0)
	require.True(t, ok)
	assert.Equal(t, "a", spec.ID)
}
