package drivefolder_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisflow/aegis/pkg/executors/drivefolder"
	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/protocol"
)

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	factory := drivefolder.NewExecutorFactory()
	assert.Equal(t, "drive_folder", factory.ID())

	executor, err := factory.Create(map[string]any{})
	require.NoError(t, err)

	stepCtx := protocol.StepContext{
		Client: &models.Client{
			ID:          "c1",
			Name:        "Acme Corp",
			ProjectType: models.ProjectTypeWebDevelopment,
		},
		Step: &models.OnboardingStep{ID: "create_drive_folder"},
	}

	results, err := executor.Execute(context.Background(), stepCtx, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp - Web Development Project", results["folder_name"])
	assert.Equal(t, "client_read_write", results["permissions"])

	folderID, ok := results["folder_id"].(string)
	require.True(t, ok)
	assert.Contains(t, results["folder_url"], folderID)
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	t.Parallel()

	factory := drivefolder.NewExecutorFactory()

	executor, err := factory.Create(map[string]any{"latency": "1m"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stepCtx := protocol.StepContext{
		Client: &models.Client{ID: "c1", Name: "Acme", ProjectType: models.ProjectTypeDesign},
		Step:   &models.OnboardingStep{ID: "create_drive_folder"},
	}

	_, err = executor.Execute(ctx, stepCtx, slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, context.Canceled)
}
