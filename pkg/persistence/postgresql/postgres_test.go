package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/persistence"
	"github.com/aegisflow/aegis/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDB(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Children first, parents last.
	for _, table := range []string{"onboarding_progress", "clients", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("aegis_test"),
			postgres.WithUsername("aegis"),
			postgres.WithPassword("aegis"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDB(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDB(ctx, t, databaseURL)

		err = store.Close(ctx)
		require.NoError(t, err)
	})

	return store, ctx
}

func testClient(status models.ClientStatus, createdAt time.Time) *models.Client {
	return &models.Client{
		ID:           uuid.NewString(),
		Name:         "Acme Corp",
		Email:        "ops@acme.test",
		Company:      "Acme Holdings",
		ProjectType:  models.ProjectTypeWebDevelopment,
		ProjectScope: "Build the new storefront for the holiday season",
		BudgetRange:  "$10k-$25k",
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestPersistence_ClientLifecycle(t *testing.T) {
	store, ctx := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	client := testClient(models.ClientStatusPending, now)

	require.NoError(t, store.SaveClient(ctx, client))

	loaded, err := store.ClientByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.Name, loaded.Name)
	assert.Equal(t, client.Company, loaded.Company)
	assert.Equal(t, client.BudgetRange, loaded.BudgetRange)
	assert.Nil(t, loaded.Resources.DriveFolderID)
	assert.True(t, client.CreatedAt.Equal(loaded.CreatedAt))

	// Upsert with resources.
	folderID := "drive_folder_abc123"
	client.Status = models.ClientStatusInProgress
	client.Resources.DriveFolderID = &folderID
	require.NoError(t, store.SaveClient(ctx, client))

	loaded, err = store.ClientByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClientStatusInProgress, loaded.Status)
	require.NotNil(t, loaded.Resources.DriveFolderID)
	assert.Equal(t, folderID, *loaded.Resources.DriveFolderID)

	require.NoError(t, store.DeleteClient(ctx, client.ID))

	_, err = store.ClientByID(ctx, client.ID)
	require.True(t, persistence.IsClientNotFound(err))

	err = store.DeleteClient(ctx, client.ID)
	require.True(t, persistence.IsClientNotFound(err))
}

func TestPersistence_ListClients(t *testing.T) {
	store, ctx := setupTestDB(t)

	base := time.Now().UTC().Truncate(time.Microsecond)

	first := testClient(models.ClientStatusCompleted, base.Add(-2*time.Hour))
	second := testClient(models.ClientStatusInProgress, base.Add(-time.Hour))
	third := testClient(models.ClientStatusInProgress, base)

	for _, client := range []*models.Client{first, second, third} {
		require.NoError(t, store.SaveClient(ctx, client))
	}

	result, err := store.Clients(ctx, persistence.ListClientsOptions{})
	require.NoError(t, err)
	require.Len(t, result.Clients, 3)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, third.ID, result.Clients[0].ID)
	assert.Equal(t, first.ID, result.Clients[2].ID)

	status := models.ClientStatusInProgress
	result, err = store.Clients(ctx, persistence.ListClientsOptions{Status: &status})
	require.NoError(t, err)
	assert.Len(t, result.Clients, 2)
	assert.Equal(t, 2, result.Total)

	result, err = store.Clients(ctx, persistence.ListClientsOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, result.Clients, 1)
	assert.Equal(t, second.ID, result.Clients[0].ID)
	assert.Equal(t, 3, result.Total)
}

func TestPersistence_ProgressLifecycle(t *testing.T) {
	store, ctx := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	client := testClient(models.ClientStatusInProgress, now)
	require.NoError(t, store.SaveClient(ctx, client))

	progress := &models.OnboardingProgress{
		ClientID: client.ID,
		Steps: []*models.OnboardingStep{
			{ID: "create_drive_folder", Name: "Create Folder", Status: models.StepStatusCompleted, Metadata: map[string]any{"folder_id": "f_1"}},
			{ID: "draft_contract", Name: "Draft Contract", Status: models.StepStatusInProgress},
		},
		CurrentStep:   1,
		OverallStatus: models.ClientStatusInProgress,
		StartedAt:     &now,
	}
	progress.Recompute()

	require.NoError(t, store.SaveProgress(ctx, progress))

	loaded, err := store.ProgressByClientID(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Steps, 2)
	assert.Equal(t, 1, loaded.CurrentStep)
	assert.Equal(t, 50, loaded.ProgressPercentage)
	assert.Equal(t, "f_1", loaded.Steps[0].Metadata["folder_id"])
	require.NotNil(t, loaded.StartedAt)

	// Upsert advances the cursor.
	completedAt := now.Add(time.Minute)
	require.NoError(t, loaded.Steps[1].MarkCompleted(completedAt, map[string]any{"document_id": "doc_1"}))
	loaded.CurrentStep = 2
	loaded.OverallStatus = models.ClientStatusCompleted
	loaded.CompletedAt = &completedAt
	loaded.Recompute()
	require.NoError(t, store.SaveProgress(ctx, loaded))

	final, err := store.ProgressByClientID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClientStatusCompleted, final.OverallStatus)
	assert.Equal(t, 100, final.ProgressPercentage)

	_, err = store.ProgressByClientID(ctx, uuid.NewString())
	require.True(t, persistence.IsProgressNotFound(err))
}

func TestPersistence_DeleteClientCascadesProgress(t *testing.T) {
	store, ctx := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	client := testClient(models.ClientStatusInProgress, now)
	require.NoError(t, store.SaveClient(ctx, client))
	require.NoError(t, store.SaveProgress(ctx, &models.OnboardingProgress{
		ClientID:      client.ID,
		Steps:         []*models.OnboardingStep{{ID: "create_drive_folder", Status: models.StepStatusPending}},
		OverallStatus: models.ClientStatusPending,
	}))

	require.NoError(t, store.DeleteClient(ctx, client.ID))

	_, err := store.ProgressByClientID(ctx, client.ID)
	require.True(t, persistence.IsProgressNotFound(err))
}

func TestPersistence_HealthCheck(t *testing.T) {
	store, ctx := setupTestDB(t)

	require.NoError(t, store.HealthCheck(ctx))
}
