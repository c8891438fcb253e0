package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/persistence"
)

// ProgressRepository handles onboarding progress database operations.
type ProgressRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *sql.DB, logger *slog.Logger) *ProgressRepository {
	return &ProgressRepository{db: db, logger: logger}
}

// Save upserts the progress record for a client.
func (r *ProgressRepository) Save(ctx context.Context, progress *models.OnboardingProgress) error {
	steps, err := json.Marshal(progress.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal progress steps: %w", err)
	}

	query := `
		INSERT INTO onboarding_progress (
			client_id, steps, current_step, overall_status,
			started_at, completed_at, progress_percentage
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (client_id) DO UPDATE SET
			steps = EXCLUDED.steps,
			current_step = EXCLUDED.current_step,
			overall_status = EXCLUDED.overall_status,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			progress_percentage = EXCLUDED.progress_percentage
	`

	_, err = r.db.ExecContext(ctx, query,
		progress.ClientID, steps, progress.CurrentStep, progress.OverallStatus,
		progress.StartedAt, progress.CompletedAt, progress.ProgressPercentage,
	)
	if err != nil {
		return persistence.NewClientError("SaveProgress", progress.ClientID, err)
	}

	return nil
}

// GetByClientID returns the progress record for a client.
func (r *ProgressRepository) GetByClientID(ctx context.Context, clientID string) (*models.OnboardingProgress, error) {
	query := `
		SELECT
			client_id
		  , steps
		  , current_step
		  , overall_status
		  , started_at
		  , completed_at
		  , progress_percentage
		FROM onboarding_progress
		WHERE client_id = $1
	`

	var (
		progress models.OnboardingProgress
		steps    []byte
	)

	err := r.db.QueryRowContext(ctx, query, clientID).Scan(
		&progress.ClientID, &steps, &progress.CurrentStep,
		&progress.OverallStatus, &progress.StartedAt, &progress.CompletedAt,
		&progress.ProgressPercentage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewClientError("GetByClientID", clientID, persistence.ErrProgressNotFound)
		}

		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	err = json.Unmarshal(steps, &progress.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress steps: %w", err)
	}

	return &progress, nil
}
