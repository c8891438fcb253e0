// Package postgresql provides PostgreSQL persistence for clients and
// onboarding progress.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/persistence"
	"github.com/aegisflow/aegis/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	clientRepo   *ClientRepository
	progressRepo *ProgressRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		clientRepo:   NewClientRepository(database, logger),
		progressRepo: NewProgressRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) SaveClient(ctx context.Context, client *models.Client) error {
	return p.clientRepo.Save(ctx, client)
}

func (p *Persistence) ClientByID(ctx context.Context, id string) (*models.Client, error) {
	return p.clientRepo.GetByID(ctx, id)
}

func (p *Persistence) Clients(ctx context.Context, opts persistence.ListClientsOptions) (*persistence.ListClientsResult, error) {
	return p.clientRepo.List(ctx, opts)
}

func (p *Persistence) DeleteClient(ctx context.Context, id string) error {
	return p.clientRepo.Delete(ctx, id)
}

func (p *Persistence) SaveProgress(ctx context.Context, progress *models.OnboardingProgress) error {
	return p.progressRepo.Save(ctx, progress)
}

func (p *Persistence) ProgressByClientID(ctx context.Context, clientID string) (*models.OnboardingProgress, error) {
	return p.progressRepo.GetByClientID(ctx, clientID)
}
