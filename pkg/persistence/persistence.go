// Package persistence provides the storage abstraction for client and
// onboarding progress records.
package persistence

import (
	"context"

	"github.com/aegisflow/aegis/pkg/models"
)

// ListClientsOptions controls filtering and pagination for client listings.
type ListClientsOptions struct {
	Status *models.ClientStatus
	Limit  int
	Offset int
}

// ListClientsResult carries one page of clients plus the unpaginated total.
type ListClientsResult struct {
	Clients []*models.Client
	Total   int
}

type Persistence interface {
	SaveClient(ctx context.Context, client *models.Client) error
	ClientByID(ctx context.Context, id string) (*models.Client, error)
	Clients(ctx context.Context, opts ListClientsOptions) (*ListClientsResult, error)
	DeleteClient(ctx context.Context, id string) error

	SaveProgress(ctx context.Context, progress *models.OnboardingProgress) error
	ProgressByClientID(ctx context.Context, clientID string) (*models.OnboardingProgress, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
