// Package memory provides the in-memory persistence implementation used for
// single-process deployments and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/persistence"
)

// Persistence implements persistence.Persistence with two mutex-guarded maps.
// Records are cloned on the way in and out so no caller ever shares memory
// with the store.
type Persistence struct {
	mu       sync.RWMutex
	clients  map[string]*models.Client
	progress map[string]*models.OnboardingProgress
}

func NewPersistence() *Persistence {
	return &Persistence{
		clients:  make(map[string]*models.Client),
		progress: make(map[string]*models.OnboardingProgress),
	}
}

func (p *Persistence) SaveClient(_ context.Context, client *models.Client) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clients[client.ID] = client.Clone()

	return nil
}

func (p *Persistence) ClientByID(_ context.Context, id string) (*models.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	client, ok := p.clients[id]
	if !ok {
		return nil, persistence.NewClientError("ClientByID", id, persistence.ErrClientNotFound)
	}

	return client.Clone(), nil
}

func (p *Persistence) Clients(_ context.Context, opts persistence.ListClientsOptions) (*persistence.ListClientsResult, error) {
	p.mu.RLock()

	clients := make([]*models.Client, 0, len(p.clients))

	for _, client := range p.clients {
		if opts.Status != nil && client.Status != *opts.Status {
			continue
		}

		clients = append(clients, client.Clone())
	}

	p.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		if clients[i].CreatedAt.Equal(clients[j].CreatedAt) {
			return clients[i].ID < clients[j].ID
		}

		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})

	total := len(clients)

	offset := opts.Offset
	if offset > total {
		offset = total
	}

	end := total
	if opts.Limit > 0 && offset+opts.Limit < end {
		end = offset + opts.Limit
	}

	return &persistence.ListClientsResult{
		Clients: clients[offset:end],
		Total:   total,
	}, nil
}

func (p *Persistence) DeleteClient(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.clients[id]; !ok {
		return persistence.NewClientError("DeleteClient", id, persistence.ErrClientNotFound)
	}

	delete(p.clients, id)
	delete(p.progress, id)

	return nil
}

func (p *Persistence) SaveProgress(_ context.Context, progress *models.OnboardingProgress) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress[progress.ClientID] = progress.Clone()

	return nil
}

func (p *Persistence) ProgressByClientID(_ context.Context, clientID string) (*models.OnboardingProgress, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	progress, ok := p.progress[clientID]
	if !ok {
		return nil, persistence.NewClientError("ProgressByClientID", clientID, persistence.ErrProgressNotFound)
	}

	return progress.Clone(), nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
