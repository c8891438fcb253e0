// Package redis provides a Redis-backed persistence implementation storing
// clients and onboarding progress as JSON documents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/persistence"
)

const (
	clientKeyPrefix   = "aegis:client:"
	progressKeyPrefix = "aegis:progress:"
	clientIndexKey    = "aegis:clients"
)

// Persistence implements persistence.Persistence on top of a Redis instance.
// Each client and progress record is one JSON value; a set holds the client
// id index for listings.
type Persistence struct {
	client goredis.UniversalClient
}

// NewPersistence connects to Redis using the given URL
// (redis://[user:pass@]host:port/db).
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client}, nil
}

func (p *Persistence) SaveClient(ctx context.Context, client *models.Client) error {
	payload, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("failed to marshal client: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, clientKeyPrefix+client.ID, payload, 0)
	pipe.SAdd(ctx, clientIndexKey, client.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return persistence.NewClientError("SaveClient", client.ID, err)
	}

	return nil
}

func (p *Persistence) ClientByID(ctx context.Context, id string) (*models.Client, error) {
	payload, err := p.client.Get(ctx, clientKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewClientError("ClientByID", id, persistence.ErrClientNotFound)
		}

		return nil, persistence.NewClientError("ClientByID", id, err)
	}

	var client models.Client

	err = json.Unmarshal(payload, &client)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal client %s: %w", id, err)
	}

	return &client, nil
}

func (p *Persistence) Clients(ctx context.Context, opts persistence.ListClientsOptions) (*persistence.ListClientsResult, error) {
	ids, err := p.client.SMembers(ctx, clientIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read client index: %w", err)
	}

	clients := make([]*models.Client, 0, len(ids))

	for _, id := range ids {
		client, err := p.ClientByID(ctx, id)
		if err != nil {
			if persistence.IsClientNotFound(err) {
				// Index entry outlived the record; skip it.
				continue
			}

			return nil, err
		}

		if opts.Status != nil && client.Status != *opts.Status {
			continue
		}

		clients = append(clients, client)
	}

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

func (p *Persistence) DeleteClient(ctx context.Context, id string) error {
	removed, err := p.client.SRem(ctx, clientIndexKey, id).Result()
	if err != nil {
		return persistence.NewClientError("DeleteClient", id, err)
	}

	if removed == 0 {
		return persistence.NewClientError("DeleteClient", id, persistence.ErrClientNotFound)
	}

	pipe := p.client.TxPipeline()
	pipe.Del(ctx, clientKeyPrefix+id)
	pipe.Del(ctx, progressKeyPrefix+id)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return persistence.NewClientError("DeleteClient", id, err)
	}

	return nil
}

func (p *Persistence) SaveProgress(ctx context.Context, progress *models.OnboardingProgress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	err = p.client.Set(ctx, progressKeyPrefix+progress.ClientID, payload, 0).Err()
	if err != nil {
		return persistence.NewClientError("SaveProgress", progress.ClientID, err)
	}

	return nil
}

func (p *Persistence) ProgressByClientID(ctx context.Context, clientID string) (*models.OnboardingProgress, error) {
	payload, err := p.client.Get(ctx, progressKeyPrefix+clientID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewClientError("ProgressByClientID", clientID, persistence.ErrProgressNotFound)
		}

		return nil, persistence.NewClientError("ProgressByClientID", clientID, err)
	}

	var progress models.OnboardingProgress

	err = json.Unmarshal(payload, &progress)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress for %s: %w", clientID, err)
	}

	return &progress, nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
