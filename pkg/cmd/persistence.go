package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aegisflow/aegis/pkg/persistence"
	"github.com/aegisflow/aegis/pkg/persistence/memory"
	"github.com/aegisflow/aegis/pkg/persistence/postgresql"
	"github.com/aegisflow/aegis/pkg/persistence/redis"
)

// NewPersistence creates the persistence backend for the given database URL.
// The scheme picks the driver; an empty URL selects the in-memory store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create postgres persistence: %w", err))
		}

		return p
	case "redis":
		p, err := redis.NewPersistence(ctx, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create redis persistence: %w", err))
		}

		return p
	default:
		return memory.NewPersistence()
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "memory"
	}

	return provider
}
