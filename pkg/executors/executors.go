// Package executors contains helpers shared by the simulated provider
// executors. The real provider integrations live behind the same factories;
// the simulations reproduce the result payloads the engine and observers see.
package executors

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Latency reads the simulated call latency from an executor configuration.
// Zero (the default) completes immediately, which is what tests use.
func Latency(config map[string]any) time.Duration {
	raw, ok := config["latency"].(string)
	if !ok || raw == "" {
		return 0
	}

	latency, err := time.ParseDuration(raw)
	if err != nil || latency < 0 {
		return 0
	}

	return latency
}

// Sleep waits for the given duration or until the context is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ShortID returns an 8-character identifier fragment for simulated provider
// resources.
func ShortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Slugify lowercases a name and replaces spaces, for channel and repo names.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// LatencySchema is the schema fragment shared by every simulated executor.
func LatencySchema() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Simulated provider call latency as a Go duration string",
		"default":     "0s",
		"examples":    []string{"0s", "500ms", "3s"},
	}
}
