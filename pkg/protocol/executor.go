// Package protocol defines the contracts between the orchestration engine and
// its pluggable step executors.
package protocol

import (
	"context"
	"log/slog"

	"github.com/aegisflow/aegis/pkg/models"
)

// StepContext carries the client and step being executed plus the accumulated
// results of earlier steps, keyed by step id.
type StepContext struct {
	Client       *models.Client
	Step         *models.OnboardingStep
	PriorResults map[string]map[string]any
}

// StepExecutor performs one unit of provisioning work. Implementations own
// their own timeout policy; the engine only observes success or failure.
type StepExecutor interface {
	Execute(ctx context.Context, stepCtx StepContext, logger *slog.Logger) (map[string]any, error)
}

// ExecutorFactory creates executors from a step configuration and describes
// the configuration it accepts.
type ExecutorFactory interface {
	ID() string
	Create(config map[string]any) (StepExecutor, error)
	Schema() map[string]any
}
