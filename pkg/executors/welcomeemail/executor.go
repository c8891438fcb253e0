// Package welcomeemail sends the kickoff email once provisioning is far
// enough along for the client to have something to look at.
package welcomeemail

import (
	"context"
	"log/slog"
	"time"

	"github.com/aegisflow/aegis/pkg/executors"
	"github.com/aegisflow/aegis/pkg/protocol"
)

type ExecutorFactory struct{}

func NewExecutorFactory() *ExecutorFactory {
	return &ExecutorFactory{}
}

func (*ExecutorFactory) ID() string {
	return "welcome_email"
}

func (*ExecutorFactory) Create(config map[string]any) (protocol.StepExecutor, error) {
	return &Executor{latency: executors.Latency(config)}, nil
}

func (*ExecutorFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latency": executors.LatencySchema(),
		},
	}
}

type Executor struct {
	latency time.Duration
}

func (e *Executor) Execute(ctx context.Context, stepCtx protocol.StepContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("executor", "welcome_email")
	logger.Info("Sending welcome email", "recipient", stepCtx.Client.Email)

	err := executors.Sleep(ctx, e.latency)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"email_sent":      true,
		"recipient":       stepCtx.Client.Email,
		"subject":         "Welcome aboard, " + stepCtx.Client.Name + "!",
		"calendar_invite": "kickoff_call_scheduled",
	}, nil
}
