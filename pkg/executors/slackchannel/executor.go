// Package slackchannel provisions the shared client communication channel.
package slackchannel

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
	return "slack_channel"
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
	logger = logger.With("executor", "slack_channel")
	logger.Info("Creating communication channel")

	err := executors.Sleep(ctx, e.latency)
	if err != nil {
		return nil, err
	}

	channelName := "client-" + executors.Slugify(stepCtx.Client.Name)

	return map[string]any{
		"channel_id":   "C" + executors.ShortID(),
		"channel_name": channelName,
		"platform":     "slack",
		"invite_url":   "https://slack.com/invite/" + channelName,
	}, nil
}
