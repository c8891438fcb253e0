// Package notionboard provisions the client's project tracking board.
package notionboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/aegisflow/aegis/pkg/executors"
	"github.com/aegisflow/aegis/pkg/protocol"
)

var defaultSections = []string{"Backlog", "In Progress", "Review", "Done"}

type ExecutorFactory struct{}

func NewExecutorFactory() *ExecutorFactory {
	return &ExecutorFactory{}
}

func (*ExecutorFactory) ID() string {
	return "notion_board"
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
	logger = logger.With("executor", "notion_board")
	logger.Info("Creating project board")

	err := executors.Sleep(ctx, e.latency)
	if err != nil {
		return nil, err
	}

	boardID := "board_" + executors.ShortID()

	return map[string]any{
		"board_id":         boardID,
		"board_title":      stepCtx.Client.Name + " - Project Board",
		"board_url":        "https://notion.so/" + boardID,
		"sections_created": defaultSections,
	}, nil
}
