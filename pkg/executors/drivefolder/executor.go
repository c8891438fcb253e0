// Package drivefolder provisions the client's Google Drive project folder.
package drivefolder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aegisflow/aegis/pkg/executors"
	"github.com/aegisflow/aegis/pkg/protocol"
)

// ExecutorFactory creates Executor instances.
type ExecutorFactory struct{}

func NewExecutorFactory() *ExecutorFactory {
	return &ExecutorFactory{}
}

func (*ExecutorFactory) ID() string {
	return "drive_folder"
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

// Executor creates the dedicated project folder and shares it with the client.
type Executor struct {
	latency time.Duration
}

func (e *Executor) Execute(ctx context.Context, stepCtx protocol.StepContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("executor", "drive_folder")
	logger.Info("Creating project folder")

	err := executors.Sleep(ctx, e.latency)
	if err != nil {
		return nil, err
	}

	client := stepCtx.Client
	folderName := fmt.Sprintf("%s - %s Project", client.Name, projectTypeTitle(string(client.ProjectType)))
	folderID := "drive_folder_" + executors.ShortID()

	return map[string]any{
		"folder_id":   folderID,
		"folder_name": folderName,
		"folder_url":  "https://drive.google.com/drive/folders/" + folderID,
		"permissions": "client_read_write",
	}, nil
}

func projectTypeTitle(projectType string) string {
	words := strings.Split(strings.ReplaceAll(projectType, "_", " "), " ")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}

	return strings.Join(words, " ")
}
