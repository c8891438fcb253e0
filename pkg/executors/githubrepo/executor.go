// Package githubrepo provisions the client's project repository.
package githubrepo

import (
	"context"
	"log/slog"
	"time"

	"github.com/aegisflow/aegis/pkg/executors"
	"github.com/aegisflow/aegis/pkg/protocol"
)

const defaultOrganization = "aegisflow"

type ExecutorFactory struct{}

func NewExecutorFactory() *ExecutorFactory {
	return &ExecutorFactory{}
}

func (*ExecutorFactory) ID() string {
	return "github_repo"
}

func (*ExecutorFactory) Create(config map[string]any) (protocol.StepExecutor, error) {
	organization, _ := config["organization"].(string)
	if organization == "" {
		organization = defaultOrganization
	}

	return &Executor{latency: executors.Latency(config), organization: organization}, nil
}

func (*ExecutorFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latency": executors.LatencySchema(),
			"organization": map[string]any{
				"type":        "string",
				"description": "Organization the repository is created under",
				"default":     defaultOrganization,
			},
		},
	}
}

type Executor struct {
	latency      time.Duration
	organization string
}

func (e *Executor) Execute(ctx context.Context, stepCtx protocol.StepContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("executor", "github_repo")
	logger.Info("Creating project repository", "organization", e.organization)

	err := executors.Sleep(ctx, e.latency)
	if err != nil {
		return nil, err
	}

	client := stepCtx.Client
	repoName := executors.Slugify(client.Name) + "-" + string(client.ProjectType)

	return map[string]any{
		"repository_name": repoName,
		"repository_url":  "https://github.com/" + e.organization + "/" + repoName,
		"default_branch":  "main",
		"visibility":      "private",
	}, nil
}
