// Package draftcontract generates the service agreement document that the
// contract-review checkpoint later surfaces for approval.
package draftcontract

import (
	"context"
	"log/slog"
	"time"

	"github.com/aegisflow/aegis/pkg/executors"
	"github.com/aegisflow/aegis/pkg/protocol"
)

const defaultTemplate = "standard_service_agreement"

type ExecutorFactory struct{}

func NewExecutorFactory() *ExecutorFactory {
	return &ExecutorFactory{}
}

func (*ExecutorFactory) ID() string {
	return "draft_contract"
}

func (*ExecutorFactory) Create(config map[string]any) (protocol.StepExecutor, error) {
	template, _ := config["template"].(string)
	if template == "" {
		template = defaultTemplate
	}

	return &Executor{latency: executors.Latency(config), template: template}, nil
}

func (*ExecutorFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latency": executors.LatencySchema(),
			"template": map[string]any{
				"type":        "string",
				"description": "Contract template to instantiate",
				"default":     defaultTemplate,
			},
		},
	}
}

type Executor struct {
	latency  time.Duration
	template string
}

func (e *Executor) Execute(ctx context.Context, stepCtx protocol.StepContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("executor", "draft_contract")
	logger.Info("Drafting contract", "template", e.template)

	err := executors.Sleep(ctx, e.latency)
	if err != nil {
		return nil, err
	}

	docID := "doc_" + executors.ShortID()

	return map[string]any{
		"document_id":    docID,
		"document_title": "Service Agreement - " + stepCtx.Client.Name,
		"document_url":   "https://docs.google.com/document/d/" + docID,
		"template_used":  e.template,
	}, nil
}
