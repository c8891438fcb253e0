// Package stripebilling sets up the client's billing account and first
// invoice.
package stripebilling

import (
	"context"
	"log/slog"
	"time"

	"github.com/aegisflow/aegis/pkg/executors"
	"github.com/aegisflow/aegis/pkg/protocol"
)

const defaultPaymentTerms = "net_30"

type ExecutorFactory struct{}

func NewExecutorFactory() *ExecutorFactory {
	return &ExecutorFactory{}
}

func (*ExecutorFactory) ID() string {
	return "stripe_billing"
}

func (*ExecutorFactory) Create(config map[string]any) (protocol.StepExecutor, error) {
	paymentTerms, _ := config["payment_terms"].(string)
	if paymentTerms == "" {
		paymentTerms = defaultPaymentTerms
	}

	return &Executor{latency: executors.Latency(config), paymentTerms: paymentTerms}, nil
}

func (*ExecutorFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latency": executors.LatencySchema(),
			"payment_terms": map[string]any{
				"type":        "string",
				"description": "Payment terms applied to the initial invoice",
				"default":     defaultPaymentTerms,
			},
		},
	}
}

type Executor struct {
	latency      time.Duration
	paymentTerms string
}

func (e *Executor) Execute(ctx context.Context, stepCtx protocol.StepContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("executor", "stripe_billing")
	logger.Info("Setting up billing", "payment_terms", e.paymentTerms)

	err := executors.Sleep(ctx, e.latency)
	if err != nil {
		return nil, err
	}

	invoiceID := "in_" + executors.ShortID()

	return map[string]any{
		"stripe_customer_id": "cus_" + executors.ShortID(),
		"invoice_id":         invoiceID,
		"invoice_url":        "https://invoice.stripe.com/i/" + invoiceID,
		"payment_terms":      e.paymentTerms,
	}, nil
}
