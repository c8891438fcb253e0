// Package engine orchestrates client onboarding: it drives each client's step
// sequence, suspends at approval gates, records provider resources, and
// publishes lifecycle events for observers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aegisflow/aegis/pkg/eventbus"
	"github.com/aegisflow/aegis/pkg/events"
	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/otelhelper"
	"github.com/aegisflow/aegis/pkg/persistence"
	"github.com/aegisflow/aegis/pkg/protocol"
	"github.com/aegisflow/aegis/pkg/registry"
	"github.com/aegisflow/aegis/pkg/workflow"
)

const (
	DefaultApprovalTimeout = 24 * time.Hour
	DefaultStepMaxAttempts = 3
	DefaultRetryDelay      = 2 * time.Second
)

// Config tunes workflow execution. Zero values fall back to the defaults
// above.
type Config struct {
	ApprovalTimeout time.Duration
	StepMaxAttempts int
	RetryDelay      time.Duration
}

func (c Config) withDefaults() Config {
	if c.ApprovalTimeout <= 0 {
		c.ApprovalTimeout = DefaultApprovalTimeout
	}

	if c.StepMaxAttempts <= 0 {
		c.StepMaxAttempts = DefaultStepMaxAttempts
	}

	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}

	return c
}

// Status is the combined onboarding view returned to callers: the client
// record and a snapshot of its progress.
type Status struct {
	Client   *models.Client
	Progress *models.OnboardingProgress
}

// Engine runs one goroutine per active onboarding. All persistence writes for
// a client happen on its workflow goroutine; readers receive clones.
type Engine struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	definition  *workflow.Definition
	bus         eventbus.EventBus
	gate        *Gate
	tracer      trace.Tracer
	config      Config
	validate    *validator.Validate

	mu      sync.Mutex
	running map[string]*runHandle
	closed  bool
	wg      sync.WaitGroup
}

type runHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func New(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	definition *workflow.Definition,
	bus eventbus.EventBus,
	config Config,
) *Engine {
	return &Engine{
		logger:      logger.With("module", "engine"),
		persistence: persistence,
		registry:    registry,
		definition:  definition,
		bus:         bus,
		gate:        NewGate(),
		tracer:      otel.Tracer("aegis-engine"),
		config:      config.withDefaults(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		running:     make(map[string]*runHandle),
	}
}

// Gate exposes the approval gate, used by the expiry sweeper.
func (e *Engine) Gate() *Gate {
	return e.gate
}

// Start validates the intake form, creates the client and its progress
// record, and launches the workflow goroutine. The returned client and
// progress are the initial pending snapshots; the first step update follows
// on the event channel.
func (e *Engine) Start(ctx context.Context, input models.ClientInput) (*models.Client, *models.OnboardingProgress, error) {
	err := e.validate.Struct(input)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid intake data: %w", err)
	}

	now := time.Now().UTC()
	client := models.NewClient(uuid.NewString(), input, now)
	progress := &models.OnboardingProgress{
		ClientID:      client.ID,
		Steps:         e.definition.Instantiate(),
		CurrentStep:   0,
		OverallStatus: models.ClientStatusPending,
	}
	progress.Recompute()

	err = e.persistence.SaveClient(ctx, client)
	if err != nil {
		return nil, nil, err
	}

	err = e.persistence.SaveProgress(ctx, progress)
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()

		return nil, nil, ErrEngineClosed
	}

	// The run outlives the HTTP request that started it.
	runCtx, cancel := context.WithCancel(context.Background())
	handle := &runHandle{cancel: cancel, done: make(chan struct{})}
	e.running[client.ID] = handle
	e.wg.Add(1)
	e.mu.Unlock()

	go e.run(runCtx, client.ID, handle)

	e.logger.Info("Onboarding started", "client_id", client.ID, "client_name", client.Name)

	return client.Clone(), progress.Clone(), nil
}

// Status returns the current client record and progress snapshot.
func (e *Engine) Status(ctx context.Context, clientID string) (*Status, error) {
	client, err := e.persistence.ClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	progress, err := e.persistence.ProgressByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	return &Status{Client: client, Progress: progress}, nil
}

// Decide resolves a pending approval for the given step. It fails with
// ErrStepNotFound when the step is not part of the workflow and with
// ErrNotAwaitingApproval when the step is not suspended at the gate, which
// covers both not-yet-reached and already-decided steps.
func (e *Engine) Decide(ctx context.Context, clientID, stepID string, approved bool, feedback string) error {
	progress, err := e.persistence.ProgressByClientID(ctx, clientID)
	if err != nil {
		return err
	}

	if progress.StepByID(stepID) == nil {
		return fmt.Errorf("%w: %s for client %s", ErrStepNotFound, stepID, clientID)
	}

	err = e.gate.Decide(clientID, stepID, approved, feedback, time.Now().UTC())
	if err != nil {
		return err
	}

	e.logger.Info("Approval decision recorded",
		"client_id", clientID, "step_id", stepID, "approved", approved)

	return nil
}

// Cancel aborts an active onboarding run and waits for its goroutine to
// finish, so the caller observes the final persisted state. The workflow
// goroutine marks the in-flight step failed and publishes the terminal error
// event.
func (e *Engine) Cancel(clientID string) error {
	e.mu.Lock()
	handle, ok := e.running[clientID]
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: no active onboarding for client %s", ErrNotRunning, clientID)
	}

	handle.cancel()
	<-handle.done

	return nil
}

// Close stops accepting new runs, cancels active ones, and waits for their
// goroutines to finish or the context to expire.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true

	for _, handle := range e.running {
		handle.cancel()
	}
	e.mu.Unlock()

	done := make(chan struct{})

	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("engine shutdown interrupted: %w", ctx.Err())
	}
}

func (e *Engine) run(ctx context.Context, clientID string, handle *runHandle) {
	defer e.wg.Done()
	defer func() {
		e.mu.Lock()
		delete(e.running, clientID)
		e.mu.Unlock()
		close(handle.done)
	}()

	logger := e.logger.With("client_id", clientID)

	client, err := e.persistence.ClientByID(ctx, clientID)
	if err != nil {
		logger.Error("Failed to load client for workflow run", "error", err)

		return
	}

	progress, err := e.persistence.ProgressByClientID(ctx, clientID)
	if err != nil {
		logger.Error("Failed to load progress for workflow run", "error", err)

		return
	}

	now := time.Now().UTC()
	progress.OverallStatus = models.ClientStatusInProgress
	progress.StartedAt = &now
	client.Status = models.ClientStatusInProgress
	client.UpdatedAt = now
	e.saveState(ctx, logger, client, progress)

	for cursor := progress.CurrentStep; cursor < len(progress.Steps); cursor++ {
		spec, ok := e.definition.StepAt(cursor)
		if !ok {
			break
		}

		progress.CurrentStep = cursor
		step := progress.Steps[cursor]

		err := e.runStep(ctx, logger, client, progress, spec, step)
		if err != nil {
			e.failWorkflow(logger, client, progress, step, err)

			return
		}

		progress.CurrentStep = cursor + 1
		applyResources(client, spec.ID, step.Metadata)

		stepDone := time.Now().UTC()
		client.UpdatedAt = stepDone

		// No persisted snapshot may show every step completed while the
		// overall status is still in progress.
		if progress.CurrentStep == len(progress.Steps) {
			progress.OverallStatus = models.ClientStatusCompleted
			progress.CompletedAt = &stepDone
			client.Status = models.ClientStatusCompleted
		}

		progress.Recompute()
		e.saveState(ctx, logger, client, progress)
		e.publishStepUpdate(ctx, progress, step)
	}

	e.completeWorkflow(logger, client, progress)
}

func (e *Engine) runStep(
	ctx context.Context,
	logger *slog.Logger,
	client *models.Client,
	progress *models.OnboardingProgress,
	spec workflow.StepSpec,
	step *models.OnboardingStep,
) error {
	ctx, span := e.tracer.Start(ctx, "onboarding.step", trace.WithAttributes(
		attribute.String(otelhelper.ClientIDKey, client.ID),
		attribute.String(otelhelper.StepIDKey, step.ID),
		attribute.String(otelhelper.StepNameKey, step.Name),
		attribute.String(otelhelper.ExecutorIDKey, spec.ExecutorID),
	))
	defer span.End()

	logger = logger.With("step_id", step.ID)
	logger.Info("Executing onboarding step", "step_name", step.Name)

	err := step.MarkInProgress(time.Now().UTC())
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	e.saveState(ctx, logger, client, progress)
	e.publishStepUpdate(ctx, progress, step)

	if spec.RequiresApproval {
		err = e.awaitApproval(ctx, logger, client, progress, step)
		if err != nil {
			otelhelper.SetError(span, err)

			return err
		}
	}

	if spec.ExecutorID == "" {
		// Approval-only checkpoint; the decision metadata is the result.
		return step.MarkCompleted(time.Now().UTC(), nil)
	}

	results, err := e.executeWithRetry(ctx, logger, client, progress, spec, step)
	if err != nil {
		otelhelper.SetError(span, err)

		markErr := step.MarkFailed(time.Now().UTC(), err.Error())
		if markErr != nil {
			logger.Error("Failed to record step failure", "error", markErr)
		}

		return err
	}

	return step.MarkCompleted(time.Now().UTC(), results)
}

// awaitApproval suspends the workflow until a decision arrives for the step.
// A rejection is returned as an error so the caller fails the workflow.
func (e *Engine) awaitApproval(
	ctx context.Context,
	logger *slog.Logger,
	client *models.Client,
	progress *models.OnboardingProgress,
	step *models.OnboardingStep,
) error {
	now := time.Now().UTC()

	decisions := e.gate.Request(client.ID, step.ID, now, e.config.ApprovalTimeout)

	e.publish(ctx, events.ApprovalRequest{
		BaseEvent: e.baseEvent(events.ApprovalRequestEvent, client.ID),
		StepID:    step.ID,
		ApprovalData: map[string]any{
			"step_name":     step.Name,
			"client_name":   client.Name,
			"client_email":  client.Email,
			"company":       client.Company,
			"project_type":  client.ProjectType,
			"project_scope": client.ProjectScope,
			"budget_range":  client.BudgetRange,
			"timeline":      client.Timeline,
			"requested_at":  now,
			"expires_at":    now.Add(e.config.ApprovalTimeout),
			"prior_results": priorResults(progress),
		},
	})

	logger.Info("Awaiting approval", "step_name", step.Name, "timeout", e.config.ApprovalTimeout)

	select {
	case decision := <-decisions:
		step.MergeMetadata(map[string]any{
			models.MetadataKeyApproved: decision.Approved,
			models.MetadataKeyFeedback: decision.Feedback,
		})

		if !decision.Approved {
			markErr := step.MarkFailed(decision.DecidedAt, rejectionMessage(decision.Feedback))
			if markErr != nil {
				logger.Error("Failed to record rejection", "error", markErr)
			}

			return fmt.Errorf("step %s rejected: %s", step.ID, decision.Feedback)
		}

		return nil
	case <-ctx.Done():
		e.gate.Withdraw(client.ID, step.ID)

		markErr := step.MarkFailed(time.Now().UTC(), "onboarding cancelled")
		if markErr != nil {
			logger.Error("Failed to record cancellation", "error", markErr)
		}

		return fmt.Errorf("approval wait aborted for step %s: %w", step.ID, ctx.Err())
	}
}

func (e *Engine) executeWithRetry(
	ctx context.Context,
	logger *slog.Logger,
	client *models.Client,
	progress *models.OnboardingProgress,
	spec workflow.StepSpec,
	step *models.OnboardingStep,
) (map[string]any, error) {
	executor, err := e.registry.CreateExecutor(spec.ExecutorID, spec.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor for step %s: %w", step.ID, err)
	}

	stepCtx := protocol.StepContext{
		Client:       client.Clone(),
		Step:         step.Clone(),
		PriorResults: priorResults(progress),
	}

	var lastErr error

	for attempt := 1; attempt <= e.config.StepMaxAttempts; attempt++ {
		results, err := executor.Execute(ctx, stepCtx, logger)
		if err == nil {
			return results, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("step %s aborted: %w", step.ID, ctx.Err())
		}

		logger.Warn("Step attempt failed",
			"attempt", attempt, "max_attempts", e.config.StepMaxAttempts, "error", err)

		if attempt < e.config.StepMaxAttempts {
			select {
			case <-time.After(e.config.RetryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("step %s aborted: %w", step.ID, ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("step %s failed after %d attempts: %w", step.ID, e.config.StepMaxAttempts, lastErr)
}

func (e *Engine) failWorkflow(
	logger *slog.Logger,
	client *models.Client,
	progress *models.OnboardingProgress,
	step *models.OnboardingStep,
	cause error,
) {
	// The run context may already be cancelled; state still has to be saved.
	ctx := context.Background()

	now := time.Now().UTC()
	progress.OverallStatus = models.ClientStatusFailed
	progress.CompletedAt = &now
	progress.Recompute()
	client.Status = models.ClientStatusFailed
	client.UpdatedAt = now

	e.saveState(ctx, logger, client, progress)
	e.publishStepUpdate(ctx, progress, step)
	e.publish(ctx, events.Error{
		BaseEvent: e.baseEvent(events.ErrorEvent, client.ID),
		ErrorCode: "step_failed",
		ErrorDetails: map[string]any{
			"step_id":   step.ID,
			"step_name": step.Name,
		},
		Message: cause.Error(),
	})

	logger.Error("Onboarding failed", "step_id", step.ID, "error", cause)
}

func (e *Engine) completeWorkflow(
	logger *slog.Logger,
	client *models.Client,
	progress *models.OnboardingProgress,
) {
	ctx := context.Background()

	// The run loop saves the terminal state together with the final step;
	// this branch only covers a workflow with no steps at all.
	if progress.OverallStatus != models.ClientStatusCompleted {
		now := time.Now().UTC()
		progress.OverallStatus = models.ClientStatusCompleted
		progress.CompletedAt = &now
		progress.Recompute()
		client.Status = models.ClientStatusCompleted
		client.UpdatedAt = now
		e.saveState(ctx, logger, client, progress)
	}

	completedAt := time.Now().UTC()
	if progress.CompletedAt != nil {
		completedAt = *progress.CompletedAt
	}

	summary := map[string]any{
		"steps_completed": len(progress.Steps),
		"resources":       client.Resources,
	}
	if progress.StartedAt != nil {
		summary["duration"] = completedAt.Sub(*progress.StartedAt).String()
	}

	e.publish(ctx, events.OnboardingComplete{
		BaseEvent:   e.baseEvent(events.OnboardingCompleteEvent, client.ID),
		CompletedAt: completedAt,
		Summary:     summary,
	})

	logger.Info("Onboarding completed", "client_name", client.Name)
}

func (e *Engine) saveState(
	ctx context.Context,
	logger *slog.Logger,
	client *models.Client,
	progress *models.OnboardingProgress,
) {
	err := e.persistence.SaveClient(ctx, client)
	if err != nil {
		logger.Error("Failed to save client", "error", err)
	}

	err = e.persistence.SaveProgress(ctx, progress)
	if err != nil {
		logger.Error("Failed to save progress", "error", err)
	}
}

func (e *Engine) publishStepUpdate(ctx context.Context, progress *models.OnboardingProgress, step *models.OnboardingStep) {
	cursor := progress.CurrentStep

	e.publish(ctx, events.StepUpdate{
		BaseEvent:          e.baseEvent(events.StepUpdateEvent, progress.ClientID),
		StepID:             step.ID,
		StepStatus:         step.Status,
		ProgressPercentage: progress.ProgressPercentage,
		CurrentStep:        &cursor,
		Metadata:           step.Metadata,
	})
}

func (e *Engine) publish(ctx context.Context, event eventbus.Event) {
	err := e.bus.Publish(ctx, event.GetClientID(), event)
	if err != nil {
		e.logger.Error("Failed to publish event",
			"event_type", event.GetType(), "client_id", event.GetClientID(), "error", err)
	}
}

func (e *Engine) baseEvent(eventType events.EventType, clientID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        e.bus.GenerateID(),
		Type:      eventType,
		ClientID:  clientID,
		Timestamp: time.Now().UTC(),
	}
}

func rejectionMessage(feedback string) string {
	if feedback == "" {
		return "approval rejected"
	}

	return "approval rejected: " + feedback
}

// priorResults collects the metadata of completed steps, keyed by step id.
func priorResults(progress *models.OnboardingProgress) map[string]map[string]any {
	results := make(map[string]map[string]any)

	for _, step := range progress.Steps {
		if step.Status != models.StepStatusCompleted || len(step.Metadata) == 0 {
			continue
		}

		metadata := make(map[string]any, len(step.Metadata))
		for k, v := range step.Metadata {
			metadata[k] = v
		}

		results[step.ID] = metadata
	}

	return results
}

// applyResources copies the provider identifiers produced by a completed step
// onto the client record.
func applyResources(client *models.Client, stepID string, metadata map[string]any) {
	switch stepID {
	case "create_drive_folder":
		client.Resources.DriveFolderID = metadataString(metadata, "folder_id")
	case "draft_contract":
		client.Resources.ContractDocID = metadataString(metadata, "document_id")
	case "create_communication_channel":
		client.Resources.SlackChannelID = metadataString(metadata, "channel_id")
	case "setup_github_repo":
		client.Resources.GithubRepoURL = metadataString(metadata, "repository_url")
	case "create_notion_board":
		client.Resources.NotionBoardID = metadataString(metadata, "board_id")
	case "setup_billing":
		client.Resources.StripeCustomerID = metadataString(metadata, "stripe_customer_id")
		client.Resources.InvoiceID = metadataString(metadata, "invoice_id")
	}
}

func metadataString(metadata map[string]any, key string) *string {
	value, ok := metadata[key].(string)
	if !ok || value == "" {
		return nil
	}

	return &value
}
