// Package web provides HTTP handlers and REST API endpoints for onboarding
// management.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/aegisflow/aegis/pkg/engine"
	"github.com/aegisflow/aegis/pkg/hub"
	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/persistence"
	"github.com/aegisflow/aegis/pkg/registry"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type APIHandlers struct {
	engine      *engine.Engine
	persistence persistence.Persistence
	registry    *registry.Registry
	hub         *hub.Hub
	validator   *validator.Validate
}

func NewAPIHandlers(
	engine *engine.Engine,
	persistence persistence.Persistence,
	registry *registry.Registry,
	hub *hub.Hub,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		engine:      engine,
		persistence: persistence,
		registry:    registry,
		hub:         hub,
		validator:   validator,
	}
}

func (h *APIHandlers) StartOnboarding(c fiber.Ctx) error {
	var input models.ClientInput
	if err := c.Bind().JSON(&input); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	client, progress, err := h.engine.Start(c.Context(), input)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return badRequest(c, validationErrs.Error())
		}

		if errors.Is(err, engine.ErrEngineClosed) {
			return internalError(c, err)
		}

		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ClientCreatedResponse{
		SuccessResponse: SuccessResponse{
			BaseResponse: newBaseResponse(fmt.Sprintf("Onboarding started successfully for %s", client.Name)),
			Data:         map[string]any{"client": client, "progress": progress},
		},
		ClientID: client.ID,
	})
}

func (h *APIHandlers) GetStatus(c fiber.Ctx) error {
	clientID := c.Params("id")
	if clientID == "" {
		return badRequest(c, "Client ID is required")
	}

	status, err := h.engine.Status(c.Context(), clientID)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(OnboardingStatusResponse{
		SuccessResponse: SuccessResponse{
			BaseResponse: newBaseResponse("Onboarding status retrieved successfully"),
			Data: map[string]any{
				"client":   status.Client,
				"progress": status.Progress,
			},
		},
		ClientID:           clientID,
		Status:             status.Progress.OverallStatus,
		ProgressPercentage: status.Progress.ProgressPercentage,
		CurrentStep:        status.Progress.CurrentStepName(),
		Steps:              status.Progress.Steps,
	})
}

func (h *APIHandlers) ApproveStep(c fiber.Ctx) error {
	clientID := c.Params("id")
	stepID := c.Params("step")

	if clientID == "" || stepID == "" {
		return badRequest(c, "Client ID and step ID are required")
	}

	var req ApprovalDecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.engine.Decide(c.Context(), clientID, stepID, *req.Approved, req.Feedback)
	if err != nil {
		return handleEngineError(c, err)
	}

	action := "rejected"
	if *req.Approved {
		action = "approved"
	}

	return c.JSON(ApprovalResponse{
		BaseResponse: newBaseResponse(fmt.Sprintf("Step %s successfully", action)),
		ClientID:     clientID,
		StepID:       stepID,
		Approved:     *req.Approved,
		Feedback:     req.Feedback,
	})
}

func (h *APIHandlers) ListClients(c fiber.Ctx) error {
	opts, err := h.parseListClientsOptions(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.persistence.Clients(c.Context(), *opts)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(SuccessResponse{
		BaseResponse: newBaseResponse(fmt.Sprintf("Retrieved %d clients", len(result.Clients))),
		Data: map[string]any{
			"clients":  result.Clients,
			"total":    result.Total,
			"limit":    opts.Limit,
			"offset":   opts.Offset,
			"has_more": opts.Offset+opts.Limit < result.Total,
		},
	})
}

func (h *APIHandlers) parseListClientsOptions(c fiber.Ctx) (*persistence.ListClientsOptions, error) {
	opts := &persistence.ListClientsOptions{Limit: defaultListLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		if limit < 1 || limit > maxListLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d", maxListLimit)
		}

		opts.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		if offset < 0 {
			return nil, errors.New("offset must not be negative")
		}

		opts.Offset = offset
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ClientStatus(statusStr)
		opts.Status = &status
	}

	return opts, nil
}

func (h *APIHandlers) GetClient(c fiber.Ctx) error {
	clientID := c.Params("id")
	if clientID == "" {
		return badRequest(c, "Client ID is required")
	}

	client, err := h.persistence.ClientByID(c.Context(), clientID)
	if err != nil {
		return handleEngineError(c, err)
	}

	data := map[string]any{"client": client, "progress": nil}

	progress, err := h.persistence.ProgressByClientID(c.Context(), clientID)
	if err == nil {
		data["progress"] = progress
	} else if !persistence.IsProgressNotFound(err) {
		return internalError(c, err)
	}

	return c.JSON(SuccessResponse{
		BaseResponse: newBaseResponse("Client information retrieved successfully"),
		Data:         data,
	})
}

func (h *APIHandlers) DeleteClient(c fiber.Ctx) error {
	clientID := c.Params("id")
	if clientID == "" {
		return badRequest(c, "Client ID is required")
	}

	client, err := h.persistence.ClientByID(c.Context(), clientID)
	if err != nil {
		return handleEngineError(c, err)
	}

	// An active run has to stop before its records disappear.
	err = h.engine.Cancel(clientID)
	if err != nil && !errors.Is(err, engine.ErrNotRunning) {
		return internalError(c, err)
	}

	err = h.persistence.DeleteClient(c.Context(), clientID)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(SuccessResponse{
		BaseResponse: newBaseResponse(fmt.Sprintf("Client %s deleted successfully", client.Name)),
		Data:         map[string]any{"client_id": clientID},
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()

	persistenceCheck := "persistence is reachable"
	perOk := true

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		persistenceCheck = err.Error()
		perOk = false
	}

	status := "unhealthy"
	message := "Aegis API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && perOk {
		status = "healthy"
		message = "Aegis API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":    registryCheck,
			"persistence": persistenceCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
