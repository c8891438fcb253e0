// Package main provides the Aegis onboarding API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/aegisflow/aegis/pkg/engine"
	"github.com/aegisflow/aegis/pkg/eventbus"
	"github.com/aegisflow/aegis/pkg/hub"
	"github.com/aegisflow/aegis/pkg/persistence"
	"github.com/aegisflow/aegis/pkg/registry"
	"github.com/aegisflow/aegis/pkg/web"
	"github.com/aegisflow/aegis/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	engine      *engine.Engine
	hub         *hub.Hub
	sweeper     *engine.ExpirySweeper
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	engineConfig engine.Config,
	sweepSchedule string,
) (*API, error) {
	eventHub, err := hub.NewHub(logger, eventBus)
	if err != nil {
		return nil, err
	}

	eng := engine.New(logger, persistence, registry, workflow.Default(), eventBus, engineConfig)

	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		engine:      eng,
		hub:         eventHub,
		sweeper:     engine.NewExpirySweeper(logger, eng, sweepSchedule),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.engine, a.persistence, a.registry, a.hub, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Aegis Onboarding API")
	})

	o := app.Group("/api/v1/onboarding")
	o.Post("/start", handlers.StartOnboarding)
	o.Get("/status/:id", handlers.GetStatus)
	o.Post("/approve/:id/:step", handlers.ApproveStep)
	o.Get("/clients", handlers.ListClients)
	o.Get("/client/:id", handlers.GetClient)
	o.Delete("/client/:id", handlers.DeleteClient)
	o.Get("/events/:id", handlers.StreamEvents)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int) error {
	err := a.eventBus.Subscribe(ctx)
	if err != nil {
		return err
	}

	err = a.sweeper.Start()
	if err != nil {
		return err
	}

	return a.App().Listen(":" + strconv.Itoa(port))
}

func (a *API) Shutdown(ctx context.Context) {
	a.sweeper.Stop()

	err := a.engine.Close(ctx)
	if err != nil {
		a.logger.Error("Failed to close engine", "error", err)
	}
}
