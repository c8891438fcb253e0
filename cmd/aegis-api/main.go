package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/aegisflow/aegis/pkg/cmd"
	"github.com/aegisflow/aegis/pkg/engine"
	"github.com/aegisflow/aegis/pkg/log"
	"github.com/aegisflow/aegis/pkg/otelhelper"
)

const defaultPort = 8000

func main() {
	command := &cli.Command{
		Name:                  "aegis-api",
		Usage:                 "Run the client onboarding orchestration API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL (postgres://, redis://); empty for in-memory",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.DurationFlag{
				Name:    "approval-timeout",
				Usage:   "How long an approval gate waits before expiring",
				Value:   engine.DefaultApprovalTimeout,
				Sources: cli.EnvVars("APPROVAL_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron schedule for the approval expiry sweeper",
				Value:   engine.DefaultSweepSchedule,
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.IntFlag{
				Name:    "step-max-attempts",
				Usage:   "Attempts per step before it fails",
				Value:   engine.DefaultStepMaxAttempts,
				Sources: cli.EnvVars("STEP_MAX_ATTEMPTS"),
			},
			&cli.DurationFlag{
				Name:    "retry-delay",
				Usage:   "Delay between step attempts",
				Value:   engine.DefaultRetryDelay,
				Sources: cli.EnvVars("RETRY_DELAY"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OTLP trace export",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Aegis API")

			if command.Bool("tracing") {
				_, err := otelhelper.NewTracer(ctx, "aegis-api")
				if err != nil {
					return err
				}
			}

			registry := cmd.NewRegistry(logger)

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			engineConfig := engine.Config{
				ApprovalTimeout: command.Duration("approval-timeout"),
				StepMaxAttempts: command.Int("step-max-attempts"),
				RetryDelay:      command.Duration("retry-delay"),
			}

			api, err := NewAPI(logger, persistence, registry, eventBus, engineConfig, command.String("sweep-schedule"))
			if err != nil {
				return err
			}

			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				api.Shutdown(shutdownCtx)
			}()

			err = api.Start(ctx, command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
