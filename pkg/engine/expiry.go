package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSweepSchedule = "@every 30s"

// ExpirySweeper periodically rejects approvals whose window has closed, so a
// forgotten review cannot suspend a workflow forever. Expired approvals go
// through the normal decision path and fail the step like a manual rejection.
type ExpirySweeper struct {
	logger   *slog.Logger
	engine   *Engine
	schedule string
	cron     *cron.Cron
}

func NewExpirySweeper(logger *slog.Logger, engine *Engine, schedule string) *ExpirySweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	return &ExpirySweeper{
		logger:   logger.With("module", "expiry_sweeper"),
		engine:   engine,
		schedule: schedule,
		cron:     cron.New(),
	}
}

func (s *ExpirySweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Approval expiry sweeper started", "schedule", s.schedule)

	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (s *ExpirySweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ExpirySweeper) sweep() {
	now := time.Now().UTC()

	for _, pending := range s.engine.Gate().Expired(now) {
		logger := s.logger.With("client_id", pending.ClientID, "step_id", pending.StepID)

		err := s.engine.Decide(context.Background(), pending.ClientID, pending.StepID, false, "approval window expired")
		if err != nil {
			// The reviewer may have decided between the scan and the
			// rejection; that race is harmless.
			logger.Warn("Failed to expire approval", "error", err)

			continue
		}

		logger.Info("Approval expired", "expired_at", pending.ExpiresAt)
	}
}
