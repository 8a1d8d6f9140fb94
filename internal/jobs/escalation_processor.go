package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"ArthaFlowSaas/internal/config"
	"ArthaFlowSaas/internal/logger"
	"ArthaFlowSaas/internal/revision"
)

// EscalationConfig holds configuration for the escalation sweep.
type EscalationConfig struct {
	Schedule  string
	BatchSize int
	TimeZone  string
}

// NewDefaultEscalationConfig creates an EscalationConfig with default values.
func NewDefaultEscalationConfig() *EscalationConfig {
	return &EscalationConfig{
		Schedule:  config.DefaultEscalationSchedule,
		BatchSize: config.EscalationBatchSize,
		TimeZone:  config.DefaultTimeZone,
	}
}

// RunEscalationScheduler starts the cron job that closes expired revision
// windows. The sweep body is idempotent, so an overlapping or doubled
// invocation is harmless.
func RunEscalationScheduler(cfg *EscalationConfig, mgr *revision.Manager) (*cron.Cron, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultEscalationSchedule
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = config.EscalationBatchSize
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		processed, err := mgr.EscalateExpired(ctx)
		if err != nil {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Escalation sweep failed: %v", err))
			}
			log.Printf("[ERROR] escalation sweep failed: %v", err)
			return
		}
		if processed > 0 {
			log.Printf("Escalation sweep closed %d expired revision windows", processed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule escalation sweep: %v", err)
	}

	c.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Escalation scheduler started")
	}
	return c, nil
}
