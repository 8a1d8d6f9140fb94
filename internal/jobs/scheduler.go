package jobs

import (
	"log"

	"github.com/robfig/cron/v3"

	"ArthaFlowSaas/internal/revision"
	"ArthaFlowSaas/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	mgr    *revision.Manager
	crons  []*cron.Cron
}

func NewCronService(cfg map[string]interface{}, mgr *revision.Manager) serviceiface.Service {
	return &CronService{
		config: cfg,
		mgr:    mgr,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	escCfg := NewDefaultEscalationConfig()

	// Override escalation config from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["escalation_schedule"].(string); ok && schedule != "" {
			escCfg.Schedule = schedule
		}
		if batchSize, ok := s.config["escalation_batch_size"].(int); ok && batchSize > 0 {
			escCfg.BatchSize = batchSize
		}
		if tz, ok := s.config["timezone"].(string); ok && tz != "" {
			escCfg.TimeZone = tz
		}
	}

	c, err := RunEscalationScheduler(escCfg, s.mgr)
	if err != nil {
		return err
	}
	s.crons = append(s.crons, c)

	log.Println("Cron service started, escalation sweep scheduled")
	return nil
}

func (s *CronService) Stop() error {
	for _, c := range s.crons {
		c.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}
