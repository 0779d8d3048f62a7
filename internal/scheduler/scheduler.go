// Package scheduler runs the recurring price sync in the background.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
)

// syncTimeout bounds one scheduled sync run across all symbols.
const syncTimeout = 10 * time.Minute

// Scheduler owns the cron instance behind the automatic price sync.
type Scheduler struct {
	cron    *cron.Cron
	pricing *service.PricingService
}

// New creates a Scheduler that will sync prices through the given service.
func New(pricing *service.PricingService) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		pricing: pricing,
	}
}

// Start registers the price sync job on the given cron spec and starts the
// scheduler. The job re-checks the provider's auto-sync flag on every run, so
// toggling the flag takes effect without a restart.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runSync); err != nil {
		return fmt.Errorf("failed to schedule price sync: %w", err)
	}
	s.cron.Start()
	log.Info().Str("schedule", spec).Msg("price sync scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSync() {
	cfg, err := s.pricing.ProviderStatus()
	if err != nil {
		log.Error().Err(err).Msg("price sync skipped, provider status unavailable")
		return
	}
	if !cfg.Configured || !cfg.Enabled || !cfg.AutoSyncEnabled {
		log.Debug().Msg("price sync skipped, auto sync disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	summary, err := s.pricing.SyncAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled price sync failed")
		return
	}
	log.Info().
		Int("updated", summary.TotalUpdated).
		Int("errors", summary.TotalErrors).
		Msg("scheduled price sync finished")
}
