package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/config"
	"nba_decade/backend/internal/coordinator"
	"nba_decade/backend/internal/repository"
)

// Scheduler manages background recompute triggers:
// - a nightly refresh cron that rebuilds the store from a fresh snapshot
// - a periodic store verification that forces a rebuild when the store
//   file goes missing or truncated
type Scheduler struct {
	cfg      *config.Config
	coord    *coordinator.Coordinator
	store    *repository.Store
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, coord *coordinator.Coordinator, store *repository.Store) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		coord:    coord,
		store:    store,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Nightly refresh: pull a fresh snapshot and rebuild the store.
	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly refresh...")
		s.trigger("nightly refresh")
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly refresh scheduled")

	// Periodic store verification.
	interval := time.Duration(s.cfg.StoreCheckInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Store verification started")

	go s.pollStore(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollStore periodically verifies the store file and forces a recompute
// when it fails verification.
func (s *Scheduler) pollStore(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping store verification")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping store verification")
			return
		case <-s.ticker.C:
			if _, err := s.store.Verify(); err != nil {
				log.Warn().Err(err).Msg("Store failed verification, forcing recompute")
				s.trigger("store verification")
			}
		}
	}
}

// trigger requests a recompute; an in-flight run is logged, not an error.
func (s *Scheduler) trigger(reason string) {
	if err := s.coord.Trigger(); err != nil {
		if errors.Is(err, coordinator.ErrUpdateInProgress) {
			log.Info().Str("reason", reason).Msg("Recompute already in progress, skipping trigger")
			return
		}
		log.Error().Err(err).Str("reason", reason).Msg("Failed to trigger recompute")
	}
}
