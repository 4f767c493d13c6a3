// Package service is the consumer-facing facade over the store and the
// update coordinator. It is the only surface the (external) web layer talks
// to, and it never leaks the pipeline's internal error taxonomy: an invalid
// store becomes a needs-update flag, a running recompute becomes an explicit
// unavailable signal.
package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/cache"
	"nba_decade/backend/internal/coordinator"
	"nba_decade/backend/internal/models"
	"nba_decade/backend/internal/repository"
)

// ErrUpdateInProgress is re-exported so callers need not import the
// coordinator to classify the unavailable signal.
var ErrUpdateInProgress = coordinator.ErrUpdateInProgress

// Status reports whether a recompute is in flight.
type Status struct {
	Updating bool `json:"updating"`
}

// Service bundles the read paths and the update triggers.
type Service struct {
	store *repository.Store
	coord *coordinator.Coordinator
	cache *cache.RedisCache
}

// New creates the service facade. cache may be nil; reads then always go to
// the store.
func New(store *repository.Store, coord *coordinator.Coordinator, c *cache.RedisCache) *Service {
	return &Service{store: store, coord: coord, cache: c}
}

// GetAll returns the full season map. The boolean is the needs-update flag:
// when true the store is missing or invalid and the caller should trigger a
// recompute. While a recompute is in flight GetAll returns
// ErrUpdateInProgress instead of stale or partial data.
func (s *Service) GetAll(ctx context.Context) (models.SeasonMap, bool, error) {
	if s.coord.Updating() {
		return nil, false, ErrUpdateInProgress
	}

	if seasons, ok := s.cache.GetSeasonMap(ctx); ok {
		return seasons, false, nil
	}

	if _, err := s.store.Verify(); err != nil {
		log.Warn().Err(err).Msg("Metrics store failed verification, update needed")
		return nil, true, nil
	}

	seasons, err := s.store.Read(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Metrics store read failed, update needed")
		return nil, true, nil
	}

	if err := s.cache.SetSeasonMap(ctx, seasons); err != nil {
		log.Warn().Err(err).Msg("Failed to populate read cache")
	}

	return seasons, false, nil
}

// GetTeams lists all persisted teams with their conference names.
func (s *Service) GetTeams(ctx context.Context) ([]models.Team, error) {
	if s.coord.Updating() {
		return nil, ErrUpdateInProgress
	}
	return s.store.ListTeams(ctx)
}

// GetSeasons returns the season identifiers present in a season map, in
// chronological order.
func (s *Service) GetSeasons(seasons models.SeasonMap) []string {
	ids := make([]string, 0, len(seasons))
	for id := range seasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetSeason returns one season's ratings, or nil when the season is absent.
func (s *Service) GetSeason(seasons models.SeasonMap, seasonID string) []models.TeamRating {
	if seasons == nil {
		return nil
	}
	return seasons[seasonID]
}

// TriggerUpdate requests a recompute. Returns nil when accepted and
// ErrUpdateInProgress when one is already running (conflict, not queued).
func (s *Service) TriggerUpdate() error {
	return s.coord.Trigger()
}

// UpdateStatus reports whether a recompute is in flight.
func (s *Service) UpdateStatus() Status {
	return Status{Updating: s.coord.Updating()}
}

// InvalidateCache drops the cached season map. The coordinator's run
// function calls this after a successful recompute.
func (s *Service) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate read cache")
	}
}
