// Package pipeline wires the full recompute: fetch the snapshot, extract the
// game table, derive the season ratings and persist them. Every stage fails
// fast; nothing partial is ever written.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/analytics"
	"nba_decade/backend/internal/extract"
	"nba_decade/backend/internal/metrics"
	"nba_decade/backend/internal/repository"
	"nba_decade/backend/internal/snapshot"
)

// Pipeline runs one full rebuild of the metrics store from the raw snapshot.
type Pipeline struct {
	fetcher   *snapshot.Fetcher
	extractor *extract.Extractor
	store     *repository.Store
}

// New assembles a pipeline from its stages.
func New(fetcher *snapshot.Fetcher, extractor *extract.Extractor, store *repository.Store) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
	}
}

// Run executes the four stages in order: fetch, extract, compute, write. The scratch directory is
// cleaned up on every exit path; the extracted snapshot only needs to live
// for the duration of this call.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	defer p.fetcher.Cleanup()

	log.Info().Msg("Starting full recompute")

	path, err := p.fetcher.Fetch(ctx)
	if err != nil {
		metrics.RecordRecompute("failure", time.Since(start).Seconds())
		metrics.RecordError("fetcher", "fetch")
		return err
	}

	rows, err := p.extractor.Extract(ctx, path)
	if err != nil {
		metrics.RecordRecompute("failure", time.Since(start).Seconds())
		metrics.RecordError("extractor", "extract")
		return err
	}

	seasons, err := analytics.Compute(rows)
	if err != nil {
		metrics.RecordRecompute("failure", time.Since(start).Seconds())
		metrics.RecordError("analytics", "transform")
		return err
	}

	if err := p.store.Write(ctx, seasons); err != nil {
		metrics.RecordRecompute("failure", time.Since(start).Seconds())
		metrics.RecordError("store", "write")
		return err
	}

	metrics.RecordRecompute("success", time.Since(start).Seconds())
	log.Info().
		Int("seasons", len(seasons)).
		Dur("duration", time.Since(start)).
		Msg("Full recompute complete")

	return nil
}
