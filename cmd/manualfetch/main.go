// Command manualfetch runs the full snapshot-to-store rebuild once and
// exits. Useful for seeding the store before the worker is deployed and
// for recovering from a bad store file by hand.
package main

import (
	"context"
	"time"

	"nba_decade/backend/internal/config"
	"nba_decade/backend/internal/extract"
	"nba_decade/backend/internal/kaggle"
	"nba_decade/backend/internal/pipeline"
	"nba_decade/backend/internal/repository"
	"nba_decade/backend/internal/snapshot"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	store, err := repository.NewStore(cfg.StorePath, cfg.MinFileSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ratings store")
	}
	defer store.Close()

	// 1. Validate store connectivity
	log.Info().Msg("Validating store health...")
	if err := store.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Store health check failed")
	}

	// 2. Run the rebuild end to end
	kaggleClient := kaggle.NewClient(
		cfg.KaggleBaseURL,
		cfg.KaggleUsername,
		cfg.KaggleKey,
		cfg.FetchTimeout,
		cfg.FetchMaxRetries,
		cfg.FetchRetryDelay,
	)
	fetcher := snapshot.NewFetcher(kaggleClient, cfg.KaggleDataset, cfg.KaggleFile, cfg.ScratchDir, cfg.MinFileSize)
	extractor := extract.NewExtractor(cfg.SnapshotOpenTimeout)
	pipe := pipeline.New(fetcher, extractor, store)

	start := time.Now()
	log.Info().
		Str("dataset", cfg.KaggleDataset).
		Str("store", store.Path()).
		Msg("Starting manual rebuild")

	if err := pipe.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Manual rebuild failed")
	}

	// 3. Report what landed in the store
	rows, err := store.CountStats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count stored team-season rows")
	}

	log.Info().
		Int("team_season_rows", rows).
		Dur("elapsed", time.Since(start)).
		Msg("Manual rebuild complete.")
}
