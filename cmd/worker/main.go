package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nba_decade/backend/internal/cache"
	"nba_decade/backend/internal/config"
	"nba_decade/backend/internal/coordinator"
	"nba_decade/backend/internal/extract"
	"nba_decade/backend/internal/kaggle"
	"nba_decade/backend/internal/pipeline"
	"nba_decade/backend/internal/repository"
	"nba_decade/backend/internal/scheduler"
	"nba_decade/backend/internal/service"
	"nba_decade/backend/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting NBA Decade Ratings Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Open the ratings store
	store, err := repository.NewStore(cfg.StorePath, cfg.MinFileSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ratings store")
	}
	defer store.Close()
	log.Info().Str("path", store.Path()).Msg("Ratings store opened")

	// Initialize Kaggle client
	kaggleClient := kaggle.NewClient(
		cfg.KaggleBaseURL,
		cfg.KaggleUsername,
		cfg.KaggleKey,
		cfg.FetchTimeout,
		cfg.FetchMaxRetries,
		cfg.FetchRetryDelay,
	)
	log.Info().Msg("Kaggle client initialized")

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	if cfg.CacheEnabled {
		redisCache, err = cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, time.Duration(cfg.CacheTTL)*time.Second)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info().Msg("Redis cache connected")
		}
	}

	// Assemble the recompute pipeline
	fetcher := snapshot.NewFetcher(kaggleClient, cfg.KaggleDataset, cfg.KaggleFile, cfg.ScratchDir, cfg.MinFileSize)
	extractor := extract.NewExtractor(cfg.SnapshotOpenTimeout)
	pipe := pipeline.New(fetcher, extractor, store)

	var svc *service.Service
	coord := coordinator.New(func(runCtx context.Context) error {
		if err := pipe.Run(runCtx); err != nil {
			return err
		}
		svc.InvalidateCache(runCtx)
		return nil
	})
	svc = service.New(store, coord, redisCache)
	coord.Start(ctx)
	log.Info().Msg("Recompute coordinator started")

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort), store)
	}

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, coord, store)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Build the store on startup if it is missing or truncated
	if cfg.InitialSyncEnabled {
		if _, err := store.Verify(); err != nil {
			log.Info().Err(err).Msg("Store not usable, triggering initial recompute...")
			if err := coord.Trigger(); err != nil {
				log.Error().Err(err).Msg("Failed to trigger initial recompute")
			}
		} else {
			log.Info().Msg("Store verified, skipping initial recompute")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string, store *repository.Store) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
