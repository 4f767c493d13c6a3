package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Kaggle dataset source
	KaggleBaseURL  string `envconfig:"KAGGLE_BASE_URL" default:"https://www.kaggle.com/api/v1"`
	KaggleUsername string `envconfig:"KAGGLE_USERNAME" required:"true"`
	KaggleKey      string `envconfig:"KAGGLE_KEY" required:"true"`
	KaggleDataset  string `envconfig:"KAGGLE_DATASET" default:"wyattowalsh/basketball"`
	KaggleFile     string `envconfig:"KAGGLE_FILE" default:"nba.sqlite"`

	// Snapshot fetch
	FetchMaxRetries int           `envconfig:"FETCH_MAX_RETRIES" default:"3"`
	FetchRetryDelay time.Duration `envconfig:"FETCH_RETRY_DELAY" default:"1s"`
	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"120s"`
	ScratchDir      string        `envconfig:"SCRATCH_DIR" default:"./data/scratch"`
	MinFileSize     int64         `envconfig:"MIN_FILE_SIZE" default:"1024"`

	// Snapshot extraction
	SnapshotOpenTimeout time.Duration `envconfig:"SNAPSHOT_OPEN_TIMEOUT" default:"30s"`

	// Metrics store
	StorePath string `envconfig:"STORE_PATH" default:"./data/decade.sqlite"`

	// Redis (read cache)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	CacheEnabled  bool   `envconfig:"CACHE_ENABLED" default:"true"`
	CacheTTL      int    `envconfig:"CACHE_TTL" default:"3600"` // seconds

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	NightlyRefreshCron string `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 4 * * *"`
	StoreCheckInterval int    `envconfig:"STORE_CHECK_INTERVAL" default:"300"` // seconds
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.KaggleUsername == "" || c.KaggleKey == "" {
		return fmt.Errorf("KAGGLE_USERNAME and KAGGLE_KEY are required")
	}

	if c.FetchMaxRetries < 1 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be at least 1")
	}

	if c.MinFileSize < 1 {
		return fmt.Errorf("MIN_FILE_SIZE must be positive")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
