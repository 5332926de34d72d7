package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	MultiplierPolicyNeutral = "neutral"
	MultiplierPolicyLegacy  = "legacy"

	SeasonBasisCalendar      = "calendar"
	SeasonBasisTournamentEnd = "tournament_end"

	defaultSweepInterval  = time.Minute
	defaultMetricsAddress = ":9090"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Ranking       RankingConfig       `yaml:"ranking"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// SchedulerConfig controls the periodic status sweep.
type SchedulerConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// Disabled stops the periodic sweep from being registered; the CLI can still run it.
	Disabled bool `yaml:"disabled"`
}

// ScoringConfig selects the points multiplier policy.
type ScoringConfig struct {
	MultiplierPolicy string `yaml:"multiplier_policy"`
}

// RankingConfig selects how the season year of a ranking is derived.
type RankingConfig struct {
	SeasonBasis string `yaml:"season_basis"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"` // json|text
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_INTERVAL value: %w", err)
		}
		cfg.Scheduler.SweepInterval = d
	}
	if v := os.Getenv("SWEEP_DISABLED"); v != "" {
		cfg.Scheduler.Disabled = v == "true"
	}
	if v := os.Getenv("SCORING_MULTIPLIER_POLICY"); v != "" {
		cfg.Scoring.MultiplierPolicy = v
	}
	if v := os.Getenv("RANKING_SEASON_BASIS"); v != "" {
		cfg.Ranking.SeasonBasis = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.SweepInterval <= 0 {
		c.Scheduler.SweepInterval = defaultSweepInterval
	}
	if c.Scoring.MultiplierPolicy == "" {
		c.Scoring.MultiplierPolicy = MultiplierPolicyNeutral
	}
	if c.Ranking.SeasonBasis == "" {
		c.Ranking.SeasonBasis = SeasonBasisCalendar
	}
	if c.Observability.MetricsAddress == "" {
		c.Observability.MetricsAddress = defaultMetricsAddress
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

// Validate reports configuration values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres.dsn is required"))
	}
	switch c.Scoring.MultiplierPolicy {
	case MultiplierPolicyNeutral, MultiplierPolicyLegacy:
	default:
		errs = append(errs, fmt.Errorf("unknown scoring.multiplier_policy %q", c.Scoring.MultiplierPolicy))
	}
	switch c.Ranking.SeasonBasis {
	case SeasonBasisCalendar, SeasonBasisTournamentEnd:
	default:
		errs = append(errs, fmt.Errorf("unknown ranking.season_basis %q", c.Ranking.SeasonBasis))
	}
	return errors.Join(errs...)
}
