package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root engine configuration. Every section has working
// defaults; a YAML file overrides them.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	HTTP       HTTPConfig       `yaml:"http"`
	Engine     EngineConfig     `yaml:"engine"`
	Consensus  ConsensusConfig  `yaml:"consensus"`
	MonteCarlo MonteCarloConfig `yaml:"monte_carlo"`
	Sizing     SizingConfig     `yaml:"sizing"`
}

// DatabaseConfig holds Postgres connection settings for the DNA, friction,
// referee and snapshot repositories.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	Enabled         bool          `yaml:"enabled"`
}

// RedisConfig holds the optional Redis cache/tracker backing store.
type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
	Enabled bool          `yaml:"enabled"`
}

// HTTPConfig configures the read-only health/metrics server.
type HTTPConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// EngineConfig holds fixture-level pipeline settings.
type EngineConfig struct {
	FixtureTimeout  time.Duration `yaml:"fixture_timeout"`
	FallbackOnMiss  bool          `yaml:"fallback_on_miss"`
	DNADocumentPath string        `yaml:"dna_document_path"` // JSON tactical extract, optional
	CalibrationPath string        `yaml:"calibration_path"`  // scale table, optional
}

// ConsensusConfig fixes the agreement thresholds for the seven-model vote.
type ConsensusConfig struct {
	MinScore float64 `yaml:"min_score"` // ≥0.60 of weighted mass positive
	MinCount int     `yaml:"min_count"` // ≥5 positive votes
}

// MonteCarloConfig drives the robustness validator.
type MonteCarloConfig struct {
	Iterations int     `yaml:"iterations"`
	NoisePct   float64 `yaml:"noise_pct"`
	Seed       int64   `yaml:"seed"` // 0 means time-seeded
}

// SizingConfig fixes the Kelly stake bounds.
type SizingConfig struct {
	KellyFraction float64 `yaml:"kelly_fraction"`
	MinStake      float64 `yaml:"min_stake"`
	MaxStake      float64 `yaml:"max_stake"`
	StakeStep     float64 `yaml:"stake_step"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    10 * time.Second,
			Enabled:         false,
		},
		Redis: RedisConfig{
			TTL:     6 * time.Hour,
			Enabled: false,
		},
		HTTP: HTTPConfig{
			Host:         "127.0.0.1",
			Port:         8090,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Engine: EngineConfig{
			FixtureTimeout: 30 * time.Second,
			FallbackOnMiss: true,
		},
		Consensus: ConsensusConfig{
			MinScore: 0.60,
			MinCount: 5,
		},
		MonteCarlo: MonteCarloConfig{
			Iterations: 5000,
			NoisePct:   0.15,
		},
		Sizing: SizingConfig{
			KellyFraction: 0.25,
			MinStake:      0.5,
			MaxStake:      5.0,
			StakeStep:     0.5,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults untouched.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
