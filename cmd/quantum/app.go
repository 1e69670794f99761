package main

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbet/quantum/internal/config"
	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/orchestrator"
	"github.com/quantbet/quantum/internal/referee"
	"github.com/quantbet/quantum/internal/snapshot"
	"github.com/quantbet/quantum/internal/telemetry"
	"github.com/quantbet/quantum/internal/tracker"
)

// app assembles the full dependency graph from configuration. Postgres
// and Redis are both optional; without them DNA degrades to neutral
// templates and snapshots stay in memory.
type app struct {
	cfg     config.Config
	db      *sqlx.DB
	engine  *orchestrator.Orchestrator
	settler *orchestrator.Settler
	repo    snapshot.Repository
	tracker *tracker.Tracker
	metrics *telemetry.Metrics
	log     zerolog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	setLogLevel(cmd.Flags())
	logger := log.Logger

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	calib := config.DefaultCalibration()
	if cfg.Engine.CalibrationPath != "" {
		calib, err = config.LoadCalibration(cfg.Engine.CalibrationPath)
		if err != nil {
			return nil, fmt.Errorf("load calibration: %w", err)
		}
	}

	a := &app{cfg: cfg, log: logger}

	var relSource dna.RelationalSource
	var pairSource friction.PairSource
	var refLoader *referee.Loader
	a.repo = snapshot.NewMemoryRepository()

	if cfg.Database.Enabled {
		db, err := sqlx.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

		a.db = db
		relSource = dna.NewPostgresSource(db, cfg.Database.QueryTimeout)
		pairSource = friction.NewPostgresPairSource(db, cfg.Database.QueryTimeout)
		refLoader = referee.NewLoader(db, cfg.Database.QueryTimeout, logger)
		a.repo = snapshot.NewPostgresRepository(db)
	}

	var docSource dna.DocumentSource
	if cfg.Engine.DNADocumentPath != "" {
		docSource = dna.NewFileDocumentSource(cfg.Engine.DNADocumentPath)
	}

	dnaCache := dna.NewMemoryCache(cfg.Redis.TTL)
	var trackerStore tracker.Store
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		dnaCache = dna.NewRedisCache(rdb, cfg.Redis.TTL)
		trackerStore = tracker.NewRedisStore(rdb, "")
	}

	a.tracker = tracker.New(trackerStore, logger)
	if err := a.tracker.Restore(cmd.Context()); err != nil {
		logger.Warn().Err(err).Msg("tracker restore failed, starting cold")
	}

	a.metrics = telemetry.NewMetrics()

	dnaLoader := dna.NewLoader(relSource, docSource, dna.NewConverter(calib), dnaCache, logger)
	frictionLoader := friction.NewLoader(pairSource, cfg.Engine.FallbackOnMiss, logger)

	a.engine = orchestrator.New(dnaLoader, frictionLoader, refLoader, a.tracker, a.repo, a.metrics, cfg, logger)
	a.settler = orchestrator.NewSettler(a.repo, a.tracker, logger)
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing postgres")
		}
	}
}

// waitTimeout bounds graceful shutdown.
const waitTimeout = 10 * time.Second
