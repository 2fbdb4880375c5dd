package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/fneseed/internal/app/controllers"
	appRoutes "github.com/yigit/fneseed/internal/app/routes"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/db"
	appMiddleware "github.com/yigit/fneseed/internal/middleware"
	"github.com/yigit/fneseed/internal/pkg/filestorage"
	"github.com/yigit/fneseed/internal/pkg/logger"
	"github.com/yigit/fneseed/internal/safety"
	"github.com/yigit/fneseed/internal/scenario"
	"github.com/yigit/fneseed/internal/seed"
	"github.com/yigit/fneseed/internal/store"
)

// Dependencies holds everything a seeder command needs
type Dependencies struct {
	Config   *config.Config
	Logger   zerolog.Logger
	DB       *db.PostgresDB // nil when running against the in-memory store
	Store    store.Store
	Gate     *safety.Gate
	Reports  *filestorage.LocalStorage
	Scenario *scenario.Config
}

// BuildOptions selects how dependencies are wired
type BuildOptions struct {
	// InMemory swaps the Postgres store for a process-local one
	InMemory bool
	// Confirmer answers the destructive prompt; nil disables interactive confirmation
	Confirmer safety.Confirmer
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	ConfigureLogger(cfg)
	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConfigureLogger applies the logging section of cfg to the global logger
func ConfigureLogger(cfg *config.Config) {
	format := strings.ToLower(cfg.Logging.Format)
	logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Pretty: format == "pretty" || format == "text",
		Output: os.Stderr,
	})
}

// SetupDatabase creates the connection pool. It does not ping; the safety
// gate's connectivity probe is the first round trip.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Creating database connection pool...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create database connection pool")
		return nil, err
	}
	return database, nil
}

// BuildDependencies wires the store, safety gate, report storage and scenario.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, opts BuildOptions) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: lgr}

	if opts.InMemory {
		lgr.Warn().Msg("Using in-memory store, nothing will be written to the database")
		deps.Store = store.NewMemoryStore()
	} else {
		database, err := SetupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		deps.DB = database
		deps.Store = store.NewPostgresStore(database, logger.Component("store"))
	}

	sc, err := scenario.Load(cfg.Seeding.ScenarioFile)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	deps.Scenario = sc

	deps.Reports, err = filestorage.NewLocalStorage(cfg.Seeding.ReportDir)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialize report storage: %w", err)
	}

	deps.Gate = safety.NewGate(
		cfg.Safety.ProductionBlacklist,
		cfg.Safety.AllowedEnvironments,
		deps.Store,
		opts.Confirmer,
		logger.Component("safety"),
	)

	return deps, nil
}

// Target describes the configured store for the safety gate
func (d *Dependencies) Target() safety.Target {
	return safety.Target{
		URL:         d.Config.Store.URL,
		ServiceKey:  d.Config.Store.ServiceKey,
		Environment: d.Config.Safety.Environment,
	}
}

// RunOptions returns the gate inputs for a run with the given bypass flags
func (d *Dependencies) RunOptions(skipCleanup, skipConfirmation bool) seed.RunOptions {
	return seed.RunOptions{
		Target:      d.Target(),
		SkipCleanup: skipCleanup,
		Confirm: safety.ConfirmOptions{
			SkipConfirmation: skipConfirmation,
			CI:               d.Config.Safety.CI,
		},
	}
}

// Pipeline builds a seed pipeline from the loaded configuration
func (d *Dependencies) Pipeline() *seed.Pipeline {
	cfg := d.Config
	return seed.NewPipeline(d.Store, d.Gate, d.Reports, seed.Options{
		Tag:        cfg.Seeding.Tag,
		Volumes:    cfg.Volumes,
		Scenario:   d.Scenario,
		Seed:       cfg.Seeding.RandomSeed,
		BatchSize:  cfg.Seeding.BatchSize,
		BatchDelay: cfg.BatchDelay(),
		Password:   cfg.Seeding.Password,
	}, logger.Component("seed"))
}

// Close releases the database pool, if any
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
		d.Logger.Info().Msg("Database connection pool closed.")
	}
}

// SetupRouter configures the Gin engine for the report viewer.
func SetupRouter(cfg *config.Config, reports filestorage.ReportStorage, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, appControllers.NewReportController(reports))
	return router
}
