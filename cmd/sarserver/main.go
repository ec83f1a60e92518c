// sarserver is the ChemSAR HTTP API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ChemSAR/internal/application/screening"
	"github.com/turtacn/ChemSAR/internal/config"
	"github.com/turtacn/ChemSAR/internal/infrastructure/cache"
	"github.com/turtacn/ChemSAR/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/ChemSAR/internal/interfaces/http"
	"github.com/turtacn/ChemSAR/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment variables)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{cfg.Log.Output},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("sarserver")
	logger.Info("starting ChemSAR API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.NewMetrics()

	svcOpts := []screening.Option{
		screening.WithMetrics(metrics),
		screening.WithDefaults(cfg.Pipeline.Cutoff, chem.FingerprintType(cfg.Pipeline.FingerprintType)),
		screening.WithFingerprintParams(cfg.Pipeline.MorganRadius, cfg.Pipeline.FingerprintBits),
	}

	var checks []handlers.ReadinessCheck

	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		if err := postgres.Migrate(cfg.Database, logger); err != nil {
			logger.Fatal("database migration failed", logging.Err(err))
		}
		pool, err = postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("database connection failed", logging.Err(err))
		}
		defer pool.Close()
		checks = append(checks, handlers.ReadinessCheck{
			Name:  "postgres",
			Check: pool.Ping,
		})
	}

	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory fingerprint cache", logging.Err(err))
		} else {
			defer rc.Close()
			svcOpts = append(svcOpts, screening.WithCache(rc))
		}
	}

	svc := screening.NewService(logger, svcOpts...)

	var datasetHandler *handlers.DatasetHandler
	if pool != nil {
		repo := postgres.NewMoleculeRepository(pool, logger)
		datasetHandler = handlers.NewDatasetHandler(svc, repo)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ScreeningHandler: handlers.NewScreeningHandler(svc),
		HealthHandler:    handlers.NewHealthHandler(version, checks...),
		DatasetHandler:   datasetHandler,
		Logger:           logger,
		Metrics:          metrics,
		Mode:             cfg.Server.Mode,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", logging.Err(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", logging.Err(err))
		}
	}

	logger.Info("server stopped")
}

// loadConfig reads the config file when given, otherwise builds the
// configuration from CHEMSAR_* environment variables and defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
