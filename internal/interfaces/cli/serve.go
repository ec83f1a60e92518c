package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSAR/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/ChemSAR/internal/interfaces/http"
	"github.com/turtacn/ChemSAR/internal/interfaces/http/handlers"
)

// serveOptions holds the flags for the serve command.
type serveOptions struct {
	port int
}

// NewServeCmd creates the serve command: run the HTTP API in-process.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ChemSAR HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 0, "HTTP port (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config
	log := cliCtx.Logger
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.NewMetrics()

	var checks []handlers.ReadinessCheck
	var datasetHandler *handlers.DatasetHandler
	if cfg.Database.Enabled() {
		if err := postgres.Migrate(cfg.Database, log); err != nil {
			return err
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		checks = append(checks, handlers.ReadinessCheck{Name: "postgres", Check: pool.Ping})
		datasetHandler = handlers.NewDatasetHandler(cliCtx.Service, postgres.NewMoleculeRepository(pool, log))
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ScreeningHandler: handlers.NewScreeningHandler(cliCtx.Service),
		HealthHandler:    handlers.NewHealthHandler(Version, checks...),
		DatasetHandler:   datasetHandler,
		Logger:           log,
		Metrics:          metrics,
		Mode:             cfg.Server.Mode,
	})
	srv := httpserver.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
		return srv.Shutdown(context.Background())
	}
}
