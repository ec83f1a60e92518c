// Package postgres provides the optional persistence layer: a pgx connection
// pool, schema migrations, and the molecule repository used by dataset
// ingestion.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ChemSAR/internal/config"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/pkg/errors"
)

// NewPool connects a pgx connection pool with the configured limits and
// verifies connectivity with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "parsing database configuration")
	}
	pc.MaxConns = int32(cfg.MaxConns)
	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "creating connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "database ping failed").
			WithDetail("host=" + cfg.Host)
	}

	log.Info("database pool ready",
		logging.String("host", cfg.Host),
		logging.String("database", cfg.DBName),
		logging.Int("max_conns", cfg.MaxConns))
	return pool, nil
}
