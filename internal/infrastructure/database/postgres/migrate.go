package postgres

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/ChemSAR/internal/config"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies all pending schema migrations from the embedded SQL files.
// Running against an up-to-date schema is a no-op.
func Migrate(cfg config.DatabaseConfig, log logging.Logger) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "loading embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.DSN())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "initialising migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "applying migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "reading schema version")
	}
	log.Info("schema migrations applied",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty))
	return nil
}
