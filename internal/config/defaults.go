package config

import (
	"time"

	"github.com/turtacn/ChemSAR/internal/domain/cluster"
	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// Default values applied to unset fields.
const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultDatabasePort = 5432
	DefaultSSLMode      = "disable"

	DefaultRedisPoolSize = 10
	DefaultCacheTTL      = 24 * time.Hour
	DefaultKeyPrefix     = "chemsar:"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills in defaults for every zero-valued field.  It never
// overwrites an explicitly configured value.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 8 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultKeyPrefix
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Pipeline.Cutoff == 0 {
		cfg.Pipeline.Cutoff = cluster.DefaultCutoff
	}
	if cfg.Pipeline.FingerprintType == "" {
		cfg.Pipeline.FingerprintType = chem.FPMorgan.String()
	}
	if cfg.Pipeline.MorganRadius == 0 {
		cfg.Pipeline.MorganRadius = molecule.DefaultMorganRadius
	}
	if cfg.Pipeline.FingerprintBits == 0 {
		cfg.Pipeline.FingerprintBits = molecule.DefaultFingerprintBits
	}
}
