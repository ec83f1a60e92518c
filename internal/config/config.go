// Package config defines all configuration structures for ChemSAR.  No I/O
// or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ChemSAR/internal/domain/cluster"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.  The database is
// optional; an empty Host disables persistence.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN renders the connection string for pgx.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// Enabled reports whether persistence is configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// RedisConfig holds Redis connection parameters for the fingerprint cache.
// An empty Addr selects the in-memory cache instead.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// Enabled reports whether the Redis cache is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// PipelineConfig holds the clustering-pipeline defaults that requests may
// override per call.
type PipelineConfig struct {
	// Cutoff is the default Tanimoto distance threshold, in (0, 1].
	Cutoff float64 `mapstructure:"cutoff"`

	// FingerprintType selects the default fingerprint algorithm.
	FingerprintType string `mapstructure:"fingerprint_type"`

	// MorganRadius and FingerprintBits tune the Morgan fingerprint.
	MorganRadius    int `mapstructure:"morgan_radius"`
	FingerprintBits int `mapstructure:"fingerprint_bits"`
}

// Config is the root configuration for every ChemSAR process.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// Validate checks cross-field constraints after defaults have been applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release, or test, got %q", c.Server.Mode)
	}
	if err := cluster.ValidateCutoff(c.Pipeline.Cutoff); err != nil {
		return fmt.Errorf("pipeline.cutoff: %w", err)
	}
	if !chem.FingerprintType(c.Pipeline.FingerprintType).IsValid() {
		return fmt.Errorf("pipeline.fingerprint_type %q is not supported", c.Pipeline.FingerprintType)
	}
	if c.Pipeline.FingerprintBits < 64 {
		return fmt.Errorf("pipeline.fingerprint_bits must be at least 64, got %d", c.Pipeline.FingerprintBits)
	}
	if c.Database.Enabled() && c.Database.DBName == "" {
		return fmt.Errorf("database.db_name is required when database.host is set")
	}
	return nil
}
