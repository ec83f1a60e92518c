package config

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CHEMSAR"

// configKeys lists every configuration key.  Registering them as defaults
// makes env-only overrides visible to Unmarshal even when no config file is
// loaded.
var configKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_body_size", "server.shutdown_timeout",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns",
	"database.min_conns", "database.conn_max_lifetime",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"log.level", "log.format", "log.output",
	"pipeline.cutoff", "pipeline.fingerprint_type",
	"pipeline.morgan_radius", "pipeline.fingerprint_bits",
}

// newViper builds a pre-configured Viper instance: YAML file type, CHEMSAR_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that nested keys like "database.host" resolve to CHEMSAR_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		v.SetDefault(key, nil)
	}
	return v
}

// Load reads the YAML file at configPath, merges CHEMSAR_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CHEMSAR_* environment variables
// and defaults, with no config file required.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk.  It is intended for hot-reloading
// settings that are safe to change at runtime, such as the log level and the
// pipeline cutoff; callers decide which parts of the new Config to apply.
//
// Watch is non-blocking; the underlying fsnotify watcher runs in a viper
// managed goroutine.  If a changed file fails to parse or validate, onChange
// is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; callers should have called Load first, so errors here
	// mean the watcher reports the next valid state.
	_ = v.ReadInConfig()

	var mu sync.Mutex
	last, _ := unmarshalAndFinalize(v)

	v.OnConfigChange(func(_ fsnotify.Event) {
		// Editors and os.WriteFile rewrite files non-atomically; the event
		// can fire on the truncate half, when the file is empty and every
		// key would resolve to its default.  Only a non-empty file that
		// parses and differs from the last delivered state is reported.
		raw, err := os.ReadFile(configPath)
		if err != nil || len(bytes.TrimSpace(raw)) == 0 {
			return
		}
		if err := v.ReadInConfig(); err != nil {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		mu.Lock()
		if last != nil && reflect.DeepEqual(*cfg, *last) {
			mu.Unlock()
			return
		}
		last = cfg
		mu.Unlock()
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on error.  For use in main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
