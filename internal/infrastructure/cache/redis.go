package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ChemSAR/internal/config"
	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// RedisCache is a FingerprintCache backed by Redis.  Fingerprints are
// JSON-serialized under "<prefix>fp:<structure-key>:<type>" with a TTL.
type RedisCache struct {
	client *redis.Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
}

// RedisOption customises a RedisCache.
type RedisOption func(*RedisCache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// WithTTL overrides the entry TTL.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) { c.ttl = ttl }
}

// NewRedisCache connects to Redis using the given config and verifies the
// connection with a ping.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig, log logging.Logger, opts ...RedisOption) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis ping failed").
			WithDetail("addr=" + cfg.Addr)
	}

	c := &RedisCache{
		client: client,
		logger: log,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *RedisCache) key(structureKey string, fpType chem.FingerprintType) string {
	return c.prefix + "fp:" + structureKey + ":" + string(fpType)
}

// Get implements FingerprintCache.  A connection error is returned as an
// error; a plain miss is (nil, false, nil).
func (c *RedisCache) Get(ctx context.Context, structureKey string, fpType chem.FingerprintType) (*molecule.Fingerprint, bool, error) {
	data, err := c.client.Get(ctx, c.key(structureKey, fpType)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis get failed")
	}

	var fp molecule.Fingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		// A corrupt entry is treated as a miss so the pipeline recomputes.
		c.logger.Warn("dropping corrupt fingerprint cache entry",
			logging.String("structure_key", structureKey),
			logging.Err(err))
		return nil, false, nil
	}
	return &fp, true, nil
}

// Set implements FingerprintCache.
func (c *RedisCache) Set(ctx context.Context, structureKey string, fp *molecule.Fingerprint) error {
	data, err := json.Marshal(fp)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "serializing fingerprint")
	}
	if err := c.client.Set(ctx, c.key(structureKey, fp.Type), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis set failed")
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
