package lookdex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

const (
	driverBleve = "bleve"
	driverRedis = "redis"
)

type clientConfig struct {
	driver string

	bleveDir string

	addrs     []string
	password  string
	index     string
	prefix    string
	readiness time.Duration

	search       SearchConfig
	maxBatchSize int
	metrics      bool
	logger       *zap.Logger
}

// WithMemory keeps the index in memory. This is the default.
func WithMemory() Option {
	return func(c *clientConfig) {
		c.driver = driverBleve
		c.bleveDir = ""
	}
}

// WithBleve opens or creates an on-disk index at path.
func WithBleve(path string) Option {
	return func(c *clientConfig) {
		c.driver = driverBleve
		c.bleveDir = path
	}
}

// WithRedis searches a Redis 8 index reachable at addrs.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = addrs
		c.password = password
	}
}

// WithIndex sets the Redis index name and document key prefix.
func WithIndex(name, prefix string) Option {
	return func(c *clientConfig) {
		c.index = name
		c.prefix = prefix
	}
}

// WithReadinessTimeout bounds the wait for the engine at startup.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readiness = d
	}
}

// WithSearchConfig overrides engine-side limits. Zero fields keep their defaults.
func WithSearchConfig(cfg SearchConfig) Option {
	return func(c *clientConfig) {
		c.search = cfg
	}
}

// WithMaxBatchSize caps the documents accepted by one Index or Remove call.
func WithMaxBatchSize(size int) Option {
	return func(c *clientConfig) {
		c.maxBatchSize = size
	}
}

// WithMetrics registers the search metrics with the default Prometheus registry.
func WithMetrics() Option {
	return func(c *clientConfig) {
		c.metrics = true
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
