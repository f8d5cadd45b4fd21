package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lookdex/internal/domain"
)

// Config holds the lookdex API configuration.
type Config struct {
	HTTP      HTTPConfig       `yaml:"http"`
	Engine    EngineConfig     `yaml:"engine"`
	Search    SearchConfig     `yaml:"search"`
	Searchers []SearcherConfig `yaml:"searchers"`
	Auth      AuthConfig       `yaml:"auth"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error (default: determined by env)
	Encoding string `yaml:"encoding"` // json or console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Engine drivers.
const (
	DriverBleve = "bleve"
	DriverRedis = "redis"
)

// EngineConfig selects and configures the search engine.
type EngineConfig struct {
	Driver string      `yaml:"driver"` // bleve, redis (default: bleve)
	Bleve  BleveConfig `yaml:"bleve"`
	Redis  RedisConfig `yaml:"redis"`
}

// BleveConfig holds embedded index settings.
type BleveConfig struct {
	Path string `yaml:"path"` // empty keeps the index in memory
}

// RedisConfig holds Redis Query Engine connection settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Index            string   `yaml:"index"`
	Prefix           string   `yaml:"prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds query limits. Zero values take the domain defaults.
type SearchConfig struct {
	MaxResults       int     `yaml:"max_results"`
	MaxDistanceMiles float64 `yaml:"max_distance_miles"`
	GeoPageSize      int     `yaml:"geo_page_size"`
	FetchBatchSize   int     `yaml:"fetch_batch_size"`
	CompileCacheSize int     `yaml:"compile_cache_size"`
	FacetPageSize    int     `yaml:"facet_page_size"`
}

// Domain converts the section into the search limits.
func (s SearchConfig) Domain() domain.SearchConfig {
	return domain.SearchConfig{
		MaxResults:       s.MaxResults,
		MaxDistanceMiles: s.MaxDistanceMiles,
		GeoPageSize:      s.GeoPageSize,
		FetchBatchSize:   s.FetchBatchSize,
		CompileCacheSize: s.CompileCacheSize,
		FacetPageSize:    s.FacetPageSize,
	}
}

// SearcherConfig names an index provider. Only look-aware searchers read the Look fields.
type SearcherConfig struct {
	Name      string `yaml:"name"`
	LookAware bool   `yaml:"look_aware"`
}

// DefaultSearcher returns the first look-aware searcher.
func (c *Config) DefaultSearcher() (SearcherConfig, bool) {
	for _, s := range c.Searchers {
		if s.LookAware {
			return s, true
		}
	}
	return SearcherConfig{}, false
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.Driver == "" {
		c.Engine.Driver = DriverBleve
	}
	if c.Engine.Redis.Index == "" {
		c.Engine.Redis.Index = "look"
	}
	if c.Engine.Redis.Prefix == "" {
		c.Engine.Redis.Prefix = "look:doc:"
	}
	if c.Engine.Redis.ReadinessTimeout <= 0 {
		c.Engine.Redis.ReadinessTimeout = 10
	}

	d := c.Search.Domain().WithDefaults()
	c.Search = SearchConfig{
		MaxResults:       d.MaxResults,
		MaxDistanceMiles: d.MaxDistanceMiles,
		GeoPageSize:      d.GeoPageSize,
		FetchBatchSize:   d.FetchBatchSize,
		CompileCacheSize: d.CompileCacheSize,
		FacetPageSize:    d.FacetPageSize,
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Engine.Driver {
	case DriverBleve:
	case DriverRedis:
		if len(c.Engine.Redis.Addrs) == 0 {
			return fmt.Errorf("engine.redis.addrs is required")
		}
	default:
		return fmt.Errorf("engine.driver must be %q or %q, got %q", DriverBleve, DriverRedis, c.Engine.Driver)
	}
	seen := make(map[string]bool, len(c.Searchers))
	for i, s := range c.Searchers {
		if s.Name == "" {
			return fmt.Errorf("searchers[%d].name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate searcher %q", s.Name)
		}
		seen[s.Name] = true
	}
	if len(c.Searchers) > 0 {
		if _, ok := c.DefaultSearcher(); !ok {
			return fmt.Errorf("searchers: at least one searcher must be look_aware")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
