package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress        string        `mapstructure:"SERVER_ADDRESS"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	StoreDriver          string        `mapstructure:"STORE_DRIVER"`
	DBSource             string        `mapstructure:"DB_SOURCE"`
	SeedFile             string        `mapstructure:"SEED_FILE"`
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int           `mapstructure:"REDIS_DB"`
	CacheTTL             time.Duration `mapstructure:"CACHE_TTL"`
	SnapshotTTL          time.Duration `mapstructure:"SNAPSHOT_TTL"`
	SnapshotLoadTimeout  time.Duration `mapstructure:"SNAPSHOT_LOAD_TIMEOUT"`
	AggregateConcurrency int           `mapstructure:"AGGREGATE_CONCURRENCY"`
	PlacesAPIKey         string        `mapstructure:"PLACES_API_KEY"`
	PlacesBaseURL        string        `mapstructure:"PLACES_BASE_URL"`
	FallbackTimeout      time.Duration `mapstructure:"FALLBACK_TIMEOUT"`
	FallbackDebounce     time.Duration `mapstructure:"FALLBACK_DEBOUNCE"`
	TagCacheSize         int           `mapstructure:"TAG_CACHE_SIZE"`
	TagCacheTTL          time.Duration `mapstructure:"TAG_CACHE_TTL"`
	CORSAllowedOrigins   string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var defaults = map[string]any{
	"SERVER_ADDRESS":        "0.0.0.0:8080",
	"LOG_LEVEL":             "info",
	"STORE_DRIVER":          DriverPostgres,
	"DB_SOURCE":             "",
	"SEED_FILE":             "",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"CACHE_TTL":             "30s",
	"SNAPSHOT_TTL":          "60s",
	"SNAPSHOT_LOAD_TIMEOUT": "30s",
	"AGGREGATE_CONCURRENCY": 16,
	"PLACES_API_KEY":        "",
	"PLACES_BASE_URL":       "",
	"FALLBACK_TIMEOUT":      "4s",
	"FALLBACK_DEBOUNCE":     "500ms",
	"TAG_CACHE_SIZE":        64,
	"TAG_CACHE_TTL":         "5m",
	"CORS_ALLOWED_ORIGINS":  "*",
}

// LoadConfig reads configuration from app.env in path, then from the
// environment.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	return config, config.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBSource == "" {
			return fmt.Errorf("config: DB_SOURCE is required for the %s store", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.AggregateConcurrency < 0 {
		return fmt.Errorf("config: AGGREGATE_CONCURRENCY must not be negative")
	}
	return nil
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
