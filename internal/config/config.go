// Package config loads server configuration from a YAML file with
// DIVVY_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Metrics   MetricsConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsConfig holds the Prometheus listener configuration.
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres".
	Driver string

	// Path is the sqlite database file.
	Path string

	// DSN is the postgres connection string.
	DSN string

	MaxConns           int `mapstructure:"max_conns"`
	HealthCheckSeconds int `mapstructure:"health_check_seconds"`
}

// HealthCheckPeriod returns the pool health check interval.
func (c DatabaseConfig) HealthCheckPeriod() time.Duration {
	return time.Duration(c.HealthCheckSeconds) * time.Second
}

// AuthConfig holds token and code-hashing configuration.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
}

// TokenTTL returns the bearer token lifetime.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// RateLimitConfig bounds unauthenticated requests per client.
type RateLimitConfig struct {
	Max           int
	WindowSeconds int `mapstructure:"window_seconds"`
}

// Window returns the rate limit window.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// Load reads configuration from the given YAML file (optional) and the
// environment, applies defaults, and validates the result. Environment
// variables use the DIVVY_ prefix with underscores for nesting, e.g.
// DIVVY_SERVER_PORT=9000.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("DIVVY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9091)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "divvy.db")
	// Registered empty so DIVVY_DATABASE_DSN and DIVVY_AUTH_JWT_SECRET are
	// visible to AutomaticEnv without a config file.
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.health_check_seconds", 60)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 72)
	v.SetDefault("auth.bcrypt_cost", 0) // 0 selects the bcrypt default

	v.SetDefault("ratelimit.max", 20)
	v.SetDefault("ratelimit.window_seconds", 60)

	v.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q (want sqlite or postgres)", c.Database.Driver)
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth jwt_secret must be at least 16 characters")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("auth token_ttl_hours must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	return nil
}
