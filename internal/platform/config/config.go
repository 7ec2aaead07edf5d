// Package config assembles the deployment configuration from an optional
// YAML file, a .env file, and environment variables.
package config

import (
	"fmt"
	"time"

	"lifebridge/internal/matching"
	"lifebridge/internal/privacy"
	"lifebridge/internal/privacy/budget"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	Auth     AuthConfig             `mapstructure:"auth"`
	Log      LogConfig              `mapstructure:"log"`
	Engine   matching.EngineConfig  `mapstructure:"engine"`
	Matching matching.ServiceConfig `mapstructure:"matching"`
	Privacy  privacy.Config         `mapstructure:"privacy"`
	Budget   budget.Config          `mapstructure:"budget"`
	Postgres PostgresConfig         `mapstructure:"postgres"`
	Redis    RedisConfig            `mapstructure:"redis"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	JWTSigningKey string `mapstructure:"jwt_signing_key"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// PostgresConfig selects the PostgreSQL backend. An empty URL keeps the
// in-memory stores, which is the development default.
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RedisConfig selects the Redis budget ledger backend. An empty URL keeps
// the in-memory ledger.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Default returns the development configuration: in-memory stores, noise
// on, budget accounting off.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			JWTSigningKey: "dev-secret-key-change-in-production",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Engine:   matching.DefaultEngineConfig(),
		Matching: matching.DefaultServiceConfig(),
		Privacy:  privacy.DefaultConfig(),
		Budget:   budget.DefaultConfig(),
		Postgres: PostgresConfig{MaxConns: 10},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

// Validate rejects configurations the services would refuse at startup.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Auth.JWTSigningKey == "" {
		return fmt.Errorf("auth.jwt_signing_key is required")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Privacy.Validate(); err != nil {
		return fmt.Errorf("privacy: %w", err)
	}
	if c.Budget.Enabled {
		if c.Budget.Limit <= 0 {
			return fmt.Errorf("budget.limit must be positive when enabled")
		}
		if c.Budget.Window <= 0 {
			return fmt.Errorf("budget.window must be positive when enabled")
		}
	}
	if c.Matching.DefaultTopN <= 0 || c.Matching.MaxConcurrency <= 0 || c.Matching.Deadline <= 0 {
		return fmt.Errorf("matching config values must be positive")
	}
	return nil
}
