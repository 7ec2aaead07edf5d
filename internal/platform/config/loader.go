package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"lifebridge/internal/matching"
)

// Load reads configuration in ascending precedence: built-in defaults, an
// optional config.yaml, then environment variables (LIFEBRIDGE_SERVER_ADDR
// overrides server.addr). A .env file is folded into the environment first.
func Load() (Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("LIFEBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Region centroids are map-valued, so a partial file override would
	// merge oddly; an empty map after unmarshal falls back to defaults.
	if len(cfg.Engine.Regions) == 0 {
		cfg.Engine.Regions = matching.DefaultEngineConfig().Regions
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
