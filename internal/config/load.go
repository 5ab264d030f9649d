package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g. SCRY_SESSION_GOAL.
const envPrefix = "SCRY"

// setDefaults registers the default value of every setting.
// Keys must be registered so that viper binds the matching environment variables.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "data/trainer.db")

	v.SetDefault("session.goal", 20)
	v.SetDefault("session.share_review", 60)
	v.SetDefault("session.share_relearn", 20)
	v.SetDefault("session.share_new", 20)
	v.SetDefault("session.high_frequency_first", true)
	v.SetDefault("session.interval_scale", "slow")
	v.SetDefault("session.srs_enabled", true)
	v.SetDefault("session.order", "pack")

	v.SetDefault("catalog.dir", "data/vocab")
	v.SetDefault("catalog.cefr", "")
	v.SetDefault("catalog.high_frequency_only", false)
	v.SetDefault("catalog.topics", "")

	v.SetDefault("reminder.interval", "0s")
	v.SetDefault("reminder.collection", "all")
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom behaves like Load but looks for config.yaml in dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
