package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
	Catalog  CatalogConfig  `mapstructure:"catalog" validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the key-value backend.
// URL is a file path for sqlite and a connection string for postgres.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres"`
	URL    string `mapstructure:"url" validate:"required_unless=Driver memory"`
}

// SessionConfig carries the learner's trainer settings.
type SessionConfig struct {
	Goal               int    `mapstructure:"goal" validate:"gte=1"`
	ShareReview        int    `mapstructure:"share_review" validate:"gte=0"`
	ShareRelearn       int    `mapstructure:"share_relearn" validate:"gte=0"`
	ShareNew           int    `mapstructure:"share_new" validate:"gte=0"`
	HighFrequencyFirst bool   `mapstructure:"high_frequency_first"`
	IntervalScale      string `mapstructure:"interval_scale" validate:"oneof=slow fast"`
	SRSEnabled         bool   `mapstructure:"srs_enabled"`
	Order              string `mapstructure:"order" validate:"oneof=pack shuffle weak"`
}

// CatalogConfig locates vocabulary packs on disk. The filter settings only
// narrow the cross-pack "all" collection; Topics is a comma separated list.
type CatalogConfig struct {
	Dir               string `mapstructure:"dir" validate:"required"`
	CEFR              string `mapstructure:"cefr"`
	HighFrequencyOnly bool   `mapstructure:"high_frequency_only"`
	Topics            string `mapstructure:"topics"`
}

// ReminderConfig controls the periodic due-items job. A zero interval disables it.
type ReminderConfig struct {
	Interval   time.Duration `mapstructure:"interval" validate:"gte=0"`
	Collection string        `mapstructure:"collection"`
}
