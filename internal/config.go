package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tasktracker/internal/logging"
	"github.com/starford/tasktracker/internal/storage"
)

// DefaultConfigPath is used when neither --config nor TASK_CLI_CONFIG is set.
const DefaultConfigPath = "config/config.yaml"

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app" toml:"app"`
	Storage StorageConfig     `yaml:"storage" toml:"storage"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Storage.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level" toml:"log_level"`
	LogFormat string     `yaml:"log_format" toml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = logging.FormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(logging.FormatText, logging.FormatJSON)),
	)
}

// StorageConfig selects where and how tasks are persisted.
type StorageConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	Path   string `yaml:"path" toml:"path"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = storage.DriverJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(storage.DriverJSON, storage.DriverSQLite)),
		validation.Field(&c.Path, validation.Required),
	)
}

// NewDefaultConfig returns a Config that stores tasks.json in the working directory.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelWarn,
			LogFormat: logging.FormatText,
		},
		Storage: StorageConfig{
			Driver: storage.DriverJSON,
			Path:   "tasks.json",
		},
	}
}
