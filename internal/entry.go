// Package internal wires configuration, logging and storage into a ready
// task store.
package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/tasktracker/internal/logging"
	"github.com/starford/tasktracker/internal/storage"
	"github.com/starford/tasktracker/internal/taskstore"
)

// App holds everything a command needs.
type App struct {
	Config *Config
	Logger *slog.Logger
	Store  *taskstore.Store

	provider storage.Provider
}

// NewApp builds an App from the given options.
func NewApp(opts ...Option) (*App, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logWriter == nil {
		app.logWriter = os.Stderr
	}

	cfg := app.config

	logger := logging.New(app.logWriter, cfg.App.LogFormat, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	provider, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	storeOpts := []taskstore.Option{taskstore.WithLogger(logger)}
	if app.clock != nil {
		storeOpts = append(storeOpts, taskstore.WithClock(app.clock))
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    taskstore.New(provider, storeOpts...),
		provider: provider,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.provider.Close()
}
