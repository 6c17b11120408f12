// Package storage persists the task collection as a single local file.
package storage

import (
	"fmt"

	"github.com/starford/tasktracker/internal/models"
)

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Provider is the interface for whole-collection persistence.
type Provider interface {
	// Init creates an empty collection if none exists yet.
	Init() error
	// Load returns every task in stored order.
	Load() ([]models.Task, error)
	// Save replaces the stored collection with tasks.
	Save(tasks []models.Task) error
	// Path returns the absolute path of the backing file.
	Path() string
	// Close releases any resources held by the provider.
	Close() error
}

// Open returns the provider for driver backed by the file at path.
func Open(driver, path string) (Provider, error) {
	switch driver {
	case DriverJSON, "":
		p, err := NewJSONFile(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverSQLite:
		p, err := NewSQLite(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
