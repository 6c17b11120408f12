// Package testutil provides shared test helpers for storage-backed tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/tasktracker/internal/storage"
)

// JSONProvider creates a JSON file provider inside a temporary directory.
func JSONProvider(t *testing.T) *storage.JSONFile {
	t.Helper()
	p, err := storage.NewJSONFile(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// SQLiteProvider creates a SQLite provider inside a temporary directory
// that is closed when the test ends.
func SQLiteProvider(t *testing.T) *storage.SQLite {
	t.Helper()
	p, err := storage.NewSQLite(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// Providers returns one fresh provider per storage driver, keyed by driver name.
func Providers(t *testing.T) map[string]storage.Provider {
	t.Helper()
	return map[string]storage.Provider{
		storage.DriverJSON:   JSONProvider(t),
		storage.DriverSQLite: SQLiteProvider(t),
	}
}

// ReadFile returns the bytes at path, failing the test on error.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// Clock is a deterministic time source that advances by Step on every call.
type Clock struct {
	mu   sync.Mutex
	next time.Time
	Step time.Duration
}

// NewClock returns a clock starting at start.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{next: start, Step: step}
}

// Now returns the current time and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.Step)
	return now
}
