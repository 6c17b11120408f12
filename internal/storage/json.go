package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/tasktracker/internal/apperr"
	"github.com/starford/tasktracker/internal/models"
	"github.com/starford/tasktracker/internal/schema"
)

// JSONFile implements Provider as an indented JSON array in one file.
type JSONFile struct {
	path string // absolute
}

// NewJSONFile creates a provider for the file at path. The file itself
// does not need to exist yet.
func NewJSONFile(path string) (*JSONFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: path is a directory: %s", abs)
	}
	return &JSONFile{path: abs}, nil
}

// Path returns the absolute file path.
func (f *JSONFile) Path() string {
	return f.path
}

// Init writes an empty array when the file is absent.
func (f *JSONFile) Init() error {
	_, err := os.Stat(f.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: stat %s: %w", f.path, err)
	}
	return f.write([]byte("[]\n"))
}

// Load reads, schema-checks and decodes the file.
func (f *JSONFile) Load() ([]models.Task, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	if err := schema.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrCorrupt, f.path, err)
	}
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrCorrupt, f.path, err)
	}
	if err := models.ValidateCollection(tasks); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrCorrupt, f.path, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Save encodes tasks and replaces the file atomically.
func (f *JSONFile) Save(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "    ")
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	return f.write(append(data, '\n'))
}

// Close is a no-op; the file is never held open between calls.
func (f *JSONFile) Close() error {
	return nil
}

// write atomically writes content: tmp file → fsync → rename.
func (f *JSONFile) write(content []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
