// Package taskstore implements the task operations over a storage.Provider.
// Every operation loads the full collection, applies one change and, when
// something changed, writes the full collection back.
package taskstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/starford/tasktracker/internal/apperr"
	"github.com/starford/tasktracker/internal/models"
	"github.com/starford/tasktracker/internal/storage"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store applies task operations against a storage provider.
type Store struct {
	provider storage.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a store backed by provider.
func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file of the collection.
func (s *Store) Path() string {
	return s.provider.Path()
}

// Add appends a new todo task with id count+1.
func (s *Store) Add(_ context.Context, description string) (models.Task, error) {
	tasks, err := s.load()
	if err != nil {
		return models.Task{}, err
	}

	now := s.now()
	task := models.Task{
		ID:          len(tasks) + 1,
		Description: description,
		Status:      models.StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tasks = append(tasks, task)

	if err := s.save(tasks); err != nil {
		return models.Task{}, err
	}
	s.logger.Debug("task added", slog.Int("id", task.ID))
	return task, nil
}

// Update replaces the description of task id.
func (s *Store) Update(_ context.Context, id int, description string) (models.Task, error) {
	tasks, err := s.load()
	if err != nil {
		return models.Task{}, err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return models.Task{}, notFound(id)
	}
	tasks[i].Description = description
	tasks[i].UpdatedAt = s.touch(tasks[i].UpdatedAt)

	if err := s.save(tasks); err != nil {
		return models.Task{}, err
	}
	s.logger.Debug("task updated", slog.Int("id", id))
	return tasks[i], nil
}

// Delete removes task id and shifts every higher id down by one so ids
// stay contiguous from 1.
func (s *Store) Delete(_ context.Context, id int) error {
	tasks, err := s.load()
	if err != nil {
		return err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return notFound(id)
	}
	tasks = append(tasks[:i], tasks[i+1:]...)
	for j := range tasks {
		if tasks[j].ID > id {
			tasks[j].ID--
		}
	}

	if err := s.save(tasks); err != nil {
		return err
	}
	s.logger.Debug("task deleted", slog.Int("id", id), slog.Int("remaining", len(tasks)))
	return nil
}

// Mark sets the status of task id. Any transition is allowed.
func (s *Store) Mark(_ context.Context, id int, status models.Status) (models.Task, error) {
	if err := status.Validate(); err != nil {
		return models.Task{}, err
	}

	tasks, err := s.load()
	if err != nil {
		return models.Task{}, err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return models.Task{}, notFound(id)
	}
	tasks[i].Status = status
	tasks[i].UpdatedAt = s.touch(tasks[i].UpdatedAt)

	if err := s.save(tasks); err != nil {
		return models.Task{}, err
	}
	s.logger.Debug("task marked", slog.Int("id", id), slog.String("status", status.String()))
	return tasks[i], nil
}

// List returns tasks in stored order, keeping only those with the given
// status when filter is non-nil. No match yields an empty slice.
func (s *Store) List(_ context.Context, filter *models.Status) ([]models.Task, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return tasks, nil
	}

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == *filter {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) load() ([]models.Task, error) {
	if err := s.provider.Init(); err != nil {
		return nil, fmt.Errorf("taskstore: init: %w", err)
	}
	tasks, err := s.provider.Load()
	if err != nil {
		return nil, fmt.Errorf("taskstore: load: %w", err)
	}
	return tasks, nil
}

func (s *Store) save(tasks []models.Task) error {
	if err := s.provider.Save(tasks); err != nil {
		return fmt.Errorf("taskstore: save: %w", err)
	}
	return nil
}

// touch returns the current time, forced strictly after prev.
func (s *Store) touch(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func indexOf(tasks []models.Task, id int) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id int) error {
	return fmt.Errorf("task %d: %w", id, apperr.ErrNotFound)
}
