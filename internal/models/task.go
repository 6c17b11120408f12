// Package models defines the domain types for the task tracker.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tasktracker/internal/apperr"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus converts s into a Status, rejecting anything outside the enum.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// Validate reports apperr.ErrInvalidStatus for values outside the enum.
func (s Status) Validate() error {
	for _, known := range Statuses {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (want one of todo, in-progress, done)", apperr.ErrInvalidStatus, string(s))
}

func (s Status) String() string {
	return string(s)
}

// Label is the status in prose form, e.g. "in progress".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "-", " ")
}

// Task is one trackable to-do item.
type Task struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// localLayout is the offset-less ISO-8601 form older task files use,
// e.g. 2024-10-01T12:34:56.789012. It is read in local time.
const localLayout = "2006-01-02T15:04:05.999999999"

// ParseTimestamp accepts RFC 3339 and falls back to localLayout.
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(localLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return ts, nil
}

// UnmarshalJSON decodes a task, accepting either timestamp form.
// Encoding always writes RFC 3339.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if t.CreatedAt, err = ParseTimestamp(aux.CreatedAt); err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	if t.UpdatedAt, err = ParseTimestamp(aux.UpdatedAt); err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}
	return nil
}

// Validate checks a single task record.
func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required, validation.Min(1)),
		validation.Field(&t.Status, validation.Required, validation.In(StatusTodo, StatusInProgress, StatusDone)),
		validation.Field(&t.CreatedAt, validation.Required),
		validation.Field(&t.UpdatedAt, validation.Required),
	)
}

// String renders the task the way list output shows it.
func (t Task) String() string {
	return fmt.Sprintf("ID: %d - %s (%s)", t.ID, t.Description, t.Status)
}

// ValidateCollection checks every task and that ids are unique.
func ValidateCollection(tasks []Task) error {
	seen := make(map[int]struct{}, len(tasks))
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task at index %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("task at index %d: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
