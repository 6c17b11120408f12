package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/tasktracker/internal/apperr"
	"github.com/starford/tasktracker/internal/models"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	position    INTEGER PRIMARY KEY,
	id          INTEGER NOT NULL UNIQUE,
	description TEXT    NOT NULL DEFAULT '',
	status      TEXT    NOT NULL,
	created_at  TEXT    NOT NULL,
	updated_at  TEXT    NOT NULL
);
`

// SQLite implements Provider on a single SQLite database file.
// Save rewrites the whole table in one transaction.
type SQLite struct {
	path string
	conn *sql.DB
}

// NewSQLite opens (or creates) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	conn, err := sql.Open("sqlite3", abs+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	return &SQLite{path: abs, conn: conn}, nil
}

// Path returns the absolute database path.
func (s *SQLite) Path() string {
	return s.path
}

// Init applies the schema; an empty table is an empty collection.
func (s *SQLite) Init() error {
	if _, err := s.conn.Exec(sqliteSchemaSQL); err != nil {
		return fmt.Errorf("storage: apply schema: %w", err)
	}
	return nil
}

// Load returns all tasks ordered by their position in the collection.
func (s *SQLite) Load() ([]models.Task, error) {
	rows, err := s.conn.Query(`SELECT id, description, status, created_at, updated_at FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("storage: query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var (
			t                models.Task
			status           string
			created, updated string
		)
		if err := rows.Scan(&t.ID, &t.Description, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("storage: scan task: %w", err)
		}
		t.Status = models.Status(status)
		if t.CreatedAt, err = models.ParseTimestamp(created); err != nil {
			return nil, fmt.Errorf("%w: task %d created_at: %w", apperr.ErrCorrupt, t.ID, err)
		}
		if t.UpdatedAt, err = models.ParseTimestamp(updated); err != nil {
			return nil, fmt.Errorf("%w: task %d updated_at: %w", apperr.ErrCorrupt, t.ID, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate tasks: %w", err)
	}
	if err := models.ValidateCollection(tasks); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrCorrupt, s.path, err)
	}
	return tasks, nil
}

// Save replaces every row with tasks.
func (s *SQLite) Save(tasks []models.Task) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("storage: clear tasks: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO tasks (position, id, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		if _, err := stmt.Exec(i, t.ID, t.Description, string(t.Status),
			t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("storage: insert task %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
