// Package sqlite persists the task collection in a SQLite database. It is an
// alternative to the JSON file backend selected with `storage: sqlite`.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"errday/pkg/database"
	"errday/pkg/utils"
)

const (
	timeLayout = time.RFC3339Nano
	DataFile   = "tasks.db"
)

// DefaultPath resolves the per-user database file next to where the JSON
// backend would keep its data
func DefaultPath() string {
	path, err := xdg.DataFile(filepath.Join(database.AppName, DataFile))
	if err != nil {
		utils.Log("Could not resolve data directory, using %s: %v", DataFile, err)
		return DataFile
	}
	return path
}

// Backend implements database.Backend on top of a sqlite3 file
type Backend struct {
	db   *sql.DB
	path string
}

// Open connects to the database file and ensures the schema
func Open(dbPath string) (*Backend, error) {
	dbPath, err := database.ExpandPath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create the directory structure if it doesn't exist
	dbDir := filepath.Dir(dbPath)
	if dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, err
		}
	}

	// SQLite will create the database file if it doesn't exist
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Backend{db: db, path: dbPath}, nil
}

// EnsureSchema creates the tasks table if it doesn't exist
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			quadrant TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			scheduled_start TEXT,
			scheduled_end TEXT
		)
	`)
	return err
}

func (b *Backend) Location() string {
	return b.path
}

// Close releases the database handle
func (b *Backend) Close() error {
	return b.db.Close()
}

// Load reads every task in insertion order
func (b *Backend) Load() ([]database.Task, error) {
	rows, err := b.db.Query(`
		SELECT id, title, description, quadrant, status, created_at, scheduled_start, scheduled_end
		FROM tasks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []database.Task
	for rows.Next() {
		var (
			id, quadrant, status, created string
			task                          database.Task
			start, end                    sql.NullString
		)
		if err := rows.Scan(&id, &task.Title, &task.Description, &quadrant, &status, &created, &start, &end); err != nil {
			return nil, err
		}

		if task.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("task id %q: %w", id, err)
		}
		if task.Quadrant, err = database.ParseQuadrant(quadrant); err != nil {
			return nil, err
		}
		switch status {
		case database.Done.String():
			task.Status = database.Done
		case database.Todo.String():
			task.Status = database.Todo
		default:
			return nil, fmt.Errorf("task %s: unknown status %q", id, status)
		}
		if task.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("task %s created_at: %w", id, err)
		}
		if task.ScheduledStart, err = parseNullTime(start); err != nil {
			return nil, fmt.Errorf("task %s scheduled_start: %w", id, err)
		}
		if task.ScheduledEnd, err = parseNullTime(end); err != nil {
			return nil, fmt.Errorf("task %s scheduled_end: %w", id, err)
		}

		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	utils.Log("Loaded %d tasks from database", len(tasks))
	return tasks, nil
}

// Save replaces the table contents with the collection in one transaction
func (b *Backend) Save(tasks []database.Task) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tasks (id, position, title, description, quadrant, status, created_at, scheduled_start, scheduled_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tasks {
		if _, err := stmt.Exec(
			t.ID.String(),
			i,
			t.Title,
			t.Description,
			t.Quadrant.String(),
			t.Status.String(),
			t.CreatedAt.Format(timeLayout),
			formatNullTime(t.ScheduledStart),
			formatNullTime(t.ScheduledEnd),
		); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(timeLayout), Valid: true}
}
