// Package store provides the SQLite-backed offline cache for Worklight.
// It keeps the last successfully fetched backend collections so the
// calendar can render stale-but-present data when the backend is
// unreachable, plus the locally created manual events. The backend stays
// the system of record throughout.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/minseo-dev/worklight/internal/models"
)

// Store provides access to the Worklight SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL mode for better concurrency between the TUI and CLI commands.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cached_tasks (
		user_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		title TEXT NOT NULL,
		task_type TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT,
		scheduled_at TEXT,
		task_data TEXT,
		cached_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, task_id)
	);

	CREATE TABLE IF NOT EXISTS cached_external_events (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		summary TEXT NOT NULL,
		description TEXT,
		start_at TEXT,
		date TEXT,
		calendar_name TEXT,
		cached_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS manual_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT,
		description TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cached_tasks_user ON cached_tasks(user_id);
	CREATE INDEX IF NOT EXISTS idx_cached_external_user ON cached_external_events(user_id);
	CREATE INDEX IF NOT EXISTS idx_manual_events_user ON manual_events(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Cached Task Operations ---

// ReplaceTasks swaps the cached automation-task collection for a user with
// a freshly fetched one, in a single transaction.
func (s *Store) ReplaceTasks(userID string, tasks []models.AutomationTask) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_tasks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cached tasks: %w", err)
	}

	now := time.Now().UTC()
	for _, t := range tasks {
		payload, err := json.Marshal(t.TaskData)
		if err != nil {
			return fmt.Errorf("encode task payload: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO cached_tasks (user_id, task_id, title, task_type, status, created_at, scheduled_at, task_data, cached_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, t.TaskID, t.Title, t.TaskType, t.Status, t.CreatedAt, t.ScheduledAt, string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("insert cached task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Tasks returns the cached automation tasks for a user, in cache order.
func (s *Store) Tasks(userID string) ([]models.AutomationTask, error) {
	rows, err := s.db.Query(
		`SELECT task_id, title, task_type, status, created_at, scheduled_at, task_data
		 FROM cached_tasks WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query cached tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.AutomationTask
	for rows.Next() {
		var t models.AutomationTask
		var createdAt, scheduledAt, payload sql.NullString
		if err := rows.Scan(&t.TaskID, &t.Title, &t.TaskType, &t.Status, &createdAt, &scheduledAt, &payload); err != nil {
			return nil, fmt.Errorf("scan cached task: %w", err)
		}
		t.CreatedAt = createdAt.String
		t.ScheduledAt = scheduledAt.String
		if payload.String != "" && payload.String != "null" {
			t.TaskData.Raw = json.RawMessage(payload.String)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// --- Cached External Event Operations ---

// ReplaceExternalEvents swaps the cached external-event collection for a
// user with a freshly fetched one.
func (s *Store) ReplaceExternalEvents(userID string, events []models.ExternalEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_external_events WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cached events: %w", err)
	}

	now := time.Now().UTC()
	for _, e := range events {
		_, err = tx.Exec(
			`INSERT INTO cached_external_events (user_id, id, summary, description, start_at, date, calendar_name, cached_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, e.ID, e.Summary, e.Description, e.StartAt, e.Date, e.CalendarName, now,
		)
		if err != nil {
			return fmt.Errorf("insert cached event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ExternalEvents returns the cached external events for a user.
func (s *Store) ExternalEvents(userID string) ([]models.ExternalEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, summary, description, start_at, date, calendar_name
		 FROM cached_external_events WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query cached events: %w", err)
	}
	defer rows.Close()

	var events []models.ExternalEvent
	for rows.Next() {
		var e models.ExternalEvent
		var description, startAt, date, calName sql.NullString
		if err := rows.Scan(&e.ID, &e.Summary, &description, &startAt, &date, &calName); err != nil {
			return nil, fmt.Errorf("scan cached event: %w", err)
		}
		e.Description = description.String
		e.StartAt = startAt.String
		e.Date = date.String
		e.CalendarName = calName.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// --- Manual Event Operations ---

// AddManualEvent records a confirmed manual event locally. The ID is
// generated here when the backend did not assign one.
func (s *Store) AddManualEvent(userID string, ev models.ManualEvent) (*models.ManualEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	_, err := s.db.Exec(
		`INSERT INTO manual_events (id, user_id, title, date, time, description, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, userID, ev.Title, ev.Date, ev.Time, ev.Description, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert manual event: %w", err)
	}
	return &ev, nil
}

// ManualEvents returns the user's locally recorded manual events in
// creation order.
func (s *Store) ManualEvents(userID string) ([]models.ManualEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, title, date, time, description FROM manual_events WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query manual events: %w", err)
	}
	defer rows.Close()

	var events []models.ManualEvent
	for rows.Next() {
		var e models.ManualEvent
		var tm, description sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &tm, &description); err != nil {
			return nil, fmt.Errorf("scan manual event: %w", err)
		}
		e.Time = tm.String
		e.Description = description.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteManualEvent removes a locally recorded manual event.
func (s *Store) DeleteManualEvent(userID, id string) error {
	_, err := s.db.Exec(`DELETE FROM manual_events WHERE user_id = ? AND id = ?`, userID, id)
	return err
}
