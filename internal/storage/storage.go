package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

var ErrNotFound = errors.New("not found")

type Storage struct {
	DB *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// driverFor picks the local SQLite driver for files and memory databases and
// libsql for Turso URLs.
func driverFor(connectionString string) string {
	if connectionString == ":memory:" || strings.HasPrefix(connectionString, "file:") {
		return "sqlite3"
	}
	return "libsql"
}

// Open connects to the database and makes sure the schema exists.
func Open(connectionString string) (*Storage, error) {
	driver := driverFor(connectionString)
	db, err := sql.Open(driver, connectionString)
	if err != nil {
		return nil, fmt.Errorf("Failed to open db %s: %w", connectionString, err)
	}
	if driver == "sqlite3" {
		// SQLite allows one writer; a memory database also lives on a single connection.
		db.SetMaxOpenConns(1)
	}

	if err := InitializeDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("Failed to initialize database: %w", err)
	}
	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func InitializeDB(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS exercises (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL UNIQUE COLLATE NOCASE,
            category TEXT,
            created_at TEXT NOT NULL
        );

        CREATE TABLE IF NOT EXISTS training_sessions (
            id TEXT PRIMARY KEY,
            workout_id TEXT,
            start_time TEXT NOT NULL,
            end_time TEXT,
            notes TEXT
        );

        CREATE TABLE IF NOT EXISTS training_session_exercises (
            id TEXT PRIMARY KEY,
            training_session_id TEXT NOT NULL,
            exercise_id TEXT NOT NULL,
            position INTEGER NOT NULL DEFAULT 0,
            notes TEXT,
            FOREIGN KEY (training_session_id) REFERENCES training_sessions(id) ON DELETE CASCADE,
            FOREIGN KEY (exercise_id) REFERENCES exercises(id)
        );

        CREATE TABLE IF NOT EXISTS exercise_sets (
            id TEXT PRIMARY KEY,
            session_exercise_id TEXT NOT NULL,
            weight REAL NOT NULL DEFAULT 0,
            reps INTEGER NOT NULL DEFAULT 0,
            unit TEXT NOT NULL DEFAULT 'kg',
            rpe REAL,
            duration_seconds INTEGER,
            distance_meters REAL,
            timestamp TEXT NOT NULL,
            FOREIGN KEY (session_exercise_id) REFERENCES training_session_exercises(id) ON DELETE CASCADE
        );

        CREATE TABLE IF NOT EXISTS body_weights (
            id TEXT PRIMARY KEY,
            measured_at TEXT NOT NULL,
            weight REAL NOT NULL,
            unit TEXT NOT NULL DEFAULT 'kg'
        );

        CREATE TABLE IF NOT EXISTS achievement_definitions (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT,
            type TEXT NOT NULL,
            metric TEXT NOT NULL,
            target_value REAL NOT NULL,
            window_days INTEGER,
            repeatable INTEGER NOT NULL DEFAULT 0,
            tier TEXT NOT NULL,
            icon_key TEXT,
            sort_order INTEGER NOT NULL DEFAULT 0,
            metadata TEXT
        );

        CREATE TABLE IF NOT EXISTS achievement_instances (
            id TEXT PRIMARY KEY,
            definition_id TEXT NOT NULL,
            created_at TEXT NOT NULL,
            status TEXT NOT NULL,
            progress_current REAL NOT NULL DEFAULT 0,
            progress_target REAL NOT NULL DEFAULT 0,
            progress_percent REAL NOT NULL DEFAULT 0,
            progress_unit TEXT,
            completed_at TEXT,
            user_notes TEXT,
            metadata TEXT
        );

        CREATE TABLE IF NOT EXISTS user_goals (
            id TEXT PRIMARY KEY,
            kind TEXT NOT NULL,
            exercise_name TEXT,
            target_value REAL NOT NULL,
            secondary_value REAL,
            window_days INTEGER,
            deadline_at TEXT,
            created_at TEXT NOT NULL
        );

        CREATE TABLE IF NOT EXISTS workout_schedules (
            workout_id TEXT PRIMARY KEY,
            days TEXT NOT NULL,
            notify_hour INTEGER NOT NULL,
            notify_minute INTEGER NOT NULL,
            enabled INTEGER NOT NULL DEFAULT 1,
            next_run_at TEXT
        );

        CREATE TABLE IF NOT EXISTS notifications (
            key TEXT PRIMARY KEY,
            instance_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            title TEXT,
            payload TEXT NOT NULL,
            created_at TEXT NOT NULL
        );

        CREATE INDEX IF NOT EXISTS idx_sessions_start ON training_sessions(start_time);
        CREATE INDEX IF NOT EXISTS idx_session_exercises_session ON training_session_exercises(training_session_id);
        CREATE INDEX IF NOT EXISTS idx_sets_session_exercise ON exercise_sets(session_exercise_id);
        CREATE INDEX IF NOT EXISTS idx_instances_definition ON achievement_instances(definition_id);
    `)
	return err
}

// Times are stored as RFC3339 text in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// withTx runs fn inside a transaction that is rolled back unless fn succeeds.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Failed to commit transaction: %w", err)
	}
	return nil
}
