package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT 'password',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS registration (
		id TEXT PRIMARY KEY,
		child_name TEXT NOT NULL,
		birth_date TEXT NOT NULL,
		guardian_name TEXT NOT NULL,
		guardian_whatsapp TEXT NOT NULL,
		age_group TEXT NOT NULL,
		has_dietary_restriction TEXT NOT NULL,
		dietary_restriction_details TEXT NOT NULL DEFAULT '',
		info_consent INTEGER NOT NULL DEFAULT 0,
		supervision_consent INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		submission_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_registration_submission_date
		ON registration(submission_date DESC);
	CREATE INDEX IF NOT EXISTS idx_registration_child_name
		ON registration(child_name);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
