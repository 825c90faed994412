package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Threshold table",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS thresholds (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					year INTEGER NOT NULL,
					key TEXT NOT NULL,
					kind TEXT NOT NULL CHECK (kind IN ('tax', 'social')),
					yen INTEGER NOT NULL CHECK (yen >= 0),
					label TEXT NOT NULL,
					description TEXT,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (year, key)
				)`,
				`CREATE INDEX idx_thresholds_year_active ON thresholds(year, is_active)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Employers and deposits",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS employers (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					hourly_wage INTEGER,
					monthly_salary INTEGER,
					is_primary BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_employers_user ON employers(user_id)`,

				`CREATE TABLE IF NOT EXISTS deposits (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					user_id TEXT NOT NULL,
					amount INTEGER NOT NULL,
					description TEXT NOT NULL,
					transaction_date DATETIME NOT NULL,
					classification TEXT NOT NULL CHECK (classification IN ('salary', 'other', 'needs_review')),
					employer_id TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					is_taxable BOOLEAN NOT NULL DEFAULT 1,
					reason TEXT,
					classified_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_deposits_user_date ON deposits(user_id, transaction_date)`,
				`CREATE INDEX idx_deposits_salary ON deposits(user_id, classification, employer_id)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Deposit classification history for auditing",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS deposit_classification_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					deposit_id TEXT NOT NULL,
					classification TEXT NOT NULL,
					employer_id TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					is_taxable BOOLEAN NOT NULL DEFAULT 1,
					reason TEXT,
					source TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (deposit_id) REFERENCES deposits(id)
				)`,
				`CREATE INDEX idx_classification_history_deposit ON deposit_classification_history(deposit_id)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// SchemaVersion returns the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
