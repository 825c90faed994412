package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

const thresholdColumns = `year, key, kind, yen, label, COALESCE(description, ''), is_active`

// ActiveThresholds returns the active threshold rows for a year, ordered by amount.
func (s *SQLiteStorage) ActiveThresholds(ctx context.Context, year int) ([]model.ThresholdDefinition, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+thresholdColumns+`
		FROM thresholds
		WHERE year = ? AND is_active = 1
		ORDER BY yen ASC, key ASC`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query active thresholds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanThresholds(rows)
}

// ListThresholds returns every threshold row for a year, active or not.
func (s *SQLiteStorage) ListThresholds(ctx context.Context, year int) ([]model.ThresholdDefinition, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+thresholdColumns+`
		FROM thresholds
		WHERE year = ?
		ORDER BY yen ASC, key ASC`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query thresholds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanThresholds(rows)
}

// UpsertThreshold inserts a threshold or replaces the row for the same year and key.
func (s *SQLiteStorage) UpsertThreshold(ctx context.Context, def *model.ThresholdDefinition) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateThreshold(def); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thresholds (year, key, kind, yen, label, description, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(year, key) DO UPDATE SET
			kind = excluded.kind,
			yen = excluded.yen,
			label = excluded.label,
			description = excluded.description,
			is_active = excluded.is_active,
			updated_at = CURRENT_TIMESTAMP`,
		def.Year, def.Key, string(def.Kind), def.Amount, def.Label, def.Description, def.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert threshold %s/%d: %w", def.Key, def.Year, err)
	}
	return nil
}

// SeedThresholds upserts every definition in one transaction.
func (s *SQLiteStorage) SeedThresholds(ctx context.Context, defs []model.ThresholdDefinition) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range defs {
		if err := validateThreshold(&defs[i]); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO thresholds (year, key, kind, yen, label, description, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(year, key) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("failed to prepare seed statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, def := range defs {
			if _, err := stmt.ExecContext(ctx, def.Year, def.Key, string(def.Kind), def.Amount, def.Label, def.Description, def.Active); err != nil {
				return fmt.Errorf("failed to seed threshold %s: %w", def.Key, err)
			}
		}
		return nil
	})
}

// SetThresholdsActive makes exactly the given keys active for a year and
// returns how many rows were activated.
func (s *SQLiteStorage) SetThresholdsActive(ctx context.Context, year int, keys []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateYear(year); err != nil {
		return 0, err
	}
	for _, key := range keys {
		if err := validateString(key, "key"); err != nil {
			return 0, err
		}
	}

	var activated int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE thresholds SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE year = ?`, year); err != nil {
			return fmt.Errorf("failed to deactivate thresholds: %w", err)
		}
		if len(keys) == 0 {
			return nil
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
		args := make([]any, 0, len(keys)+1)
		args = append(args, year)
		for _, key := range keys {
			args = append(args, key)
		}

		//nolint:gosec // placeholders are generated, not user input
		result, err := tx.ExecContext(ctx, `UPDATE thresholds SET is_active = 1, updated_at = CURRENT_TIMESTAMP
			WHERE year = ? AND key IN (`+placeholders+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to activate thresholds: %w", err)
		}
		activated, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count activated thresholds: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(activated), nil
}

func scanThresholds(rows *sql.Rows) ([]model.ThresholdDefinition, error) {
	var defs []model.ThresholdDefinition
	for rows.Next() {
		var def model.ThresholdDefinition
		var kind string
		if err := rows.Scan(&def.Year, &def.Key, &kind, &def.Amount, &def.Label, &def.Description, &def.Active); err != nil {
			return nil, fmt.Errorf("failed to scan threshold: %w", err)
		}
		def.Kind = model.ThresholdKind(kind)
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating thresholds: %w", err)
	}
	return defs, nil
}
