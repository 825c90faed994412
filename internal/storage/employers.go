package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// SaveEmployer inserts an employer.
func (s *SQLiteStorage) SaveEmployer(ctx context.Context, e *model.Employer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEmployer(e); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		return fmt.Errorf("%w: employer.CreatedAt is zero", ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employers (id, user_id, name, hourly_wage, monthly_salary, is_primary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Name, nullableInt(e.HourlyWage), nullableInt(e.MonthlySalary), e.IsPrimary, e.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("employer %s: %w", e.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save employer: %w", err)
	}
	return nil
}

// ListEmployers returns the user's employers, primary first.
func (s *SQLiteStorage) ListEmployers(ctx context.Context, userID string) ([]model.Employer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, hourly_wage, monthly_salary, is_primary, created_at
		FROM employers
		WHERE user_id = ?
		ORDER BY is_primary DESC, created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query employers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var employers []model.Employer
	for rows.Next() {
		var e model.Employer
		var hourly, monthly sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &hourly, &monthly, &e.IsPrimary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employer: %w", err)
		}
		e.HourlyWage = intPtr(hourly)
		e.MonthlySalary = intPtr(monthly)
		employers = append(employers, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employers: %w", err)
	}
	return employers, nil
}

// DeleteEmployer removes an employer. Deposits keep their employer id.
func (s *SQLiteStorage) DeleteEmployer(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM employers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employer: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("employer %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
