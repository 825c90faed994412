package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/deposit"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

const depositColumns = `id, hash, user_id, amount, description, transaction_date, classification,
	COALESCE(employer_id, ''), confidence, is_taxable, COALESCE(reason, ''), classified_at`

// SaveDeposit stores a classified deposit and its first history entry.
// A deposit whose hash already exists returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) SaveDeposit(ctx context.Context, d *model.Deposit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDeposit(d); err != nil {
		return err
	}
	if d.Hash == "" {
		d.Hash = d.GenerateHash()
	}
	if d.ClassifiedAt.IsZero() {
		d.ClassifiedAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		c := d.Classification
		_, err := tx.ExecContext(ctx, `
			INSERT INTO deposits (id, hash, user_id, amount, description, transaction_date,
				classification, employer_id, confidence, is_taxable, reason, classified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Hash, d.UserID, d.Amount, d.Description, d.Date.UTC(),
			string(c.Type), nullableString(c.EmployerID), c.Confidence, c.IsTaxable, c.Reason, d.ClassifiedAt.UTC())
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("deposit %s: %w", d.Hash, common.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to save deposit: %w", err)
		}
		return insertHistory(ctx, tx, d.ID, c, model.SourceIngest, d.ClassifiedAt)
	})
}

// GetDeposit returns a single deposit.
func (s *SQLiteStorage) GetDeposit(ctx context.Context, id string) (*model.Deposit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = ?`, id)
	d, err := scanDeposit(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("deposit %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

// RecordClassification replaces a deposit's current classification and
// appends the change to its history.
func (s *SQLiteStorage) RecordClassification(ctx context.Context, depositID string, c model.ClassificationResult, source string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(depositID, "depositID"); err != nil {
		return err
	}
	if err := validateString(source, "source"); err != nil {
		return err
	}
	if err := validateClassification(c); err != nil {
		return err
	}

	now := time.Now()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE deposits SET classification = ?, employer_id = ?, confidence = ?,
				is_taxable = ?, reason = ?, classified_at = ?
			WHERE id = ?`,
			string(c.Type), nullableString(c.EmployerID), c.Confidence, c.IsTaxable, c.Reason, now.UTC(), depositID)
		if err != nil {
			return fmt.Errorf("failed to update classification: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("deposit %s: %w", depositID, common.ErrNotFound)
		}
		return insertHistory(ctx, tx, depositID, c, source, now)
	})
}

// ClassificationHistory returns every classification recorded for a deposit, oldest first.
func (s *SQLiteStorage) ClassificationHistory(ctx context.Context, depositID string) ([]model.ClassificationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(depositID, "depositID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT deposit_id, classification, COALESCE(employer_id, ''), confidence, is_taxable,
			COALESCE(reason, ''), source, created_at
		FROM deposit_classification_history
		WHERE deposit_id = ?
		ORDER BY id ASC`, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classification history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ClassificationRecord
	for rows.Next() {
		var r model.ClassificationRecord
		var typ string
		if err := rows.Scan(&r.DepositID, &typ, &r.EmployerID, &r.Confidence, &r.IsTaxable,
			&r.Reason, &r.Source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan classification history: %w", err)
		}
		r.Type = model.DepositType(typ)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classification history: %w", err)
	}
	return records, nil
}

// SalaryDeposits returns deposits classified as salary inside the query window, newest first.
func (s *SQLiteStorage) SalaryDeposits(ctx context.Context, q deposit.HistoryQuery) ([]model.Deposit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(q.UserID, "UserID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + depositColumns + ` FROM deposits
		WHERE user_id = ? AND classification = ? AND transaction_date >= ? AND transaction_date < ?`
	args := []any{q.UserID, string(model.DepositSalary), q.From.UTC(), q.To.UTC()}
	if q.EmployerID != "" {
		query += ` AND employer_id = ?`
		args = append(args, q.EmployerID)
	}
	query += ` ORDER BY transaction_date DESC`

	return s.queryDeposits(ctx, query, args...)
}

// DepositsByType returns the user's deposits with the given classification, oldest first.
func (s *SQLiteStorage) DepositsByType(ctx context.Context, userID string, typ model.DepositType) ([]model.Deposit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDepositType, typ)
	}

	return s.queryDeposits(ctx, `SELECT `+depositColumns+` FROM deposits
		WHERE user_id = ? AND classification = ?
		ORDER BY transaction_date ASC, id ASC`, userID, string(typ))
}

// DepositsInYear returns all of the user's deposits dated within the calendar year.
func (s *SQLiteStorage) DepositsInYear(ctx context.Context, userID string, year int) ([]model.Deposit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	from, to := yearBounds(year)
	return s.queryDeposits(ctx, `SELECT `+depositColumns+` FROM deposits
		WHERE user_id = ? AND transaction_date >= ? AND transaction_date < ?
		ORDER BY transaction_date ASC, id ASC`, userID, from, to)
}

// TaxableIncome sums the user's taxable deposits in the calendar year.
// Deposits awaiting review are included when flagged taxable.
func (s *SQLiteStorage) TaxableIncome(ctx context.Context, userID string, year int) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if err := validateYear(year); err != nil {
		return 0, err
	}

	from, to := yearBounds(year)
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM deposits
		WHERE user_id = ? AND is_taxable = 1 AND transaction_date >= ? AND transaction_date < ?`,
		userID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum taxable income: %w", err)
	}
	return total, nil
}

func (s *SQLiteStorage) queryDeposits(ctx context.Context, query string, args ...any) ([]model.Deposit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deposits []model.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposits: %w", err)
	}
	return deposits, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeposit(row rowScanner) (*model.Deposit, error) {
	var d model.Deposit
	var typ string
	var classifiedAt sql.NullTime
	err := row.Scan(&d.ID, &d.Hash, &d.UserID, &d.Amount, &d.Description, &d.Date, &typ,
		&d.Classification.EmployerID, &d.Classification.Confidence, &d.Classification.IsTaxable,
		&d.Classification.Reason, &classifiedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan deposit: %w", err)
	}
	d.Classification.Type = model.DepositType(typ)
	if classifiedAt.Valid {
		d.ClassifiedAt = classifiedAt.Time
	}
	return &d, nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, depositID string, c model.ClassificationResult, source string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO deposit_classification_history
			(deposit_id, classification, employer_id, confidence, is_taxable, reason, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		depositID, string(c.Type), nullableString(c.EmployerID), c.Confidence, c.IsTaxable, c.Reason, source, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to record classification history: %w", err)
	}
	return nil
}

func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
