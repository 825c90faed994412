package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyString        = errors.New("string cannot be empty")
	ErrNilThreshold       = errors.New("threshold cannot be nil")
	ErrNilEmployer        = errors.New("employer cannot be nil")
	ErrNilDeposit         = errors.New("deposit cannot be nil")
	ErrInvalidYear        = errors.New("year must be positive")
	ErrInvalidDepositType = errors.New("invalid deposit classification")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return ctx.Err()
}

func validateString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, fieldName)
	}
	return nil
}

func validateYear(year int) error {
	if year <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

func validateThreshold(def *model.ThresholdDefinition) error {
	if def == nil {
		return ErrNilThreshold
	}
	if err := validateString(def.Key, "threshold.Key"); err != nil {
		return err
	}
	if !def.Kind.Valid() {
		return fmt.Errorf("%w: threshold kind %q", ErrInvalidInput, def.Kind)
	}
	if def.Amount < 0 {
		return fmt.Errorf("%w: threshold amount %d is negative", ErrInvalidInput, def.Amount)
	}
	return validateYear(def.Year)
}

func validateEmployer(e *model.Employer) error {
	if e == nil {
		return ErrNilEmployer
	}
	if err := validateString(e.ID, "employer.ID"); err != nil {
		return err
	}
	if err := validateString(e.UserID, "employer.UserID"); err != nil {
		return err
	}
	return validateString(e.Name, "employer.Name")
}

func validateClassification(c model.ClassificationResult) error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDepositType, c.Type)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidInput, c.Confidence)
	}
	return nil
}

func validateDeposit(d *model.Deposit) error {
	if d == nil {
		return ErrNilDeposit
	}
	if err := validateString(d.ID, "deposit.ID"); err != nil {
		return err
	}
	if err := validateString(d.UserID, "deposit.UserID"); err != nil {
		return err
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: deposit date is zero", ErrInvalidInput)
	}
	return validateClassification(d.Classification)
}
