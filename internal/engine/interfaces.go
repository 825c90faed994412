package engine

import (
	"context"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

// EmployerReader lists the employers registered for a user.
type EmployerReader interface {
	ListEmployers(ctx context.Context, userID string) ([]model.Employer, error)
}

// DepositStore persists deposits and their classification history.
type DepositStore interface {
	SaveDeposit(ctx context.Context, d *model.Deposit) error
	GetDeposit(ctx context.Context, id string) (*model.Deposit, error)
	RecordClassification(ctx context.Context, depositID string, c model.ClassificationResult, source string) error
	DepositsByType(ctx context.Context, userID string, typ model.DepositType) ([]model.Deposit, error)
	TaxableIncome(ctx context.Context, userID string, year int) (int64, error)
}
