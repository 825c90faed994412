package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/deposit"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

func testDeposit(id string, date time.Time, amount int64, typ model.DepositType, employerID string) *model.Deposit {
	d := &model.Deposit{
		ID:          id,
		UserID:      "user-1",
		Description: "キユウヨ カフエモカ " + id,
		Date:        date,
		Amount:      amount,
		Classification: model.ClassificationResult{
			Type:       typ,
			EmployerID: employerID,
			Confidence: 0.9,
			IsTaxable:  true,
			Reason:     "test",
		},
	}
	return d
}

func TestSaveDeposit(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	date := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)
	d := testDeposit("dep-1", date, 85_000, model.DepositSalary, "emp-1")
	require.NoError(t, store.SaveDeposit(ctx, d))
	assert.NotEmpty(t, d.Hash)
	assert.False(t, d.ClassifiedAt.IsZero())

	got, err := store.GetDeposit(ctx, "dep-1")
	require.NoError(t, err)
	assert.Equal(t, d.Hash, got.Hash)
	assert.Equal(t, int64(85_000), got.Amount)
	assert.Equal(t, d.Description, got.Description)
	assert.True(t, got.Date.Equal(date))
	assert.Equal(t, model.DepositSalary, got.Classification.Type)
	assert.Equal(t, "emp-1", got.Classification.EmployerID)
	assert.InDelta(t, 0.9, got.Classification.Confidence, 1e-9)
	assert.True(t, got.Classification.IsTaxable)

	history, err := store.ClassificationHistory(ctx, "dep-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.SourceIngest, history[0].Source)
	assert.Equal(t, model.DepositSalary, history[0].Type)
}

func TestSaveDeposit_DuplicateHash(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	date := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("dep-1", date, 85_000, model.DepositSalary, "")))

	dup := testDeposit("dep-1", date, 85_000, model.DepositSalary, "")
	dup.ID = "dep-2"
	require.ErrorIs(t, store.SaveDeposit(ctx, dup), common.ErrDuplicateEntry)
}

func TestSaveDeposit_Validation(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	date := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)

	require.ErrorIs(t, store.SaveDeposit(ctx, nil), ErrNilDeposit)
	require.ErrorIs(t, store.SaveDeposit(ctx, testDeposit("d", time.Time{}, 1, model.DepositOther, "")), ErrInvalidInput)
	require.ErrorIs(t, store.SaveDeposit(ctx, testDeposit("d", date, 1, "bonus", "")), ErrInvalidDepositType)

	bad := testDeposit("d", date, 1, model.DepositOther, "")
	bad.Classification.Confidence = 1.5
	require.ErrorIs(t, store.SaveDeposit(ctx, bad), ErrInvalidInput)
}

func TestGetDeposit_NotFound(t *testing.T) {
	store := createTestStorage(t)
	_, err := store.GetDeposit(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordClassification(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	date := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("dep-1", date, 50_000, model.DepositNeedsReview, "emp-1")))

	confirmed := model.ClassificationResult{
		Type:       model.DepositSalary,
		EmployerID: "emp-1",
		Confidence: 1,
		IsTaxable:  true,
		Reason:     "Confirmed by user",
	}
	require.NoError(t, store.RecordClassification(ctx, "dep-1", confirmed, model.SourceReview))

	got, err := store.GetDeposit(ctx, "dep-1")
	require.NoError(t, err)
	assert.Equal(t, model.DepositSalary, got.Classification.Type)
	assert.Equal(t, "Confirmed by user", got.Classification.Reason)

	history, err := store.ClassificationHistory(ctx, "dep-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.DepositNeedsReview, history[0].Type)
	assert.Equal(t, model.SourceReview, history[1].Source)

	require.ErrorIs(t, store.RecordClassification(ctx, "missing", confirmed, model.SourceReview), common.ErrNotFound)
	require.ErrorIs(t, store.RecordClassification(ctx, "dep-1", confirmed, ""), ErrEmptyString)
}

func TestSalaryDeposits(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	payday := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 8; i++ {
		d := testDeposit(fmt.Sprintf("sal-%d", i), payday.AddDate(0, -i, 0), 85_000, model.DepositSalary, "emp-1")
		require.NoError(t, store.SaveDeposit(ctx, d))
	}
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("other-emp", payday.AddDate(0, -1, 2), 30_000, model.DepositSalary, "emp-2")))
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("gift", payday.AddDate(0, -1, 3), 10_000, model.DepositOther, "")))
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("today", payday, 85_000, model.DepositSalary, "emp-1")))

	q := deposit.HistoryQuery{
		UserID:     "user-1",
		EmployerID: "emp-1",
		From:       payday.AddDate(0, -6, 0),
		To:         payday,
	}
	got, err := store.SalaryDeposits(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 6, "six months back, inclusive start, exclusive end")
	assert.Equal(t, "sal-1", got[0].ID, "newest first")
	assert.Equal(t, "sal-6", got[5].ID)

	q.EmployerID = ""
	got, err = store.SalaryDeposits(ctx, q)
	require.NoError(t, err)
	assert.Len(t, got, 7)

	q.UserID = "user-2"
	got, err = store.SalaryDeposits(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDepositsByType(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("b", base.AddDate(0, 0, 2), 1_000, model.DepositNeedsReview, "")))
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("a", base, 2_000, model.DepositNeedsReview, "")))
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("c", base, 3_000, model.DepositOther, "")))

	got, err := store.DepositsByType(ctx, "user-1", model.DepositNeedsReview)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	_, err = store.DepositsByType(ctx, "user-1", "bogus")
	require.ErrorIs(t, err, ErrInvalidDepositType)
}

func TestTaxableIncomeAndDepositsInYear(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	salary := testDeposit("s1", time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), 85_000, model.DepositSalary, "emp-1")
	review := testDeposit("r1", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 20_000, model.DepositNeedsReview, "")
	allowance := testDeposit("t1", time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC), 5_000, model.DepositOther, "")
	allowance.Classification.IsTaxable = false
	lastYear := testDeposit("s0", time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), 90_000, model.DepositSalary, "emp-1")
	nextYear := testDeposit("s2", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 70_000, model.DepositSalary, "emp-1")

	for _, d := range []*model.Deposit{salary, review, allowance, lastYear, nextYear} {
		require.NoError(t, store.SaveDeposit(ctx, d))
	}

	total, err := store.TaxableIncome(ctx, "user-1", 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(105_000), total)

	none, err := store.TaxableIncome(ctx, "nobody", 2025)
	require.NoError(t, err)
	assert.Zero(t, none)

	deposits, err := store.DepositsInYear(ctx, "user-1", 2025)
	require.NoError(t, err)
	assert.Len(t, deposits, 3)
}
