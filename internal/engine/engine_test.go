package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/deposit"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/storage"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
	"github.com/Veraticus/the-wall-must-hold/internal/wall"
)

const testUser = "user-1"

var payday = time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)

type fakeEmployers struct {
	err       error
	employers []model.Employer
	calls     int
}

func (f *fakeEmployers) ListEmployers(_ context.Context, _ string) ([]model.Employer, error) {
	f.calls++
	return f.employers, f.err
}

func newTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newTestEngine(t *testing.T, store *storage.SQLiteStorage, now time.Time) *Engine {
	t.Helper()
	clock := func() time.Time { return now }
	thresholds := threshold.NewStore(nil, threshold.WithClock(clock))
	classifier := deposit.NewClassifier(store, deposit.WithClock(clock))

	seq := 0
	return New(thresholds, classifier, store, store,
		WithClock(clock),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("dep-%03d", seq)
		}))
}

func monthlyPayroll(months int) []model.Deposit {
	deposits := make([]model.Deposit, 0, months)
	for i := months; i >= 1; i-- {
		deposits = append(deposits, model.Deposit{
			Date:        payday.AddDate(0, -i, 0),
			Amount:      85_000,
			Description: "CAFE MOCHA PAYROLL",
		})
	}
	return deposits
}

func saveCafe(t *testing.T, store *storage.SQLiteStorage) {
	t.Helper()
	require.NoError(t, store.SaveEmployer(context.Background(), &model.Employer{
		ID:        "emp-1",
		UserID:    testUser,
		Name:      "Cafe Mocha",
		IsPrimary: true,
		CreatedAt: payday.AddDate(-1, 0, 0),
	}))
}

func TestIngest_ReviewThenSalary(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	saveCafe(t, store)
	e := newTestEngine(t, store, payday)

	var outcomes []IngestOutcome
	summary, err := e.Ingest(ctx, testUser, monthlyPayroll(6), func(o IngestOutcome) { outcomes = append(outcomes, o) })
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Saved)
	assert.Equal(t, 6, summary.NeedsReview, "no salary history yet")
	assert.Zero(t, summary.Salary)
	assert.Len(t, outcomes, 6)

	queue, err := e.ReviewQueue(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, queue, 6)
	for _, d := range queue {
		assert.Equal(t, "emp-1", d.Classification.EmployerID)
		require.NoError(t, e.Reclassify(ctx, d.ID, model.DepositSalary, d.Classification.EmployerID))
	}

	queue, err = e.ReviewQueue(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, queue)

	summary, err = e.Ingest(ctx, testUser, []model.Deposit{{
		Date:        payday,
		Amount:      85_000,
		Description: "CAFE MOCHA PAYROLL",
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Salary, "regular history now confirms salary")

	history, err := store.ClassificationHistory(ctx, "dep-001")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.SourceIngest, history[0].Source)
	assert.Equal(t, model.SourceReview, history[1].Source)

	got, err := store.GetDeposit(ctx, "dep-001")
	require.NoError(t, err)
	assert.Equal(t, int64(85_000), got.Amount, "source fields unchanged")
	assert.Equal(t, "CAFE MOCHA PAYROLL", got.Description)
}

func TestIngest_Duplicates(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	e := newTestEngine(t, store, payday)

	deposits := monthlyPayroll(3)
	_, err := e.Ingest(ctx, testUser, deposits, nil)
	require.NoError(t, err)

	summary, err := e.Ingest(ctx, testUser, deposits, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Saved)
	assert.Equal(t, 3, summary.Duplicates)
}

func TestIngest_NonTaxable(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	e := newTestEngine(t, store, payday)

	summary, err := e.Ingest(ctx, testUser, []model.Deposit{
		{Date: payday, Amount: 15_000, Description: "交通費 カフエモカ"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)

	total, err := e.YearToDateIncome(ctx, testUser, payday)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIngest_CanceledContext(t *testing.T) {
	store := newTestStorage(t)
	e := newTestEngine(t, store, payday)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Ingest(ctx, testUser, monthlyPayroll(2), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStatus_FromDeposits(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	saveCafe(t, store)
	e := newTestEngine(t, store, payday)

	deposits := append(monthlyPayroll(6), model.Deposit{Date: payday, Amount: 85_000, Description: "CAFE MOCHA PAYROLL"})
	_, err := e.Ingest(ctx, testUser, deposits, nil)
	require.NoError(t, err)

	facts := wall.Facts{
		DateOfBirth: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Insurance:   wall.InsuranceParent,
	}
	st, err := e.Status(ctx, testUser, facts, nil)
	require.NoError(t, err)

	assert.True(t, st.FromDeposits)
	assert.Equal(t, int64(595_000), st.Income, "needs_review deposits are taxable")
	assert.Equal(t, model.WallIncomeGeneral, st.Resolution.CurrentWallType)
	assert.Equal(t, int64(1_230_000), st.Snapshot.Threshold)
	assert.Equal(t, int64(635_000), st.Snapshot.RemainingAllowance)
	assert.Equal(t, 5, st.Snapshot.RemainingMonths)
	assert.Equal(t, int64(127_000), st.Snapshot.RecommendedMonthlyIncome)
	assert.Equal(t, model.DangerSafe, st.Snapshot.DangerLevel)
	assert.Len(t, st.Overview, len(model.KnownThresholdKeys))
	assert.GreaterOrEqual(t, st.Primary, 0)
}

func TestStatus_ExplicitIncome(t *testing.T) {
	e := New(threshold.NewStore(nil), deposit.NewClassifier(nil), nil, nil,
		WithClock(func() time.Time { return time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC) }))

	income := int64(1_200_000)
	facts := wall.Facts{Insurance: wall.InsuranceSelf}
	st, err := e.Status(context.Background(), testUser, facts, &income)
	require.NoError(t, err)

	assert.False(t, st.FromDeposits)
	assert.True(t, st.Resolution.IsIndependentMode)
	assert.Equal(t, model.WallSocialInsurance, st.Resolution.CurrentWallType)
	assert.Equal(t, int64(1_300_000), st.Snapshot.Threshold)
	assert.Zero(t, st.Snapshot.RecommendedMonthlyIncome, "no months left in December")
}

func TestStatus_NoDepositStore(t *testing.T) {
	e := New(threshold.NewStore(nil), deposit.NewClassifier(nil), nil, nil)
	_, err := e.Status(context.Background(), testUser, wall.Facts{}, nil)
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestClassifyDeposit_LoadsEmployers(t *testing.T) {
	employers := &fakeEmployers{employers: []model.Employer{{ID: "emp-1", UserID: testUser, Name: "Cafe Mocha"}}}
	e := New(threshold.NewStore(nil), deposit.NewClassifier(nil), employers, nil)

	result, err := e.ClassifyDeposit(context.Background(), deposit.Input{
		UserID:      testUser,
		Amount:      85_000,
		Description: "CAFE MOCHA PAYROLL",
		Date:        payday,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, employers.calls)
	assert.Equal(t, model.DepositNeedsReview, result.Type)
	assert.Equal(t, "emp-1", result.EmployerID)

	// Explicit employers skip the lookup.
	_, err = e.ClassifyDeposit(context.Background(), deposit.Input{
		UserID:      testUser,
		Description: "CAFE MOCHA PAYROLL",
		Employers:   employers.employers,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, employers.calls)
}

func TestClassifyDeposit_EmployerError(t *testing.T) {
	employers := &fakeEmployers{err: errors.New("disk full")}
	e := New(threshold.NewStore(nil), deposit.NewClassifier(nil), employers, nil)

	_, err := e.ClassifyDeposit(context.Background(), deposit.Input{UserID: testUser, Description: "x"})
	require.Error(t, err)
}

func TestReclassify_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	e := newTestEngine(t, store, payday)

	err := e.Reclassify(ctx, "dep-001", model.DepositNeedsReview, "")
	require.ErrorIs(t, err, ErrInvalidClassification)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)

	require.ErrorIs(t, e.Reclassify(ctx, "missing", model.DepositOther, ""), common.ErrNotFound)
}

func TestReclassify_OtherIsNotTaxable(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	e := newTestEngine(t, store, payday)

	_, err := e.Ingest(ctx, testUser, []model.Deposit{{Date: payday, Amount: 40_000, Description: "キユウヨ"}}, nil)
	require.NoError(t, err)

	total, err := e.YearToDateIncome(ctx, testUser, payday)
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), total)

	require.NoError(t, e.Reclassify(ctx, "dep-001", model.DepositOther, ""))
	total, err = e.YearToDateIncome(ctx, testUser, payday)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestActiveThresholdsAndDecide(t *testing.T) {
	e := New(threshold.NewStore(nil), deposit.NewClassifier(nil), nil, nil)
	ctx := context.Background()

	set := e.ActiveThresholds(ctx, 2025)
	assert.Len(t, set, len(model.KnownThresholdKeys))

	res := e.Decide(ctx, wall.Facts{
		DateOfBirth: time.Date(2005, 4, 2, 0, 0, 0, 0, time.UTC),
		IsStudent:   true,
		Insurance:   wall.InsuranceParent,
	}, payday)
	assert.Equal(t, model.WallIncomeStudent, res.CurrentWallType)
	assert.Equal(t, int64(1_500_000), res.CurrentWall)
	assert.Equal(t, int64(1_100_000), res.ResidentWall)

	snap := e.Breakdown(600_000, res, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, int64(180_000), snap.RecommendedMonthlyIncome)
}
