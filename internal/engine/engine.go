// Package engine wires threshold resolution, wall selection, progress and
// deposit classification into the operations the CLI exposes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/deposit"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
	"github.com/Veraticus/the-wall-must-hold/internal/wall"
)

// ErrInvalidClassification is returned when a deposit is reclassified to a
// type other than salary or other.
var ErrInvalidClassification = errors.New("invalid classification")

// Engine exposes the wall-tracking operations.
type Engine struct {
	thresholds *threshold.Store
	classifier *deposit.Classifier
	employers  EmployerReader
	deposits   DepositStore
	now        func() time.Time
	newID      func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator sets how deposit IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New creates an engine. employers and deposits may be nil when only the
// threshold and classification operations are used.
func New(thresholds *threshold.Store, classifier *deposit.Classifier, employers EmployerReader, deposits DepositStore, opts ...Option) *Engine {
	e := &Engine{
		thresholds: thresholds,
		classifier: classifier,
		employers:  employers,
		deposits:   deposits,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActiveThresholds returns the threshold set for year.
func (e *Engine) ActiveThresholds(ctx context.Context, year int) model.ThresholdSet {
	return e.thresholds.ActiveThresholds(ctx, year)
}

// Decide selects the governing wall for facts at the given time.
func (e *Engine) Decide(ctx context.Context, facts wall.Facts, at time.Time) model.Resolution {
	return wall.Decide(facts, at, e.thresholds.ActiveThresholds(ctx, at.Year()))
}

// Breakdown computes progress of income toward the resolved wall.
func (e *Engine) Breakdown(income int64, res model.Resolution, asOf time.Time) model.ProgressSnapshot {
	return wall.Breakdown(income, res, asOf)
}

// ClassifyDeposit classifies a single deposit. When in.Employers is empty
// the user's registered employers are used.
func (e *Engine) ClassifyDeposit(ctx context.Context, in deposit.Input) (model.ClassificationResult, error) {
	if len(in.Employers) == 0 && e.employers != nil && in.UserID != "" {
		employers, err := e.employers.ListEmployers(ctx, in.UserID)
		if err != nil {
			return model.ClassificationResult{}, fmt.Errorf("failed to load employers: %w", err)
		}
		in.Employers = employers
	}
	return e.classifier.Classify(ctx, in), nil
}

// YearToDateIncome sums the user's taxable deposits in the year of at.
func (e *Engine) YearToDateIncome(ctx context.Context, userID string, at time.Time) (int64, error) {
	if err := e.requireDeposits(); err != nil {
		return 0, err
	}
	total, err := e.deposits.TaxableIncome(ctx, userID, at.Year())
	if err != nil {
		return 0, fmt.Errorf("failed to load year-to-date income: %w", err)
	}
	return total, nil
}

// Status is the full picture for one user at one point in time.
type Status struct {
	AsOf       time.Time
	Resolution model.Resolution
	Snapshot   model.ProgressSnapshot
	Overview   []model.ProgressSnapshot
	Income     int64
	Primary    int
	// FromDeposits is true when Income was summed from stored deposits.
	FromDeposits bool
}

// Status decides the governing wall and computes progress toward it and
// every other active wall. A nil income uses the stored year-to-date total.
func (e *Engine) Status(ctx context.Context, userID string, facts wall.Facts, income *int64) (*Status, error) {
	at := e.now()
	st := &Status{AsOf: at}

	if income != nil {
		st.Income = *income
	} else {
		total, err := e.YearToDateIncome(ctx, userID, at)
		if err != nil {
			return nil, err
		}
		st.Income = total
		st.FromDeposits = true
	}

	set := e.thresholds.ActiveThresholds(ctx, at.Year())
	st.Resolution = wall.Decide(facts, at, set)
	st.Snapshot = wall.Breakdown(st.Income, st.Resolution, at)
	st.Overview, st.Primary = wall.Overview(st.Income, set, at)

	slog.Debug("Computed status",
		"user_id", userID,
		"wall", st.Resolution.CurrentWallType,
		"income", st.Income,
		"danger", st.Snapshot.DangerLevel)

	return st, nil
}

// IngestSummary counts the outcome of an ingestion run.
type IngestSummary struct {
	Saved       int
	Duplicates  int
	Failed      int
	Salary      int
	NeedsReview int
}

// IngestOutcome is reported for every deposit processed by Ingest.
type IngestOutcome int

// Ingest outcomes.
const (
	OutcomeSaved IngestOutcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

// Ingest classifies and stores deposits in order. Deposits already stored
// are counted as duplicates. report, if non-nil, is called once per deposit.
func (e *Engine) Ingest(ctx context.Context, userID string, deposits []model.Deposit, report func(IngestOutcome)) (IngestSummary, error) {
	var summary IngestSummary
	if err := e.requireDeposits(); err != nil {
		return summary, err
	}

	var employers []model.Employer
	if e.employers != nil {
		var err error
		employers, err = e.employers.ListEmployers(ctx, userID)
		if err != nil {
			return summary, fmt.Errorf("failed to load employers: %w", err)
		}
	}

	notify := func(o IngestOutcome) {
		if report != nil {
			report(o)
		}
	}

	for i := range deposits {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		d := deposits[i]
		d.UserID = userID
		if d.ID == "" {
			d.ID = e.newID()
		}
		d.Hash = d.GenerateHash()
		d.Classification = e.classifier.Classify(ctx, deposit.Input{
			UserID:      userID,
			Amount:      d.Amount,
			Description: d.Description,
			Date:        d.Date,
			Employers:   employers,
		})
		d.ClassifiedAt = e.now()

		if err := e.deposits.SaveDeposit(ctx, &d); err != nil {
			if errors.Is(err, common.ErrDuplicateEntry) {
				summary.Duplicates++
				notify(OutcomeDuplicate)
				continue
			}
			slog.Warn("Failed to save deposit",
				"description", d.Description,
				"date", d.Date.Format("2006-01-02"),
				"error", err)
			summary.Failed++
			notify(OutcomeFailed)
			continue
		}

		summary.Saved++
		switch d.Classification.Type {
		case model.DepositSalary:
			summary.Salary++
		case model.DepositNeedsReview:
			summary.NeedsReview++
		}
		notify(OutcomeSaved)
	}

	slog.Info("Ingested deposits",
		"user_id", userID,
		"saved", summary.Saved,
		"duplicates", summary.Duplicates,
		"failed", summary.Failed,
		"needs_review", summary.NeedsReview)

	return summary, nil
}

// ReviewQueue returns the user's deposits awaiting manual review.
func (e *Engine) ReviewQueue(ctx context.Context, userID string) ([]model.Deposit, error) {
	if err := e.requireDeposits(); err != nil {
		return nil, err
	}
	return e.deposits.DepositsByType(ctx, userID, model.DepositNeedsReview)
}

// Reclassify records the user's decision for a deposit. Only salary and
// other are accepted; the deposit's source fields are not touched.
func (e *Engine) Reclassify(ctx context.Context, depositID string, typ model.DepositType, employerID string) error {
	if err := e.requireDeposits(); err != nil {
		return err
	}

	var result model.ClassificationResult
	switch typ {
	case model.DepositSalary:
		result = model.ClassificationResult{
			Type:       model.DepositSalary,
			EmployerID: employerID,
			Confidence: 1,
			IsTaxable:  true,
			Reason:     "Confirmed as salary by user",
		}
	case model.DepositOther:
		result = model.ClassificationResult{
			Type:       model.DepositOther,
			Confidence: 1,
			IsTaxable:  false,
			Reason:     "Marked as not income by user",
		}
	default:
		return common.NewUserError(
			fmt.Sprintf("cannot reclassify as %q: choose salary or other", typ),
			ErrInvalidClassification)
	}

	if _, err := e.deposits.GetDeposit(ctx, depositID); err != nil {
		return fmt.Errorf("failed to load deposit: %w", err)
	}
	if err := e.deposits.RecordClassification(ctx, depositID, result, model.SourceReview); err != nil {
		return fmt.Errorf("failed to reclassify deposit: %w", err)
	}

	slog.Info("Reclassified deposit", "deposit_id", depositID, "type", typ)
	return nil
}

func (e *Engine) requireDeposits() error {
	if e.deposits == nil {
		return fmt.Errorf("deposit store: %w", common.ErrMissingConfig)
	}
	return nil
}
